package bot

import (
	"context"

	"github.com/UnknownOlympus/nomina/internal/session"
)

// Navigator tracks the screen each user is on. The screen is stored in the
// user's session, so it survives restarts together with the form state.
type Navigator struct {
	sessions *session.Manager
	registry *MenuRegistry
}

// NewNavigator creates a navigator over the given menus.
func NewNavigator(sessions *session.Manager, registry *MenuRegistry) *Navigator {
	return &Navigator{sessions: sessions, registry: registry}
}

// Current returns the user's screen, or MenuMain when none is known.
func (n *Navigator) Current(ctx context.Context, userID int64) MenuType {
	screen := MenuType(n.sessions.Workspace(ctx, userID).Screen())
	if n.registry.Get(screen) == nil {
		return MenuMain
	}
	return screen
}

// Open moves the user to menu.
func (n *Navigator) Open(ctx context.Context, userID int64, menu MenuType) {
	n.sessions.Workspace(ctx, userID).SetScreen(string(menu))
}

// Back moves the user to the parent of the current screen and returns it.
func (n *Navigator) Back(ctx context.Context, userID int64) MenuType {
	parent := MenuMain
	if def := n.registry.Get(n.Current(ctx, userID)); def != nil && def.Parent != "" {
		parent = def.Parent
	}

	n.Open(ctx, userID, parent)
	return parent
}

// Reset sends the user back to the home screen.
func (n *Navigator) Reset(ctx context.Context, userID int64) {
	n.Open(ctx, userID, MenuMain)
}
