package bot

import (
	"context"
	"strings"

	"github.com/UnknownOlympus/nomina/internal/i18n"
	"gopkg.in/telebot.v4"
)

// startHandler registers the user and shows the home screen.
func (b *Bot) startHandler(tCtx telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	sender := tCtx.Sender()
	b.log.InfoContext(ctx, "User started the bot", "id", sender.ID, "username", sender.Username)
	b.metrics.CommandReceived.WithLabelValues("start").Inc()

	created, err := b.repo.RegisterUser(ctx, sender.ID, sender.Username, i18n.NormalizeLanguageCode(sender.LanguageCode))
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to register user", "id", sender.ID, "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return tCtx.Send(b.t(i18n.NormalizeLanguageCode(sender.LanguageCode), "error.internal"))
	}
	if created {
		b.metrics.NewUsers.Inc()
	}

	b.stateManager.Clear(sender.ID)
	lang := b.getUserLanguage(ctx, tCtx)

	name := sender.FirstName
	if name == "" {
		name = sender.Username
	}
	welcome := b.tWithData(lang, "general.welcome", map[string]any{"name": name})

	return b.showMenu(ctx, tCtx, lang, MenuMain, welcome+"\n\n"+b.t(lang, "home.title"))
}

// routeTextHandler dispatches menu buttons and typed answers to pending prompts.
func (b *Bot) routeTextHandler(tCtx telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	userID := tCtx.Sender().ID
	lang := b.getUserLanguage(ctx, tCtx)
	text := strings.TrimSpace(tCtx.Text())

	btn, ok := b.menus.ResolveButton(lang, text)
	if !ok {
		if state, waiting := b.stateManager.Get(userID); waiting {
			return b.handleInput(tCtx, lang, state, text)
		}
		b.metrics.SentMessages.WithLabelValues("reply").Inc()
		return tCtx.Reply(b.t(lang, "general.use_buttons"))
	}

	// a button press abandons any pending prompt
	b.stateManager.Clear(userID)

	switch {
	case btn.SubMenu != "":
		b.metrics.CommandReceived.WithLabelValues(string(btn.SubMenu)).Inc()
		if err := b.showMenu(ctx, tCtx, lang, btn.SubMenu, ""); err != nil {
			return err
		}
		if screen, found := b.currentScreen(ctx, userID); found {
			return b.sendCard(tCtx, lang, screen, "")
		}
		return nil
	case btn.Handler == handlerBack:
		b.metrics.CommandReceived.WithLabelValues(handlerBack).Inc()
		parent := b.navigator.Back(ctx, userID)
		return b.showMenu(ctx, tCtx, lang, parent, "")
	case btn.Handler == handlerLanguage:
		return b.languageHandler(tCtx)
	default:
		return b.handleRecordButton(ctx, tCtx, lang, btn.Handler)
	}
}

// handleInput applies a typed answer to the prompt the user was shown.
func (b *Bot) handleInput(tCtx telebot.Context, lang string, state UserState, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	ws := b.sessions.Workspace(ctx, tCtx.Sender().ID)
	screen, ok := screenFor(ws, state.Entity)
	if !ok {
		b.log.WarnContext(ctx, "Pending input for unknown entity", "entity", state.Entity)
		return tCtx.Send(b.t(lang, "general.cancelled"))
	}

	switch state.WaitingFor {
	case stateAwaitingID:
		screen.SetID(text)
		return b.sendCard(tCtx, lang, screen, b.tWithData(lang, "form.id_set", map[string]any{"id": text}))
	case stateAwaitingDatabase:
		return b.selectDatabase(ctx, tCtx, lang, screen, text)
	case stateAwaitingField:
		if err := screen.SetField(state.Field, text); err != nil {
			b.log.WarnContext(ctx, "Failed to set field", "field", state.Field, "error", err)
			return tCtx.Send(b.t(lang, "error.unknown_field"))
		}
		label := b.fieldLabel(lang, screen, state.Field)
		return b.sendCard(tCtx, lang, screen,
			b.tWithData(lang, "form.field_set", map[string]any{"field": label, "value": text}))
	default:
		return tCtx.Send(b.t(lang, "general.cancelled"))
	}
}

// currentScreen returns the record screen the user is on, if any.
func (b *Bot) currentScreen(ctx context.Context, userID int64) (recordScreen, bool) {
	def := b.menus.Registry().Get(b.navigator.Current(ctx, userID))
	if def == nil || def.Entity == "" {
		return nil, false
	}
	return screenFor(b.sessions.Workspace(ctx, userID), def.Entity)
}

func (b *Bot) fieldLabel(lang string, screen recordScreen, key string) string {
	for _, field := range screen.Fields() {
		if field.Key == key {
			return b.t(lang, field.Label)
		}
	}
	return key
}
