package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/nomina/internal/client/backoffice"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/models"
	"github.com/UnknownOlympus/nomina/internal/records"
	goCache "github.com/patrickmn/go-cache"
)

const (
	saveTimeout    = 3 * time.Second
	defaultIdleTTL = 24 * time.Hour
)

// DatabasePreferences resolves the database context a user picked last.
type DatabasePreferences interface {
	GetUserDatabase(ctx context.Context, userID int64) (string, error)
}

// Schemas groups the record schemas every workspace is built with.
type Schemas struct {
	Employee    records.Schema[models.Employee]
	Salesperson records.Schema[models.Salesperson]
}

// Workspace holds the controllers of one user.
type Workspace struct {
	UserID      int64
	Employees   *records.Controller[models.Employee]
	Salespeople *records.Controller[models.Salesperson]

	mu      sync.Mutex
	snap    Snapshot
	changes uint64

	saveMu sync.Mutex
	saved  uint64
	save   func(Snapshot)
}

// Screen returns the last screen the user was on.
func (w *Workspace) Screen() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.snap.Screen
}

// SetScreen records the screen the user is on.
func (w *Workspace) SetScreen(screen string) {
	w.update(func(s *Snapshot) { s.Screen = screen })
}

func (w *Workspace) update(fn func(*Snapshot)) {
	w.mu.Lock()
	fn(&w.snap)
	w.changes++
	w.mu.Unlock()

	w.flush()
}

// flush writes the latest snapshot. Writes are serialized; a flush whose change
// was already written by a later one does nothing.
func (w *Workspace) flush() {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	snap, changes := w.snap, w.changes
	w.mu.Unlock()

	if changes <= w.saved {
		return
	}
	w.save(snap)
	w.saved = changes
}

// Manager builds workspaces and restores them from a Store.
type Manager struct {
	store           Store
	prefs           DatabasePreferences
	client          backoffice.Requester
	schemas         Schemas
	defaultDatabase string
	log             *slog.Logger
	metrics         *metrics.Metrics
	idleTTL         time.Duration

	workspaces *goCache.Cache
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL sets how long an unused workspace stays in memory. An expired
// workspace is restored from the store on the next access.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// NewManager creates a manager. prefs may be nil.
func NewManager(
	store Store,
	prefs DatabasePreferences,
	client backoffice.Requester,
	schemas Schemas,
	defaultDatabase string,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
	opts ...ManagerOption,
) *Manager {
	manager := &Manager{
		store:           store,
		prefs:           prefs,
		client:          client,
		schemas:         schemas,
		defaultDatabase: defaultDatabase,
		log:             log,
		metrics:         appMetrics,
		idleTTL:         defaultIdleTTL,
	}
	for _, opt := range opts {
		opt(manager)
	}
	manager.workspaces = goCache.New(manager.idleTTL, 2*manager.idleTTL)

	return manager
}

// Workspace returns the user's workspace, restoring it from the store on first use.
// Every access extends the workspace's idle expiration.
func (m *Manager) Workspace(ctx context.Context, userID int64) *Workspace {
	cacheKey := key(userID)
	if ws, ok := m.cached(cacheKey); ok {
		m.workspaces.SetDefault(cacheKey, ws)
		return ws
	}

	snap, err := m.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.WarnContext(ctx, "Failed to restore session, starting fresh", "user_id", userID, "error", err)
		}
		snap = m.freshSnapshot(ctx, userID)
	}

	ws := m.build(userID, snap)
	if err = m.workspaces.Add(cacheKey, ws, goCache.DefaultExpiration); err != nil {
		// restored concurrently; keep the workspace that won
		if existing, ok := m.cached(cacheKey); ok {
			return existing
		}
		m.workspaces.SetDefault(cacheKey, ws)
	}
	return ws
}

// Close forgets the in-memory workspace and its stored snapshot.
func (m *Manager) Close(ctx context.Context, userID int64) error {
	m.workspaces.Delete(key(userID))

	return m.store.Delete(ctx, userID)
}

// Ping checks the underlying store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *Manager) cached(cacheKey string) (*Workspace, bool) {
	value, ok := m.workspaces.Get(cacheKey)
	if !ok {
		return nil, false
	}
	ws, ok := value.(*Workspace)
	return ws, ok
}

func (m *Manager) freshSnapshot(ctx context.Context, userID int64) Snapshot {
	database := m.defaultDatabase
	if m.prefs != nil {
		preferred, err := m.prefs.GetUserDatabase(ctx, userID)
		switch {
		case err != nil:
			m.log.DebugContext(ctx, "No database preference, using default", "user_id", userID, "error", err)
		case preferred != "":
			database = preferred
		}
	}

	var snap Snapshot
	snap.Employee.Database = database
	snap.Salesperson.Database = database
	return snap
}

func (m *Manager) build(userID int64, snap Snapshot) *Workspace {
	ws := &Workspace{UserID: userID, snap: snap}
	ws.save = func(s Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := m.store.Save(ctx, userID, s); err != nil {
			m.log.Warn("Failed to persist session", "user_id", userID, "error", err)
		}
	}

	log := m.log.With("user_id", userID)
	ws.Employees = records.NewController(
		m.schemas.Employee, m.client, log, m.metrics, snap.Employee,
		records.WithChangeHook(func(f records.Form[models.Employee]) {
			ws.update(func(s *Snapshot) { s.Employee = f })
		}),
	)
	ws.Salespeople = records.NewController(
		m.schemas.Salesperson, m.client, log, m.metrics, snap.Salesperson,
		records.WithChangeHook(func(f records.Form[models.Salesperson]) {
			ws.update(func(s *Snapshot) { s.Salesperson = f })
		}),
	)

	return ws
}
