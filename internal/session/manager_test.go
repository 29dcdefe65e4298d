package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/nomina/internal/client/backoffice"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/models"
	"github.com/UnknownOlympus/nomina/internal/records"
	"github.com/UnknownOlympus/nomina/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRequester struct {
	mu       sync.Mutex
	requests []backoffice.Request
	employee models.Employee
}

func (s *stubRequester) Do(_ context.Context, req backoffice.Request, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if target, ok := out.(*models.Employee); ok {
		*target = s.employee
	}
	return nil
}

type prefsStub struct {
	database string
	err      error
}

func (p prefsStub) GetUserDatabase(context.Context, int64) (string, error) {
	return p.database, p.err
}

type failingStore struct {
	session.Store
}

func (failingStore) Load(context.Context, int64) (session.Snapshot, error) {
	return session.Snapshot{}, errors.New("connection refused")
}

// blockingStore holds the first Save until release is closed.
type blockingStore struct {
	session.Store

	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{Store: newStore(), started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingStore) Save(ctx context.Context, userID int64, snap session.Snapshot) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.started)
		<-b.release
	}
	return b.Store.Save(ctx, userID, snap)
}

// slowPrefs blocks lookups for one user until release is closed.
type slowPrefs struct {
	slowUser int64
	started  chan struct{}
	release  chan struct{}
}

func (p slowPrefs) GetUserDatabase(_ context.Context, userID int64) (string, error) {
	if userID == p.slowUser {
		close(p.started)
		<-p.release
	}
	return "DEPOUA", nil
}

func newManager(
	store session.Store,
	prefs session.DatabasePreferences,
	client backoffice.Requester,
	opts ...session.ManagerOption,
) *session.Manager {
	return session.NewManager(
		store,
		prefs,
		client,
		session.Schemas{
			Employee:    records.EmployeeSchema("/api/employees", "/api/employees/status"),
			Salesperson: records.SalespersonSchema("/api/salespeople"),
		},
		"DEPOFORT",
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewMetrics(prometheus.NewRegistry()),
		opts...,
	)
}

func newStore() *session.MemoryStore {
	return session.NewMemoryStore(time.Minute, metrics.NewMetrics(prometheus.NewRegistry()))
}

func TestManager_FreshWorkspaceUsesDefaultDatabase(t *testing.T) {
	t.Parallel()

	manager := newManager(newStore(), nil, &stubRequester{})
	ws := manager.Workspace(t.Context(), 1)

	assert.Equal(t, "DEPOFORT", ws.Employees.Form().Database)
	assert.Equal(t, "DEPOFORT", ws.Salespeople.Form().Database)
	assert.Empty(t, ws.Screen())
	assert.Same(t, ws, manager.Workspace(t.Context(), 1))
}

func TestManager_FreshWorkspaceUsesPreference(t *testing.T) {
	t.Parallel()

	manager := newManager(newStore(), prefsStub{database: "DEPOUA"}, &stubRequester{})
	ws := manager.Workspace(t.Context(), 1)

	assert.Equal(t, "DEPOUA", ws.Employees.Form().Database)
	assert.Equal(t, "DEPOUA", ws.Salespeople.Form().Database)
}

func TestManager_PreferenceErrorFallsBackToDefault(t *testing.T) {
	t.Parallel()

	manager := newManager(newStore(), prefsStub{err: errors.New("user not found")}, &stubRequester{})
	ws := manager.Workspace(t.Context(), 1)

	assert.Equal(t, "DEPOFORT", ws.Employees.Form().Database)
}

func TestManager_PersistsAndRestores(t *testing.T) {
	t.Parallel()

	store := newStore()
	client := &stubRequester{employee: models.Employee{Codigo: "123", Apellido: "Perez"}}

	first := newManager(store, nil, client)
	ws := first.Workspace(t.Context(), 5)
	ws.SetScreen("employees")
	ws.Employees.SetID("123")
	ws.Employees.SetDatabase("DEPOSEVN")
	_, err := ws.Employees.Get(t.Context())
	require.NoError(t, err)
	require.NoError(t, ws.Salespeople.SetField("Nombre", "Ana"))

	// a second manager simulates a restart sharing the same store
	restored := newManager(store, nil, client).Workspace(t.Context(), 5)

	assert.Equal(t, "employees", restored.Screen())
	form := restored.Employees.Form()
	assert.Equal(t, "123", form.ID)
	assert.Equal(t, "DEPOSEVN", form.Database)
	require.True(t, form.IsLoaded())
	assert.Equal(t, "Perez", form.Loaded.Apellido)
	assert.Equal(t, "Active", form.Status.Text)
	assert.Equal(t, "Ana", restored.Salespeople.Form().Fields.Nombre)
}

func TestManager_LoadErrorStartsFresh(t *testing.T) {
	t.Parallel()

	manager := newManager(failingStore{Store: newStore()}, nil, &stubRequester{})
	ws := manager.Workspace(t.Context(), 3)

	assert.Equal(t, "DEPOFORT", ws.Employees.Form().Database)
}

func TestManager_Close(t *testing.T) {
	t.Parallel()

	store := newStore()
	manager := newManager(store, nil, &stubRequester{})
	ws := manager.Workspace(t.Context(), 9)
	ws.Employees.SetID("77")

	require.NoError(t, manager.Close(t.Context(), 9))

	_, err := store.Load(t.Context(), 9)
	require.ErrorIs(t, err, session.ErrNotFound)
	fresh := manager.Workspace(t.Context(), 9)
	assert.NotSame(t, ws, fresh)
	assert.Empty(t, fresh.Employees.Form().ID)
	require.NoError(t, manager.Ping(t.Context()))
}

func TestManager_ConcurrentChangesAreAllPersisted(t *testing.T) {
	t.Parallel()

	store := newBlockingStore()
	ws := newManager(store, nil, &stubRequester{}).Workspace(t.Context(), 11)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ws.Employees.SetID("E-1")
	}()
	<-store.started

	salespersonSaved := make(chan struct{})
	go func() {
		defer close(salespersonSaved)
		ws.Salespeople.SetID("S-1")
	}()
	// let the salesperson change queue up behind the held save
	time.Sleep(50 * time.Millisecond)

	close(store.release)
	<-done
	<-salespersonSaved

	snap, err := store.Load(t.Context(), 11)
	require.NoError(t, err)
	assert.Equal(t, "E-1", snap.Employee.ID)
	assert.Equal(t, "S-1", snap.Salesperson.ID)
}

func TestManager_FormReadableWhileSaving(t *testing.T) {
	t.Parallel()

	store := newBlockingStore()
	ws := newManager(store, nil, &stubRequester{}).Workspace(t.Context(), 12)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ws.Employees.SetID("7")
	}()
	<-store.started
	defer func() {
		close(store.release)
		<-done
	}()

	read := make(chan string, 1)
	go func() { read <- ws.Employees.Form().ID }()

	select {
	case id := <-read:
		assert.Equal(t, "7", id)
	case <-time.After(time.Second):
		t.Fatal("reading the form waited for the session store")
	}
}

func TestManager_IdleWorkspaceExpiresAndIsRestored(t *testing.T) {
	t.Parallel()

	store := newStore()
	manager := newManager(store, nil, &stubRequester{}, session.WithIdleTTL(30*time.Millisecond))

	ws := manager.Workspace(t.Context(), 13)
	ws.SetScreen("salespeople")
	ws.Salespeople.SetID("V-9")
	assert.Same(t, ws, manager.Workspace(t.Context(), 13))

	time.Sleep(80 * time.Millisecond)

	restored := manager.Workspace(t.Context(), 13)
	assert.NotSame(t, ws, restored)
	assert.Equal(t, "salespeople", restored.Screen())
	assert.Equal(t, "V-9", restored.Salespeople.Form().ID)
}

func TestManager_SlowRestoreDoesNotBlockOtherUsers(t *testing.T) {
	t.Parallel()

	prefs := slowPrefs{slowUser: 1, started: make(chan struct{}), release: make(chan struct{})}
	manager := newManager(newStore(), prefs, &stubRequester{})

	slow := make(chan *session.Workspace, 1)
	go func() { slow <- manager.Workspace(t.Context(), 1) }()
	<-prefs.started

	other := make(chan *session.Workspace, 1)
	go func() { other <- manager.Workspace(t.Context(), 2) }()

	select {
	case ws := <-other:
		assert.Equal(t, "DEPOUA", ws.Employees.Form().Database)
	case <-time.After(time.Second):
		t.Fatal("restoring one user blocked another")
	}

	close(prefs.release)
	ws := <-slow
	assert.Same(t, ws, manager.Workspace(t.Context(), 1))
}
