package bot

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/nomina/internal/client/backoffice"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/records"
	"github.com/UnknownOlympus/nomina/internal/repository"
	"github.com/UnknownOlympus/nomina/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

type fakeUser struct {
	language string
	database string
}

// fakeRepo is an in-memory repository.Interface.
type fakeRepo struct {
	mu    sync.Mutex
	users map[int64]*fakeUser
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*fakeUser)}
}

func (r *fakeRepo) RegisterUser(_ context.Context, id int64, _, language string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; ok {
		return false, nil
	}
	r.users[id] = &fakeUser{language: language}
	return true, nil
}

func (r *fakeRepo) IsUserRegistered(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeRepo) DeleteUserByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

func (r *fakeRepo) GetUserLanguage(_ context.Context, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return "", repository.ErrUserNotFound
	}
	return user.language, nil
}

func (r *fakeRepo) SetUserLanguage(_ context.Context, id int64, language string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.language = language
	return nil
}

func (r *fakeRepo) GetUserDatabase(_ context.Context, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return "", repository.ErrUserNotFound
	}
	return user.database, nil
}

func (r *fakeRepo) SetUserDatabase(_ context.Context, id int64, database string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.database = database
	return nil
}

// fakeContext implements the parts of telebot.Context the handlers use.
type fakeContext struct {
	telebot.Context

	sender    *telebot.User
	text      string
	data      string
	callback  *telebot.Callback
	sent      []any
	replies   []any
	responses []*telebot.CallbackResponse
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		sender: &telebot.User{ID: userID, FirstName: "Ana", Username: "ana", LanguageCode: "en"},
		text:   text,
	}
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Text() string                { return f.text }
func (f *fakeContext) Data() string                { return f.data }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }

func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Reply(what any, _ ...any) error {
	f.replies = append(f.replies, what)
	return nil
}

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) Notify(telebot.ChatAction) error {
	return nil
}

// lastText returns the last text message sent.
func (f *fakeContext) lastText(t *testing.T) string {
	t.Helper()

	for i := len(f.sent) - 1; i >= 0; i-- {
		if text, ok := f.sent[i].(string); ok {
			return text
		}
	}
	t.Fatalf("no text message was sent, got %v", f.sent)
	return ""
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBot builds a bot talking to backend without a Telegram connection.
func newTestBot(t *testing.T, backend http.Handler) (*Bot, *fakeRepo) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	client, err := backoffice.NewClient(backoffice.Config{
		BaseURL:       srv.URL,
		Timeout:       time.Second,
		DatabaseParam: "DatabaseContext",
	}, discardLogger(), appMetrics)
	require.NoError(t, err)

	repo := newFakeRepo()
	sessions := session.NewManager(
		session.NewMemoryStore(time.Minute, appMetrics),
		repo,
		client,
		session.Schemas{
			Employee:    records.EmployeeSchema("/api/employees", "/api/employees/status"),
			Salesperson: records.SalespersonSchema("/api/salespeople"),
		},
		"DEPOFORT",
		discardLogger(),
		appMetrics,
	)

	b, err := newBot(discardLogger(), repo, sessions, appMetrics, Settings{
		Databases: []string{"DEPOFORT", "DEPOSEVN", "DEPOUA", "DEPOTEST"},
		OpTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	return b, repo
}
