package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/nomina/internal/metrics"
)

// Repository stores per-user bot preferences.
type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// Interface defines the user preference operations the bot relies on.
type Interface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, language string) (bool, error)
	IsUserRegistered(ctx context.Context, telegramID int64) (bool, error)
	DeleteUserByID(ctx context.Context, telegramID int64) error
	GetUserLanguage(ctx context.Context, telegramID int64) (string, error)
	SetUserLanguage(ctx context.Context, telegramID int64, language string) error
	GetUserDatabase(ctx context.Context, telegramID int64) (string, error)
	SetUserDatabase(ctx context.Context, telegramID int64, database string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
func NewRepository(db Database, appMetrics *metrics.Metrics) *Repository {
	return &Repository{db: db, metrics: appMetrics}
}

// EnsureSchema creates the tables the bot needs when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createBotUsersSQL); err != nil {
		return fmt.Errorf("failed to create bot_users table: %w", err)
	}
	return nil
}

func (r *Repository) observe(queryType string, startTime time.Time) {
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}
