package session

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/nomina/internal/models"
	"github.com/UnknownOlympus/nomina/internal/records"
)

// ErrNotFound is returned by stores when a user has no saved snapshot.
var ErrNotFound = errors.New("session not found")

// Snapshot is the serialized state of one user's screens.
type Snapshot struct {
	Screen      string                           `json:"screen,omitempty"`
	Employee    records.Form[models.Employee]    `json:"employee"`
	Salesperson records.Form[models.Salesperson] `json:"salesperson"`
}

// Store persists snapshots between bot restarts.
type Store interface {
	Load(ctx context.Context, userID int64) (Snapshot, error)
	Save(ctx context.Context, userID int64, snap Snapshot) error
	Delete(ctx context.Context, userID int64) error
	Ping(ctx context.Context) error
	Close() error
}
