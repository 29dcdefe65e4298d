package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned when the telegram ID has no row in bot_users.
var ErrUserNotFound = errors.New("user is not registered")

// RegisterUser stores a new bot user. It reports whether a row was inserted;
// an already registered user is left untouched.
func (r *Repository) RegisterUser(ctx context.Context, telegramID int64, username, language string) (bool, error) {
	defer r.observe("register_user", time.Now())

	cmdTag, err := r.db.Exec(ctx, registerUserSQL, telegramID, username, language)
	if err != nil {
		return false, fmt.Errorf("failed to insert into bot_users: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// IsUserRegistered checks if the telegram ID exists in the bot_users table.
func (r *Repository) IsUserRegistered(ctx context.Context, telegramID int64) (bool, error) {
	defer r.observe("user_exists", time.Now())

	var exists bool
	if err := r.db.QueryRow(ctx, userExistsSQL, telegramID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user registration: %w", err)
	}

	return exists, nil
}

// DeleteUserByID removes a user from the bot_users table by their telegram ID.
func (r *Repository) DeleteUserByID(ctx context.Context, telegramID int64) error {
	defer r.observe("delete_user", time.Now())

	if _, err := r.db.Exec(ctx, deleteUserSQL, telegramID); err != nil {
		return fmt.Errorf("failed to delete user %d from bot_users: %w", telegramID, err)
	}

	return nil
}

// GetUserLanguage returns the interface language of the user.
func (r *Repository) GetUserLanguage(ctx context.Context, telegramID int64) (string, error) {
	defer r.observe("get_language", time.Now())

	return r.getString(ctx, getLanguageSQL, telegramID, "language")
}

// SetUserLanguage updates the interface language of the user.
func (r *Repository) SetUserLanguage(ctx context.Context, telegramID int64, language string) error {
	defer r.observe("set_language", time.Now())

	return r.setString(ctx, setLanguageSQL, telegramID, language, "language")
}

// GetUserDatabase returns the database context the user selected last, or "" if none.
func (r *Repository) GetUserDatabase(ctx context.Context, telegramID int64) (string, error) {
	defer r.observe("get_database", time.Now())

	return r.getString(ctx, getDatabaseSQL, telegramID, "database")
}

// SetUserDatabase remembers the database context the user selected.
func (r *Repository) SetUserDatabase(ctx context.Context, telegramID int64, database string) error {
	defer r.observe("set_database", time.Now())

	return r.setString(ctx, setDatabaseSQL, telegramID, database, "database")
}

func (r *Repository) getString(ctx context.Context, query string, telegramID int64, what string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, query, telegramID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get %s of user %d: %w", what, telegramID, err)
	}

	return value, nil
}

func (r *Repository) setString(ctx context.Context, query string, telegramID int64, value, what string) error {
	cmdTag, err := r.db.Exec(ctx, query, telegramID, value)
	if err != nil {
		return fmt.Errorf("failed to set %s of user %d: %w", what, telegramID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
