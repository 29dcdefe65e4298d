package repository_test

import (
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/nomina/internal/config"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNewDatabase_Success(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	var err error

	ctx := t.Context()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	defer func() {
		if err = pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %v", err)
		}
	}()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err, "failed to get host")

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err, "failed to get mapped port")

	dbpool, err := repository.NewDatabase(ctx, config.PostgresConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "testuser",
		Password: "testpassword",
		Name:     "testdb",
	})
	require.NoError(t, err, "NewDatabase failed")
	defer dbpool.Close()

	repo := repository.NewRepository(dbpool, metrics.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation must be idempotent")

	created, err := repo.RegisterUser(ctx, 100, "ana", "es")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.RegisterUser(ctx, 100, "ana", "en")
	require.NoError(t, err)
	assert.False(t, created)

	lang, err := repo.GetUserLanguage(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "es", lang)

	database, err := repo.GetUserDatabase(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, database)

	require.NoError(t, repo.SetUserDatabase(ctx, 100, "DEPOUA"))
	database, err = repo.GetUserDatabase(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "DEPOUA", database)

	require.ErrorIs(t, repo.SetUserDatabase(ctx, 200, "DEPOUA"), repository.ErrUserNotFound)
}

func TestNewDatabase_ParseConfigError(t *testing.T) {
	t.Parallel()
	dbpool, err := repository.NewDatabase(t.Context(), config.PostgresConfig{
		Host: "localhost", Port: "invalid-port", User: "user", Password: "pass", Name: "db",
	})

	require.Error(t, err, "Expected an error for invalid database URL, but got nil")
	require.Nil(t, dbpool, "Expected nil dbpool, got: %v", dbpool)

	require.ErrorContains(t, err, "failed to parse database config")
	require.ErrorContainsf(t, err, "invalid port", "Expected error to mention 'invalid port', got: %v", err)
}

func TestNewDatabase_ConnectionError(t *testing.T) {
	t.Parallel()
	dbpool, err := repository.NewDatabase(t.Context(), config.PostgresConfig{
		Host: "nonexistent-host", Port: "5432", User: "user", Password: "pass", Name: "db",
	})

	require.Error(t, err, "Expected an error for connection failure, but got nil")
	if dbpool != nil {
		dbpool.Close()
		t.Errorf("Expected nil dbpool, got: %v", err)
	}

	msg := err.Error()
	assert.True(t,
		strings.Contains(msg, "unable to create connection to PostgreSQL") ||
			strings.Contains(msg, "failed to ping PostgreSQL DB"),
		"unexpected error: %v", err,
	)
}
