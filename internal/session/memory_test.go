package session_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/records"
	"github.com/UnknownOlympus/nomina/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	t.Parallel()

	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	store := session.NewMemoryStore(time.Minute, appMetrics)
	ctx := t.Context()

	_, err := store.Load(ctx, 42)
	require.ErrorIs(t, err, session.ErrNotFound)

	snap := session.Snapshot{Screen: "employees"}
	snap.Employee.ID = "123"
	snap.Employee.Database = "DEPOFORT"
	snap.Employee.Status = records.Status{Kind: records.StatusSuccess, Code: records.CodeActive, Text: "Active"}
	require.NoError(t, store.Save(ctx, 42, snap))

	got, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	require.NoError(t, store.Delete(ctx, 42))
	_, err = store.Load(ctx, 42)
	require.ErrorIs(t, err, session.ErrNotFound)

	assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.SessionOps.WithLabelValues("load", "miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.SessionOps.WithLabelValues("load", "hit")), 0)
	require.NoError(t, store.Ping(ctx))

	require.NoError(t, store.Save(ctx, 43, snap))
	require.NoError(t, store.Close())
	_, err = store.Load(ctx, 43)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStore_Expires(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(20*time.Millisecond, metrics.NewMetrics(prometheus.NewRegistry()))
	ctx := t.Context()

	require.NoError(t, store.Save(ctx, 1, session.Snapshot{Screen: "home"}))
	time.Sleep(50 * time.Millisecond)

	_, err := store.Load(ctx, 1)
	require.ErrorIs(t, err, session.ErrNotFound)
}
