package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	"github.com/dalemusser/eventdesk/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePruner) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func (f *fakePruner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestAuditPrune_CutoffIsNowMinusRetention(t *testing.T) {
	p := &fakePruner{}
	w := NewAuditPrune(p, nil, time.Hour, 48*time.Hour)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	require.Equal(t, int64(2), w.Prune())
	require.Equal(t, []time.Time{now.Add(-48 * time.Hour)}, p.cutoffs)
}

func TestAuditPrune_ErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := &fakePruner{err: errors.New("not primary")}
	w := NewAuditPrune(p, zap.New(core), time.Hour, time.Hour)

	require.Zero(t, w.Prune())
	require.Equal(t, 1, logs.FilterMessage("failed to prune audit events").Len())
}

func TestAuditPrune_StartRunsImmediatelyAndStops(t *testing.T) {
	p := &fakePruner{}
	w := NewAuditPrune(p, zap.NewNop(), 10*time.Millisecond, time.Hour)

	w.Start()
	require.Eventually(t, func() bool { return p.calls() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	n := p.calls()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, n, p.calls(), "no passes after Stop")
}

func TestAuditPrune_AgainstStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Log(ctx, audit.Event{Timestamp: now.Add(-100 * 24 * time.Hour), Category: audit.CategoryAuth, EventType: audit.EventLogout}))
	require.NoError(t, store.Log(ctx, audit.Event{Timestamp: now.Add(-time.Hour), Category: audit.CategoryAuth, EventType: audit.EventLogout}))

	w := NewAuditPrune(store, zap.NewNop(), time.Hour, 90*24*time.Hour)
	w.now = func() time.Time { return now }
	require.Equal(t, int64(1), w.Prune())

	left, err := store.CountByFilter(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), left)
}
