package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	"github.com/dalemusser/eventdesk/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestStore_LogDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     "ops@example.com",
		IP:        "192.168.1.1",
		Success:   true,
	}))

	events, err := store.Query(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.False(t, events[0].ID.IsZero())
	require.True(t, events[0].Timestamp.After(before))
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	seed := []audit.Event{
		{Timestamp: base, Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Actor: "a@example.com", Success: true},
		{Timestamp: base.Add(time.Hour), Category: audit.CategoryAuth, EventType: audit.EventLogout, Actor: "a@example.com", Success: true},
		{Timestamp: base.Add(2 * time.Hour), Category: audit.CategoryAuth, EventType: audit.EventBootstrapAdminEnsured, Actor: "b@example.com", Success: true},
		{Timestamp: base.Add(3 * time.Hour), Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, Actor: "b@example.com"},
	}
	for _, e := range seed {
		require.NoError(t, store.Log(ctx, e))
	}

	all, err := store.Query(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, audit.EventLoginFailed, all[0].EventType, "newest first")

	auth, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	require.NoError(t, err)
	require.Len(t, auth, 4)

	logins, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventLoginSuccess})
	require.NoError(t, err)
	require.Len(t, logins, 1)

	byActor, err := store.CountByFilter(ctx, audit.QueryFilter{Actor: "b@example.com"})
	require.NoError(t, err)
	require.EqualValues(t, 2, byActor)

	start, end := base.Add(30*time.Minute), base.Add(150*time.Minute)
	window, err := store.Query(ctx, audit.QueryFilter{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	require.Len(t, window, 2)

	page, err := store.Query(ctx, audit.QueryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, audit.EventBootstrapAdminEnsured, page[0].EventType)
}

func TestStore_PruneBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	require.NoError(t, store.Log(ctx, audit.Event{Timestamp: now.Add(-48 * time.Hour), Category: audit.CategoryAuth, EventType: audit.EventLogout}))
	require.NoError(t, store.Log(ctx, audit.Event{Timestamp: now, Category: audit.CategoryAuth, EventType: audit.EventLogout}))

	n, err := store.PruneBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	left, err := store.CountByFilter(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, left)
}
