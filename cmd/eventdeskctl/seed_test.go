package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/stretchr/testify/require"
)

func TestSampleGroups(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	groups := sampleGroups(rand.New(rand.NewPCG(7, 3)), 40, now)
	require.Len(t, groups, 40)

	ids := map[string]bool{}
	for _, g := range groups {
		require.False(t, ids[g.group.GroupID], "group ids are unique")
		ids[g.group.GroupID] = true

		require.Equal(t, models.StatusPending, g.group.Status)
		require.NotEmpty(t, g.members)
		require.False(t, g.group.CreatedAt.After(now))
		require.True(t, g.group.CreatedAt.After(now.Add(-25*time.Hour)))

		var total float64
		for i, m := range g.members {
			require.Equal(t, i+1, m.MemberOrder)
			require.NotEmpty(t, models.ResolveIdentity(m.UserID, m.DelegateUserID, m.PassID))
			total += m.Amount
		}
		require.Equal(t, total, g.group.TotalAmount)
	}
}

func TestSampleGroups_Zero(t *testing.T) {
	require.Empty(t, sampleGroups(rand.New(rand.NewPCG(1, 1)), 0, time.Now()))
}
