package aggregate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/aggregate"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/dalemusser/eventdesk/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func member(name string, order int) models.GroupMember {
	return models.GroupMember{
		Name:        name,
		Email:       name + "@example.com",
		Phone:       "98450" + name,
		College:     "Springfield, A&M",
		Tier:        "gold",
		Amount:      500,
		MemberOrder: order,
	}
}

func TestList_OnePerGroupNewestFirst(t *testing.T) {
	gw := testutil.NewMemGateway()
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	gw.AddGroup(models.GroupRegistration{GroupID: "G1", EventName: "Hack", TotalAmount: 1000, MemberCount: 2, CreatedAt: base},
		member("alice", 1), member("bob", 2))
	gw.AddGroup(models.GroupRegistration{GroupID: "G2", EventName: "Quiz", TotalAmount: 500, MemberCount: 1, CreatedAt: base.Add(time.Hour)},
		member("carol", 1))

	agg := aggregate.New(gw, zap.NewNop())
	snap, err := agg.List(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Registrations, 2)
	require.Empty(t, snap.Orphans)

	require.Equal(t, "G2", snap.Registrations[0].GroupID, "newest first")
	g1 := snap.Registrations[1]
	require.Equal(t, "alice", g1.Name, "leader is the first member")
	require.Equal(t, "alice@example.com", g1.Email)
	require.Equal(t, 2, g1.MemberCount)
	require.False(t, g1.MemberCountMismatch)
	require.Len(t, g1.Members, 2)
	require.Equal(t, "bob", g1.Members[1].Name)
}

func TestList_ZeroMemberGroupReportedAsOrphan(t *testing.T) {
	gw := testutil.NewMemGateway()
	gw.AddGroup(models.GroupRegistration{GroupID: "G1", EventName: "Hack"}, member("alice", 1))
	gw.AddGroup(models.GroupRegistration{GroupID: "EMPTY", EventName: "Hack", MemberCount: 3})

	snap, err := aggregate.New(gw, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Registrations, 1)
	require.Equal(t, []string{"EMPTY"}, snap.Orphans)
}

func TestList_StoreFailureReturnsFetchError(t *testing.T) {
	gw := testutil.NewMemGateway()
	gw.AddGroup(models.GroupRegistration{GroupID: "G1"}, member("alice", 1))
	gw.ReadErr = errors.New("server selection timeout")

	snap, err := aggregate.New(gw, zap.NewNop()).List(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, outcome.ErrFetch)
	require.Empty(t, snap.Registrations, "no partial result on failure")
}

func TestBuild_MemberCountUsesLiveMembers(t *testing.T) {
	row := models.GroupRow{
		GroupRegistration: models.GroupRegistration{GroupID: "G1", MemberCount: 4},
		Members:           []models.GroupMember{member("alice", 1), member("bob", 2)},
	}
	reg, ok := aggregate.Build(row)
	require.True(t, ok)
	require.Equal(t, 2, reg.MemberCount)
	require.Equal(t, 4, reg.StoredMemberCount)
	require.True(t, reg.MemberCountMismatch)
}

func TestGroup_FirstRowWinsAndBlankIDsSkipped(t *testing.T) {
	rows := []models.GroupRow{
		{GroupRegistration: models.GroupRegistration{GroupID: "G1", EventName: "first"}, Members: []models.GroupMember{member("a", 1)}},
		{GroupRegistration: models.GroupRegistration{GroupID: "", EventName: "blank"}, Members: []models.GroupMember{member("b", 1)}},
		{GroupRegistration: models.GroupRegistration{GroupID: "G1", EventName: "second"}, Members: []models.GroupMember{member("c", 1)}},
	}
	snap := aggregate.Group(rows)
	require.Len(t, snap.Registrations, 1)
	require.Equal(t, "first", snap.Registrations[0].EventName)
}

func TestNormalizeMember_Defaults(t *testing.T) {
	m := aggregate.NormalizeMember(models.GroupMember{Name: "x", PassID: "P-9"})
	require.Equal(t, "pass", m.SelectionType)
	require.Equal(t, 1, m.MemberOrder)
	require.Equal(t, "P-9", m.UserID)
	require.Equal(t, "", m.CollegeLocation)

	m = aggregate.NormalizeMember(models.GroupMember{Tier: "silver", DelegateUserID: "D-1", PassID: "P-1", MemberOrder: 3})
	require.Equal(t, "tier", m.SelectionType)
	require.Equal(t, "D-1", m.UserID)
	require.Equal(t, 3, m.MemberOrder)
}

func TestDetail(t *testing.T) {
	gw := testutil.NewMemGateway()
	gw.AddGroup(models.GroupRegistration{GroupID: "G1"}, member("alice", 1))
	gw.AddGroup(models.GroupRegistration{GroupID: "EMPTY"})
	agg := aggregate.New(gw, zap.NewNop())
	ctx := context.Background()

	reg, err := agg.Detail(ctx, "G1")
	require.NoError(t, err)
	require.Equal(t, "alice", reg.Name)

	_, err = agg.Detail(ctx, "missing")
	require.ErrorIs(t, err, outcome.ErrNotFound)

	_, err = agg.Detail(ctx, "EMPTY")
	require.ErrorIs(t, err, outcome.ErrNotFound)

	_, err = agg.Detail(ctx, "  ")
	require.ErrorIs(t, err, outcome.ErrValidation)
}

func TestMembers_OrderedByMemberOrder(t *testing.T) {
	gw := testutil.NewMemGateway()
	gw.AddGroup(models.GroupRegistration{GroupID: "G1"}, member("second", 2), member("first", 1))

	members, err := aggregate.New(gw, nil).Members(context.Background(), "G1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "first", members[0].Name)
}

func TestExportRows_FetchError(t *testing.T) {
	gw := testutil.NewMemGateway()
	gw.ReadErr = errors.New("view missing")
	_, err := aggregate.New(gw, nil).ExportRows(context.Background())
	require.ErrorIs(t, err, outcome.ErrFetch)
}

// TestGroup_OneRegistrationPerDistinctGroup checks, for arbitrary joined
// rows, that every distinct non-empty group id with members appears exactly
// once and every id without members appears only in Orphans.
func TestGroup_OneRegistrationPerDistinctGroup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(rt, "rows")
		rows := make([]models.GroupRow, 0, n)
		for i := 0; i < n; i++ {
			id := rapid.SampledFrom([]string{"", "G1", "G2", "G3", "G4", "G5"}).Draw(rt, "group_id")
			memberCount := rapid.IntRange(0, 3).Draw(rt, "members")
			row := models.GroupRow{GroupRegistration: models.GroupRegistration{GroupID: id}}
			for j := 0; j < memberCount; j++ {
				row.Members = append(row.Members, models.GroupMember{Name: "m", MemberOrder: j + 1})
			}
			rows = append(rows, row)
		}

		snap := aggregate.Group(rows)

		firstHasMembers := map[string]bool{}
		for _, r := range rows {
			if r.GroupID == "" {
				continue
			}
			if _, ok := firstHasMembers[r.GroupID]; !ok {
				firstHasMembers[r.GroupID] = len(r.Members) > 0
			}
		}

		seen := map[string]int{}
		for _, reg := range snap.Registrations {
			seen[reg.GroupID]++
			if reg.MemberCount != len(reg.Members) || reg.MemberCount == 0 {
				rt.Fatalf("group %s: member count %d, members %d", reg.GroupID, reg.MemberCount, len(reg.Members))
			}
		}
		for _, id := range snap.Orphans {
			seen[id]++
		}
		for id, withMembers := range firstHasMembers {
			if seen[id] != 1 {
				rt.Fatalf("group %s appears %d times", id, seen[id])
			}
			inList := false
			for _, reg := range snap.Registrations {
				if reg.GroupID == id {
					inList = true
				}
			}
			if inList != withMembers {
				rt.Fatalf("group %s: in list=%v, has members=%v", id, inList, withMembers)
			}
		}
		if len(seen) != len(firstHasMembers) {
			rt.Fatalf("unexpected ids in result: %v", seen)
		}
	})
}
