package registrationstore_test

import (
	"testing"
	"time"

	registrationstore "github.com/dalemusser/eventdesk/internal/app/store/registrations"
	"github.com/dalemusser/eventdesk/internal/app/system/aggregate"
	"github.com/dalemusser/eventdesk/internal/app/system/moderation"
	"github.com/dalemusser/eventdesk/internal/app/system/regcsv"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/dalemusser/eventdesk/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var created = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

// Both interfaces are satisfied by the Mongo store.
var (
	_ aggregate.Reader  = (*registrationstore.Store)(nil)
	_ moderation.Writer = (*registrationstore.Store)(nil)
)

func TestStore_ListGroupsJoinsMembersInOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lead := testutil.Member("asha", "U1", 500)
	lead.MemberOrder = 1
	second := testutil.Member("ravi", "", 500)
	second.DelegateUserID = "D2"
	second.MemberOrder = 2
	fx.CreateGroup(ctx, "G1", "Hackathon", created, second, lead)
	fx.CreateGroup(ctx, "G2", "Quiz", created.Add(time.Hour), testutil.Member("carol", "U3", 200))

	store := registrationstore.New(db, zap.NewNop())
	rows, err := store.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "G2", rows[0].GroupID)
	require.Len(t, rows[1].Members, 2)
	require.Equal(t, "asha", rows[1].Members[0].Name, "member_order 1 comes first")

	snap := aggregate.Group(rows)
	require.Equal(t, "asha", snap.Registrations[1].Name)
	require.Equal(t, "D2", snap.Registrations[1].Members[1].UserID)
}

func TestStore_GetGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateGroup(ctx, "G1", "Hackathon", created, testutil.Member("asha", "U1", 500))
	store := registrationstore.New(db, nil)

	row, found, err := store.GetGroup(ctx, "G1")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, row.Members, 1)

	_, found, err = store.GetGroup(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStore_UpdateReviewMatchesExistingOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateGroup(ctx, "a", "Hackathon", created, testutil.Member("asha", "U1", 500))
	fx.CreateGroup(ctx, "b", "Hackathon", created, testutil.Member("ravi", "U2", 500))
	store := registrationstore.New(db, nil)

	now := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)
	n, err := store.UpdateReview(ctx, []string{"a", "b", "nonexistent"}, models.ReviewPatch{
		Status: models.StatusApproved, ReviewedBy: "admin", ReviewedAt: now,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	row, _, err := store.GetGroup(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, row.Status)
	require.Equal(t, "admin", *row.ReviewedBy)
	require.True(t, now.Equal(*row.ReviewedAt))
	require.Nil(t, row.RejectionReason)
}

func TestStore_DeleteGroupRemovesMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateGroup(ctx, "G1", "Hackathon", created, testutil.Member("asha", "U1", 500), testutil.Member("ravi", "U2", 500))
	store := registrationstore.New(db, nil)

	n, err := store.DeleteGroup(ctx, "G1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	members, err := store.ListMembers(ctx, "G1")
	require.NoError(t, err)
	require.Empty(t, members)

	n, err = store.DeleteGroup(ctx, "G1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStore_ExportViewFlattensMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, registrationstore.EnsureExportView(ctx, db))
	require.NoError(t, registrationstore.EnsureExportView(ctx, db), "second call refreshes the view")

	pass := testutil.Member("ravi", "", 250)
	pass.Tier = ""
	pass.PassID = "P-9"
	pass.PassType = "day"
	fx.CreateGroup(ctx, "G1", "Hackathon", created, testutil.Member("asha", "U1", 500), pass)

	rows, err := registrationstore.New(db, nil).ExportRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "U1", rows[0].DelegateUserID)
	require.Equal(t, "P-9", rows[1].DelegateUserID)
	require.Equal(t, "day", rows[1].Tier)
	require.Equal(t, 750.0, rows[1].GroupTotalAmount)
	require.Equal(t, models.StatusPending, rows[1].Status)
}

func TestStore_ExportViewMatchesAggregatedRowsForBlankFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, registrationstore.EnsureExportView(ctx, db))
	fx.CreateGroup(ctx, "G1", "Hackathon", created, testutil.Member("asha", "U1", 500))

	// Rows written by the submission flow may carry empty strings rather
	// than omitting the field.
	members := db.Collection(registrationstore.MembersCollection)
	for _, doc := range []bson.M{
		{"group_id": "G1", "name": "ravi", "email": "ravi@example.com", "user_id": "", "delegate_user_id": "D2",
			"pass_id": "", "tier": "", "pass_type": "day", "amount": 250.0, "member_order": 2, "created_at": created},
		{"group_id": "G1", "name": "meena", "email": "meena@example.com", "user_id": "  ", "delegate_user_id": "",
			"pass_id": "P-7", "tier": "gold", "amount": 500.0, "member_order": 3, "created_at": created},
	} {
		_, err := members.InsertOne(ctx, doc)
		require.NoError(t, err)
	}

	store := registrationstore.New(db, nil)
	viewRows, err := store.ExportRows(ctx)
	require.NoError(t, err)

	snap, err := aggregate.New(store, nil).List(ctx)
	require.NoError(t, err)
	aggRows := regcsv.FromRegistrations(snap.Registrations)
	require.Len(t, viewRows, len(aggRows))

	type key struct{ id, tier string }
	byName := func(rows []models.ExportRow) map[string]key {
		out := map[string]key{}
		for _, r := range rows {
			out[r.Name] = key{r.DelegateUserID, r.Tier}
		}
		return out
	}
	want := map[string]key{
		"asha":  {"U1", "gold"},
		"ravi":  {"D2", "day"},
		"meena": {"P-7", "gold"},
	}
	require.Equal(t, want, byName(aggRows))
	require.Equal(t, want, byName(viewRows))
}

func TestStore_InsertGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := registrationstore.New(db, nil)
	err := store.InsertGroup(ctx, models.GroupRegistration{GroupID: "S1", EventName: "Robo", TotalAmount: 100},
		[]models.GroupMember{{Name: "x", Email: "x@example.com", UserID: "U9", Amount: 100}})
	require.NoError(t, err)

	row, found, err := store.GetGroup(ctx, "S1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.StatusPending, row.Status)
	require.Equal(t, 1, row.MemberCount)
	require.Equal(t, 1, row.Members[0].MemberOrder)
}
