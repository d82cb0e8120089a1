package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts registration data directly into a test database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures for db.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup inserts a pending group with createdAt and the given members.
// Members without a member_order are numbered in argument order.
func (f *Fixtures) CreateGroup(ctx context.Context, groupID, eventName string, createdAt time.Time, members ...models.GroupMember) models.GroupRegistration {
	f.t.Helper()

	var total float64
	for _, m := range members {
		total += m.Amount
	}
	g := models.GroupRegistration{
		ID:          primitive.NewObjectID(),
		GroupID:     groupID,
		EventName:   eventName,
		Status:      models.StatusPending,
		TotalAmount: total,
		MemberCount: len(members),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if _, err := f.db.Collection("group_registrations").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("CreateGroup(%s) failed: %v", groupID, err)
	}

	for i, m := range members {
		m.ID = primitive.NewObjectID()
		m.GroupID = groupID
		if m.MemberOrder == 0 {
			m.MemberOrder = i + 1
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = createdAt
		}
		if _, err := f.db.Collection("group_members").InsertOne(ctx, m); err != nil {
			f.t.Fatalf("CreateGroup(%s) member %d failed: %v", groupID, i, err)
		}
	}
	return g
}

// Member returns a member with contact fields derived from name.
func Member(name, userID string, amount float64) models.GroupMember {
	return models.GroupMember{
		Name:    name,
		Email:   name + "@example.com",
		Phone:   "9845000000",
		College: "Springfield, A&M",
		UserID:  userID,
		Tier:    "gold",
		Amount:  amount,
	}
}
