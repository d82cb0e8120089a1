// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/tracing"
	"github.com/dalemusser/eventdesk/internal/app/system/txn"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Collection and view names.
const (
	GroupsCollection  = "group_registrations"
	MembersCollection = "group_members"
	ExportView        = "registration_export_view"
)

const tracerScope = "eventdesk/store/registrations"

// Store is the MongoDB registration gateway. It serves both the aggregator
// (reads) and the moderation engine (writes).
type Store struct {
	db      *mongo.Database
	groups  *mongo.Collection
	members *mongo.Collection
	view    *mongo.Collection
	log     *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		groups:  db.Collection(GroupsCollection),
		members: db.Collection(MembersCollection),
		view:    db.Collection(ExportView),
		log:     logger,
	}
}

// membersLookup joins each group with its members ordered by member_order
// (then insertion) so the first element is the group leader.
func membersLookup() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from": MembersCollection,
		"let":  bson.M{"gid": "$group_id"},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$group_id", "$$gid"}}}},
			bson.M{"$sort": bson.D{{Key: "member_order", Value: 1}, {Key: "_id", Value: 1}}},
		},
		"as": "members",
	}}}
}

// ListGroups returns every group joined with its members, newest first.
func (s *Store) ListGroups(ctx context.Context) (rows []models.GroupRow, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "registrations.ListGroups",
		attribute.String(tracing.AttrCollection, GroupsCollection))
	defer func() { tracing.End(span, err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		membersLookup(),
	}
	cur, err := s.groups.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows = []models.GroupRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrGroupCount, len(rows)))
	return rows, nil
}

// GetGroup returns one group joined with its members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (row models.GroupRow, found bool, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "registrations.GetGroup",
		attribute.String(tracing.AttrGroupID, groupID))
	defer func() { tracing.End(span, err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"group_id": groupID}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 1}},
		membersLookup(),
	}
	cur, err := s.groups.Aggregate(ctx, pipeline)
	if err != nil {
		return models.GroupRow{}, false, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		return models.GroupRow{}, false, cur.Err()
	}
	if err := cur.Decode(&row); err != nil {
		return models.GroupRow{}, false, err
	}
	return row, true, nil
}

// ListMembers returns the members of one group ordered by member_order.
func (s *Store) ListMembers(ctx context.Context, groupID string) (members []models.GroupMember, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "registrations.ListMembers",
		attribute.String(tracing.AttrGroupID, groupID))
	defer func() { tracing.End(span, err) }()

	cur, err := s.members.Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "member_order", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	members = []models.GroupMember{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// ExportRows reads the export view, newest submission first.
func (s *Store) ExportRows(ctx context.Context) (rows []models.ExportRow, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "registrations.ExportRows",
		attribute.String(tracing.AttrCollection, ExportView))
	defer func() { tracing.End(span, err) }()

	cur, err := s.view.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "submitted_date", Value: -1}, {Key: "group_id", Value: 1}, {Key: "member_order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows = []models.ExportRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrRowCount, len(rows)))
	return rows, nil
}

// UpdateReview writes the review fields on every listed group in a single
// UpdateMany and returns the number of groups matched.
func (s *Store) UpdateReview(ctx context.Context, groupIDs []string, patch models.ReviewPatch) (matched int64, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "registrations.UpdateReview",
		attribute.Int(tracing.AttrGroupCount, len(groupIDs)),
		attribute.String("registration.status", string(patch.Status)))
	defer func() { tracing.End(span, err) }()

	set := bson.M{
		"status":           patch.Status,
		"reviewed_by":      patch.ReviewedBy,
		"reviewed_at":      patch.ReviewedAt,
		"rejection_reason": patch.RejectionReason,
		"updated_at":       patch.ReviewedAt,
	}
	res, err := s.groups.UpdateMany(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64(tracing.AttrMatched, res.MatchedCount))
	return res.MatchedCount, nil
}

// DeleteGroup removes a group and its members, in a transaction when the
// server supports one. It returns the number of group rows deleted.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) (deleted int64, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "registrations.DeleteGroup",
		attribute.String(tracing.AttrGroupID, groupID))
	defer func() { tracing.End(span, err) }()

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.members.DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
			return err
		}
		res, err := s.groups.DeleteMany(ctx, bson.M{"group_id": groupID})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// InsertGroup stores a new pending group and its members. Used by the
// seeding command; the public submission flow lives outside this service.
func (s *Store) InsertGroup(ctx context.Context, g models.GroupRegistration, members []models.GroupMember) error {
	now := time.Now().UTC()
	if g.Status == "" {
		g.Status = models.StatusPending
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = g.CreatedAt
	g.MemberCount = len(members)

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.groups.InsertOne(ctx, g); err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		docs := make([]any, 0, len(members))
		for i, m := range members {
			m.GroupID = g.GroupID
			if m.MemberOrder == 0 {
				m.MemberOrder = i + 1
			}
			if m.CreatedAt.IsZero() {
				m.CreatedAt = g.CreatedAt
			}
			docs = append(docs, m)
		}
		_, err := s.members.InsertMany(ctx, docs)
		return err
	})
}

// ExportViewPipeline is the aggregation behind registration_export_view:
// one row per member joined with its group.
func ExportViewPipeline() mongo.Pipeline {
	ifNull := func(expr any, fallback any) bson.M {
		return bson.M{"$ifNull": bson.A{expr, fallback}}
	}
	// firstSet returns the first field that is present and not blank, like
	// models.ResolveIdentity. An empty string counts as unset.
	firstSet := func(trim bool, fields ...string) bson.M {
		branches := bson.A{}
		for _, f := range fields {
			var value any = bson.M{"$toString": ifNull(f, "")}
			if trim {
				value = bson.M{"$trim": bson.M{"input": value}}
			}
			branches = append(branches, bson.M{
				"case": bson.M{"$ne": bson.A{value, ""}},
				"then": f,
			})
		}
		return bson.M{"$switch": bson.M{"branches": branches, "default": ""}}
	}
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         GroupsCollection,
			"localField":   "group_id",
			"foreignField": "group_id",
			"as":           "g",
		}}},
		{{Key: "$unwind", Value: "$g"}},
		{{Key: "$sort", Value: bson.D{{Key: "g.created_at", Value: -1}, {Key: "member_order", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"_id":                    0,
			"group_id":               1,
			"member_order":           1,
			"delegate_user_id":       firstSet(true, "$user_id", "$delegate_user_id", "$pass_id"),
			"name":                   1,
			"email":                  1,
			"college":                1,
			"phone":                  1,
			"college_location":       ifNull("$college_location", ""),
			"tier":                   firstSet(false, "$tier", "$pass_type"),
			"tier_amount":            ifNull("$amount", 0),
			"group_total_amount":     "$g.total_amount",
			"payment_transaction_id": "$g.payment_transaction_id",
			"registration_status":    "$g.status",
			"submitted_date":         "$g.created_at",
			"reviewed_at":            "$g.reviewed_at",
			"reviewed_by":            "$g.reviewed_by",
			"rejection_reason":       "$g.rejection_reason",
		}}},
	}
}

// EnsureExportView creates registration_export_view, or replaces the
// pipeline of an existing view with the current one.
func EnsureExportView(ctx context.Context, db *mongo.Database) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": ExportView})
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return db.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: ExportView},
			{Key: "viewOn", Value: MembersCollection},
			{Key: "pipeline", Value: ExportViewPipeline()},
		}).Err()
	}
	return db.CreateView(ctx, ExportView, MembersCollection, ExportViewPipeline())
}
