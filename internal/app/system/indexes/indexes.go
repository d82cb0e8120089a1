// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	adminuserstore "github.com/dalemusser/eventdesk/internal/app/store/adminusers"
	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	emailtemplatestore "github.com/dalemusser/eventdesk/internal/app/store/emailtemplates"
	eventstore "github.com/dalemusser/eventdesk/internal/app/store/events"
	registrationstore "github.com/dalemusser/eventdesk/internal/app/store/registrations"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's set is reconciled
independently and every problem is reported so startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range Sets() {
		if err := ensureIndexSet(ctx, db.Collection(set.Collection), set.Models); err != nil {
			problems = append(problems, set.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Set is the desired index list for one collection.
type Set struct {
	Collection string
	Models     []mongo.IndexModel
}

// Sets returns every index this service relies on.
func Sets() []Set {
	return []Set{
		{registrationstore.GroupsCollection, []mongo.IndexModel{
			// Not unique: legacy data can repeat a group_id and the list
			// view keeps the first row.
			{
				Keys:    bson.D{{Key: "group_id", Value: 1}},
				Options: options.Index().SetName("idx_groupreg_groupid"),
			},
			// Newest-first list with a stable tie-break.
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_groupreg_createdat_id"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_groupreg_status_createdat"),
			},
		}},
		{registrationstore.MembersCollection, []mongo.IndexModel{
			// Covers the $lookup join and the members-in-order read.
			{
				Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "member_order", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_groupmem_groupid_order_id"),
			},
		}},
		{eventstore.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_events_nameci"),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "name_ci", Value: 1}},
				Options: options.Index().SetName("idx_events_category_nameci"),
			},
		}},
		{adminuserstore.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_adminusers_email"),
			},
		}},
		{emailtemplatestore.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "type", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_emailtemplates_type"),
			},
		}},
		{audit.Collection, []mongo.IndexModel{
			// Newest-first browsing and retention pruning.
			{
				Keys:    bson.D{{Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_category_type_timestamp"),
			},
			{
				Keys:    bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_actor_timestamp"),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// A missing collection has no indexes yet.
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		var name string
		var unique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = boolVal(m.Options.Unique)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if boolVal(ex.Unique) == unique && (name == "" || ex.Name == name) {
				log.Info("reusing existing index")
				continue
			}
			// Same keys under another name or uniqueness: drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			if unique && wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
