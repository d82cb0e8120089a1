// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "events"

var ErrDuplicateEventName = errors.New("an event with this name already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Patch holds optional event updates; nil fields are left unchanged.
type Patch struct {
	Name        *string    `json:"name"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Venue       *string    `json:"venue"`
	Fee         *float64   `json:"fee"`
	MaxTeamSize *int       `json:"max_team_size"`
	StartsAt    *time.Time `json:"starts_at"`
}

var catalogueSort = bson.D{{Key: "category", Value: 1}, {Key: "name_ci", Value: 1}}

// List returns events ordered by category then name. A non-empty category
// limits the result to that category.
func (s *Store) List(ctx context.Context, category string) ([]models.Event, error) {
	filter := bson.M{}
	if category = strings.TrimSpace(category); category != "" {
		filter["category"] = category
	}
	return s.find(ctx, filter, options.Find().SetSort(catalogueSort))
}

// Search matches q case-insensitively against name, description and
// category, ordered by name.
func (s *Store) Search(ctx context.Context, q string) ([]models.Event, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx, "")
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"description": re},
		bson.M{"category": re},
	}}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns the distinct non-empty categories, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if c, ok := v.(string); ok && c != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetByID returns mongo.ErrNoDocuments when the event does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.NameCI = text.Fold(e.Name)
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateEventName
		}
		return models.Event{}, err
	}
	return e, nil
}

// Update applies p and returns the updated event. It returns
// mongo.ErrNoDocuments when the event does not exist.
func (s *Store) Update(ctx context.Context, id string, p Patch) (models.Event, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
		set["name_ci"] = text.Fold(*p.Name)
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Venue != nil {
		set["venue"] = *p.Venue
	}
	if p.Fee != nil {
		set["fee"] = *p.Fee
	}
	if p.MaxTeamSize != nil {
		set["max_team_size"] = *p.MaxTeamSize
	}
	if p.StartsAt != nil {
		set["starts_at"] = p.StartsAt.UTC()
	}

	var e models.Event
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&e)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateEventName
		}
		return models.Event{}, err
	}
	return e, nil
}

// Delete removes an event by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
