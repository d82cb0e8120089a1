// internal/app/store/emailtemplates/emailtemplatestore.go
package emailtemplatestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "email_templates"

const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// Store reads email templates by type. Lookups, including misses, are
// cached for the configured TTL.
type Store struct {
	c     *mongo.Collection
	cache *gocache.Cache
}

func New(db *mongo.Database, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		c:     db.Collection(Collection),
		cache: gocache.New(ttl, DefaultCleanupInterval),
	}
}

// Get returns the template for templateType, or nil when none is stored.
func (s *Store) Get(ctx context.Context, templateType string) (*models.EmailTemplate, error) {
	if v, ok := s.cache.Get(templateType); ok {
		if t, ok := v.(*models.EmailTemplate); ok {
			return t, nil
		}
	}

	var t models.EmailTemplate
	err := s.c.FindOne(ctx, bson.M{"type": templateType}).Decode(&t)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		s.cache.SetDefault(templateType, (*models.EmailTemplate)(nil))
		return nil, nil
	case err != nil:
		return nil, err
	}
	s.cache.SetDefault(templateType, &t)
	return &t, nil
}

// List returns all stored templates ordered by type.
func (s *Store) List(ctx context.Context) ([]models.EmailTemplate, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "type", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.EmailTemplate{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert stores t by type and drops the cached copy.
func (s *Store) Upsert(ctx context.Context, t models.EmailTemplate) error {
	t.UpdatedAt = time.Now().UTC()
	_, err := s.c.ReplaceOne(ctx, bson.M{"type": t.Type}, t, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	s.cache.Delete(t.Type)
	return nil
}
