// internal/app/store/adminusers/adminuserstore.go
package adminuserstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const Collection = "admin_users"

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// MinPasswordLength is enforced by Create and SetPassword.
const MinPasswordLength = 8

// Roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

var (
	ErrDuplicateEmail     = errors.New("an admin with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create inserts an active admin with a bcrypt hash of password.
func (s *Store) Create(ctx context.Context, email, fullName, password, role string) (models.AdminUser, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return models.AdminUser{}, err
	}
	if role == "" {
		role = RoleAdmin
	}
	now := time.Now().UTC()
	u := models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        normalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AdminUser{}, ErrDuplicateEmail
		}
		return models.AdminUser{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AdminUser, error) {
	var u models.AdminUser
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.AdminUser{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	var u models.AdminUser
	if err := s.c.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		return models.AdminUser{}, err
	}
	return u, nil
}

// Authenticate checks email and password against an active admin and
// records the login time. Unknown emails, inactive accounts and wrong
// passwords all return ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.AdminUser, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AdminUser{}, ErrInvalidCredentials
		}
		return models.AdminUser{}, err
	}
	if !u.IsActive {
		return models.AdminUser{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.AdminUser{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if _, err := s.c.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"last_login": now}}); err != nil {
		return models.AdminUser{}, err
	}
	u.LastLogin = &now
	return u, nil
}

// SetPassword replaces the password hash for email.
func (s *Store) SetPassword(ctx context.Context, email, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"email": normalizeEmail(email)}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetActive enables or disables an admin account.
func (s *Store) SetActive(ctx context.Context, email string, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"email": normalizeEmail(email)}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole changes the role of an admin account.
func (s *Store) SetRole(ctx context.Context, email, role string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"email": normalizeEmail(email)}, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
