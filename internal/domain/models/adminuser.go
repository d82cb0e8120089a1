// internal/domain/models/adminuser.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser is a staff account allowed into the back office
// (collection admin_users). Email is stored lower-cased.
type AdminUser struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"`
	FullName     string             `bson:"full_name" json:"full_name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// EmailTemplate is an editable notification template (collection
// email_templates), looked up by Type (e.g. "approval_event").
type EmailTemplate struct {
	Type      string    `bson:"type" json:"type"`
	Subject   string    `bson:"subject" json:"subject"`
	HTMLBody  string    `bson:"html_body" json:"html_body"`
	TextBody  string    `bson:"text_body" json:"text_body"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
