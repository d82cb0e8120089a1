// internal/domain/models/event.go
package models

import "time"

// Event is an entry in the public event catalogue (collection events).
// Registrations carry a denormalized copy of the event name.
type Event struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	NameCI      string    `bson:"name_ci" json:"-"`
	Category    string    `bson:"category" json:"category"`
	Description string    `bson:"description" json:"description"`
	Venue       string    `bson:"venue,omitempty" json:"venue,omitempty"`
	Fee         float64   `bson:"fee" json:"fee"`
	MaxTeamSize int       `bson:"max_team_size,omitempty" json:"max_team_size,omitempty"`
	StartsAt    time.Time `bson:"starts_at,omitempty" json:"starts_at,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
