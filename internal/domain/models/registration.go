// internal/domain/models/registration.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the moderation state of a group registration.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
// Re-opening an approved or rejected group is not supported.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal
// moderation step (pending → approved, pending → rejected).
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// GroupRegistration is one submitted group (collection group_registrations).
//
// Registrations are created by the public submission flow in the pending
// state. This service only moderates (reviewed_* and status) and deletes them.
//
// NOTE:
//   - MemberCount is the value stored at submission time and is advisory.
//     The live member count comes from group_members.
//   - ReviewedBy/ReviewedAt/RejectionReason change together on approve/reject.
type GroupRegistration struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GroupID string             `bson:"group_id" json:"group_id"`

	EventID   string `bson:"event_id,omitempty" json:"event_id,omitempty"`
	EventName string `bson:"event_name" json:"event_name"`

	Status      Status  `bson:"status" json:"status"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	MemberCount int     `bson:"member_count" json:"member_count"`

	// Payment evidence; nil means none was submitted.
	PaymentTransactionID  *string `bson:"payment_transaction_id,omitempty" json:"payment_transaction_id,omitempty"`
	PaymentScreenshotPath *string `bson:"payment_screenshot_path,omitempty" json:"payment_screenshot_path,omitempty"`

	ReviewedBy      *string    `bson:"reviewed_by" json:"reviewed_by"`
	ReviewedAt      *time.Time `bson:"reviewed_at" json:"reviewed_at"`
	RejectionReason *string    `bson:"rejection_reason" json:"rejection_reason"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupMember is one person inside a group (collection group_members).
// Exactly one of UserID, DelegateUserID, PassID is authoritative for a row;
// see ResolveIdentity.
type GroupMember struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID string             `bson:"group_id" json:"group_id"`

	Name            string `bson:"name" json:"name"`
	Email           string `bson:"email" json:"email"`
	Phone           string `bson:"phone" json:"phone"`
	College         string `bson:"college" json:"college"`
	CollegeLocation string `bson:"college_location,omitempty" json:"college_location"`
	SelectionType   string `bson:"selection_type,omitempty" json:"selection_type"`

	UserID         string `bson:"user_id,omitempty" json:"-"`
	DelegateUserID string `bson:"delegate_user_id,omitempty" json:"delegate_user_id,omitempty"`
	PassID         string `bson:"pass_id,omitempty" json:"pass_id,omitempty"`

	Tier     string  `bson:"tier,omitempty" json:"tier,omitempty"`
	PassType string  `bson:"pass_type,omitempty" json:"pass_type,omitempty"`
	PassTier string  `bson:"pass_tier,omitempty" json:"pass_tier,omitempty"`
	Amount   float64 `bson:"amount" json:"amount"`

	// MemberOrder is 1-based; zero means it was not recorded.
	MemberOrder int `bson:"member_order,omitempty" json:"member_order"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// GroupRow is a group registration joined with its member rows, as read
// from the store. Members keep the store's order.
type GroupRow struct {
	GroupRegistration `bson:",inline"`
	Members           []GroupMember `bson:"members"`
}

// ResolveIdentity returns the authoritative member identifier.
//
// Precedence: userID, then delegateUserID, then passID. Blank values are
// skipped; the result is "" when all three are blank.
func ResolveIdentity(userID, delegateUserID, passID string) string {
	for _, id := range []string{userID, delegateUserID, passID} {
		if strings.TrimSpace(id) != "" {
			return id
		}
	}
	return ""
}

// Member is a GroupMember with defaults applied and its identifier resolved.
type Member struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"group_id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	College         string    `json:"college"`
	Phone           string    `json:"phone"`
	CollegeLocation string    `json:"college_location"`
	SelectionType   string    `json:"selection_type"`
	Tier            string    `json:"tier,omitempty"`
	DelegateUserID  string    `json:"delegate_user_id,omitempty"`
	PassType        string    `json:"pass_type,omitempty"`
	PassTier        string    `json:"pass_tier,omitempty"`
	PassID          string    `json:"pass_id,omitempty"`
	Amount          float64   `json:"amount"`
	MemberOrder     int       `json:"member_order"`
	CreatedAt       time.Time `json:"created_at"`
}

// Registration is the aggregated view of one group: the group fields, the
// leader's contact details flattened to the top level, and every member.
// It is rebuilt on every read and never stored.
type Registration struct {
	GroupID   string `json:"group_id"`
	EventID   string `json:"event_id,omitempty"`
	EventName string `json:"event_name"`

	// Leader fields.
	UserID          string  `json:"user_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	College         string  `json:"college"`
	CollegeLocation string  `json:"college_location"`
	SelectionType   string  `json:"selection_type"`
	Tier            string  `json:"tier,omitempty"`
	DelegateUserID  string  `json:"delegate_user_id,omitempty"`
	PassType        string  `json:"pass_type,omitempty"`
	PassTier        string  `json:"pass_tier,omitempty"`
	PassID          string  `json:"pass_id,omitempty"`
	Amount          float64 `json:"amount"`

	TotalAmount           float64    `json:"total_amount"`
	PaymentTransactionID  *string    `json:"payment_transaction_id"`
	PaymentScreenshotPath *string    `json:"payment_screenshot_path"`
	Status                Status     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	ReviewedAt            *time.Time `json:"reviewed_at"`
	ReviewedBy            *string    `json:"reviewed_by"`
	RejectionReason       *string    `json:"rejection_reason"`

	// MemberCount is len(Members). StoredMemberCount is the submitted value;
	// MemberCountMismatch flags rows where the two disagree.
	MemberCount         int  `json:"member_count"`
	StoredMemberCount   int  `json:"stored_member_count"`
	MemberCountMismatch bool `json:"member_count_mismatch,omitempty"`

	Members []Member `json:"members"`
}

// HasPaymentProof reports whether a payment screenshot was submitted.
func (r Registration) HasPaymentProof() bool {
	return r.PaymentScreenshotPath != nil && strings.TrimSpace(*r.PaymentScreenshotPath) != ""
}

// ReviewPatch is the set of review fields written by a moderation action.
// A nil RejectionReason clears the stored reason.
type ReviewPatch struct {
	Status          Status
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason *string
}
