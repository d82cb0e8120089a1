// internal/domain/models/exportrow.go
package models

import "time"

// ExportRow is one flattened member line of the registration export.
//
// It is produced either by flattening aggregated registrations or read
// directly from the registration_export_view, whose projection uses the
// same bson field names.
type ExportRow struct {
	GroupID            string     `bson:"group_id" json:"group_id"`
	DelegateUserID     string     `bson:"delegate_user_id" json:"delegate_user_id"`
	Name               string     `bson:"name" json:"name"`
	Email              string     `bson:"email" json:"email"`
	College            string     `bson:"college" json:"college"`
	Phone              string     `bson:"phone" json:"phone"`
	CollegeLocation    string     `bson:"college_location" json:"college_location"`
	Tier               string     `bson:"tier" json:"tier"`
	TierAmount         float64    `bson:"tier_amount" json:"tier_amount"`
	GroupTotalAmount   float64    `bson:"group_total_amount" json:"group_total_amount"`
	PaymentTransaction *string    `bson:"payment_transaction_id" json:"payment_transaction_id"`
	Status             Status     `bson:"registration_status" json:"registration_status"`
	SubmittedDate      time.Time  `bson:"submitted_date" json:"submitted_date"`
	ReviewedAt         *time.Time `bson:"reviewed_at" json:"reviewed_at"`
	ReviewedBy         *string    `bson:"reviewed_by" json:"reviewed_by"`
	RejectionReason    *string    `bson:"rejection_reason" json:"rejection_reason"`
}
