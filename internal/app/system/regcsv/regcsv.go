// Package regcsv renders the registration export document.
//
// The document is one header line and one line per member, joined by "\n"
// with no trailing newline. Free-text columns are always quoted so that
// commas inside names and college names never shift columns.
package regcsv

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
)

// Header is the fixed column order of the export.
var Header = []string{
	"Group ID",
	"Delegate User ID",
	"Name",
	"Email",
	"College",
	"Phone",
	"College Location",
	"Tier",
	"Tier Amount",
	"Group Total Amount",
	"Payment Transaction ID",
	"Registration Status",
	"Submitted Date",
	"Review Status",
	"Reviewed At",
	"Reviewed By",
	"Rejection Reason",
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"

	reviewStatusDone    = "reviewed"
	reviewStatusWaiting = "awaiting review"
)

// FromRegistrations flattens aggregated registrations into one export row
// per member, keeping registration order and member order.
func FromRegistrations(regs []models.Registration) []models.ExportRow {
	var rows []models.ExportRow
	for _, reg := range regs {
		for _, m := range reg.Members {
			tier := m.Tier
			if tier == "" {
				tier = m.PassType
			}
			rows = append(rows, models.ExportRow{
				GroupID:            reg.GroupID,
				DelegateUserID:     m.UserID,
				Name:               m.Name,
				Email:              m.Email,
				College:            m.College,
				Phone:              m.Phone,
				CollegeLocation:    m.CollegeLocation,
				Tier:               tier,
				TierAmount:         m.Amount,
				GroupTotalAmount:   reg.TotalAmount,
				PaymentTransaction: reg.PaymentTransactionID,
				Status:             reg.Status,
				SubmittedDate:      reg.CreatedAt,
				ReviewedAt:         reg.ReviewedAt,
				ReviewedBy:         reg.ReviewedBy,
				RejectionReason:    reg.RejectionReason,
			})
		}
	}
	return rows
}

// Format returns the full export document. Dates are rendered in loc
// (UTC when loc is nil).
func Format(rows []models.ExportRow, loc *time.Location) string {
	var b strings.Builder
	_ = Write(&b, rows, loc)
	return b.String()
}

// Write streams the export document to w.
func Write(w io.Writer, rows []models.ExportRow, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	if _, err := io.WriteString(w, strings.Join(Header, ",")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := io.WriteString(w, "\n"+line(row, loc)); err != nil {
			return err
		}
	}
	return nil
}

func line(r models.ExportRow, loc *time.Location) string {
	reviewStatus := reviewStatusWaiting
	reviewedAt := ""
	if r.ReviewedAt != nil && !r.ReviewedAt.IsZero() {
		reviewStatus = reviewStatusDone
		reviewedAt = r.ReviewedAt.In(loc).Format(dateTimeLayout)
	}
	submitted := ""
	if !r.SubmittedDate.IsZero() {
		submitted = r.SubmittedDate.In(loc).Format(dateLayout)
	}

	fields := []string{
		plain(r.GroupID),
		plain(r.DelegateUserID),
		quoted(r.Name),
		plain(r.Email),
		quoted(r.College),
		plain(r.Phone),
		quoted(r.CollegeLocation),
		quoted(r.Tier),
		amount(r.TierAmount),
		amount(r.GroupTotalAmount),
		plain(deref(r.PaymentTransaction)),
		plain(string(r.Status)),
		submitted,
		reviewStatus,
		reviewedAt,
		plain(deref(r.ReviewedBy)),
		quoted(deref(r.RejectionReason)),
	}
	return strings.Join(fields, ",")
}

// quoted always wraps s in double quotes, doubling embedded quotes.
func quoted(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// plain leaves s bare unless it would break the line structure.
func plain(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoted(s)
	}
	return s
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
