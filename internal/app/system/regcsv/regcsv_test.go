package regcsv_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/regcsv"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func strPtr(s string) *string { return &s }

func sampleRow() models.ExportRow {
	return models.ExportRow{
		GroupID:            "G1",
		DelegateUserID:     "D-17",
		Name:               `Asha "Ace" Rao`,
		Email:              "asha@example.com",
		College:            "Springfield, A&M",
		Phone:              "9845012345",
		CollegeLocation:    "Springfield",
		Tier:               "gold",
		TierAmount:         499.5,
		GroupTotalAmount:   999,
		PaymentTransaction: strPtr("TXN-1"),
		Status:             models.StatusPending,
		SubmittedDate:      time.Date(2025, 2, 1, 23, 30, 0, 0, time.UTC),
	}
}

func parse(t *testing.T, doc string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(doc))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestFormat_HeaderAndNoTrailingNewline(t *testing.T) {
	doc := regcsv.Format([]models.ExportRow{sampleRow()}, time.UTC)

	lines := strings.Split(doc, "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(regcsv.Header, ","), lines[0])
	require.False(t, strings.HasSuffix(doc, "\n"))
	require.Len(t, regcsv.Header, 17)
}

func TestFormat_EmptyRowsIsHeaderOnly(t *testing.T) {
	require.Equal(t, strings.Join(regcsv.Header, ","), regcsv.Format(nil, nil))
}

func TestFormat_CommaInCollegeKeepsSeventeenFields(t *testing.T) {
	doc := regcsv.Format([]models.ExportRow{sampleRow()}, time.UTC)
	records := parse(t, doc)
	require.Len(t, records, 2)
	row := records[1]
	require.Len(t, row, 17)
	require.Equal(t, "Springfield, A&M", row[4])
	require.Equal(t, `Asha "Ace" Rao`, row[2])
}

func TestFormat_FieldRendering(t *testing.T) {
	row := sampleRow()
	doc := regcsv.Format([]models.ExportRow{row}, time.UTC)
	line := strings.Split(doc, "\n")[1]

	require.True(t, strings.HasPrefix(line, `G1,D-17,"Asha ""Ace"" Rao",asha@example.com,"Springfield, A&M",9845012345,"Springfield","gold",499.5,999,TXN-1,pending,2025-02-01,awaiting review,,,""`))
}

func TestFormat_NilOptionalFieldsRenderEmpty(t *testing.T) {
	row := sampleRow()
	row.PaymentTransaction = nil
	row.SubmittedDate = time.Time{}
	records := parse(t, regcsv.Format([]models.ExportRow{row}, time.UTC))
	got := records[1]
	require.Equal(t, "", got[10])
	require.Equal(t, "", got[12])
	require.Equal(t, "", got[14])
	require.Equal(t, "", got[15])
	require.Equal(t, "", got[16])
}

func TestFormat_ReviewedRowUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)

	row := sampleRow()
	reviewed := time.Date(2025, 2, 2, 20, 0, 0, 0, time.UTC)
	row.ReviewedAt = &reviewed
	row.ReviewedBy = strPtr("admin")
	row.Status = models.StatusRejected
	row.RejectionReason = strPtr("Payment, not visible")

	got := parse(t, regcsv.Format([]models.ExportRow{row}, kolkata))[1]
	require.Equal(t, "2025-02-02", got[12], "23:30 UTC is the next day in Kolkata")
	require.Equal(t, "reviewed", got[13])
	require.Equal(t, "2025-02-03 01:30:00", got[14])
	require.Equal(t, "admin", got[15])
	require.Equal(t, "Payment, not visible", got[16])
}

func TestFromRegistrations_OneRowPerMember(t *testing.T) {
	regs := []models.Registration{{
		GroupID:     "G1",
		TotalAmount: 1500,
		Status:      models.StatusApproved,
		Members: []models.Member{
			{Name: "Asha", UserID: "U1", Tier: "gold", Amount: 1000},
			{Name: "Ravi", UserID: "D2", PassType: "day", Amount: 500},
		},
	}}
	rows := regcsv.FromRegistrations(regs)
	require.Len(t, rows, 2)
	require.Equal(t, "U1", rows[0].DelegateUserID)
	require.Equal(t, "day", rows[1].Tier)
	require.Equal(t, 1500.0, rows[1].GroupTotalAmount)
	require.Equal(t, models.StatusApproved, rows[1].Status)
}

// Any text in the free-text and id columns must round-trip through a
// standard CSV reader with exactly 17 fields per line.
func TestFormat_RoundTripsArbitraryText(t *testing.T) {
	text := rapid.StringMatching(`[a-zA-Z0-9 ,"&'\-]{0,20}`)
	rapid.Check(t, func(rt *rapid.T) {
		row := models.ExportRow{
			GroupID:         text.Draw(rt, "group_id"),
			Name:            text.Draw(rt, "name"),
			College:         text.Draw(rt, "college"),
			Tier:            text.Draw(rt, "tier"),
			Phone:           text.Draw(rt, "phone"),
			RejectionReason: strPtr(text.Draw(rt, "reason")),
			Status:          models.StatusPending,
		}
		r := csv.NewReader(strings.NewReader(regcsv.Format([]models.ExportRow{row}, time.UTC)))
		records, err := r.ReadAll()
		if err != nil {
			rt.Fatalf("csv parse: %v", err)
		}
		got := records[1]
		if len(got) != 17 {
			rt.Fatalf("got %d fields", len(got))
		}
		if got[0] != row.GroupID || got[2] != row.Name || got[4] != row.College || got[5] != row.Phone || got[16] != *row.RejectionReason {
			rt.Fatalf("round trip mismatch: %q", got)
		}
	})
}
