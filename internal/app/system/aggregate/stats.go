package aggregate

import "github.com/dalemusser/eventdesk/internal/domain/models"

// Stats summarizes a list of registrations for the dashboard header.
type Stats struct {
	Total        int            `json:"total"`
	Pending      int            `json:"pending"`
	Approved     int            `json:"approved"`
	Rejected     int            `json:"rejected"`
	TotalRevenue float64        `json:"total_revenue"` // approved groups only
	TotalMembers int            `json:"total_members"`
	Tiers        map[string]int `json:"tier_breakdown"`
}

// Summarize counts registrations by status, sums approved revenue, and
// breaks members down by tier (members without a tier count under their
// pass type, or "none").
func Summarize(regs []models.Registration) Stats {
	s := Stats{Tiers: map[string]int{}}
	for _, r := range regs {
		s.Total++
		switch r.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusApproved:
			s.Approved++
			s.TotalRevenue += r.TotalAmount
		case models.StatusRejected:
			s.Rejected++
		}
		for _, m := range r.Members {
			s.TotalMembers++
			key := m.Tier
			if key == "" {
				key = m.PassType
			}
			if key == "" {
				key = "none"
			}
			s.Tiers[key]++
		}
	}
	return s
}
