// Package regfilter narrows and orders aggregated registrations for the
// admin list. It never touches the store.
package regfilter

import (
	"sort"
	"strings"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted in Criteria.Sort.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
	SortStatus = "status"
	SortAmount = "amount"
)

// All disables a Status or Event predicate, as does "".
const All = "all"

// Criteria selects and orders registrations. All predicates must hold.
type Criteria struct {
	Search string `json:"search"`
	Status string `json:"status"`
	Event  string `json:"event"`
	Sort   string `json:"sort"`
}

// Apply returns the registrations matching c in the requested order. The
// input slice is not modified. Sorting is stable; an unknown sort key keeps
// the input order and an empty key means newest first.
func Apply(regs []models.Registration, c Criteria) []models.Registration {
	out := make([]models.Registration, 0, len(regs))
	search := strings.TrimSpace(c.Search)
	needle := strings.ToLower(search)

	for _, r := range regs {
		if search != "" && !matchesSearch(r, search, needle) {
			continue
		}
		if active(c.Status) && string(r.Status) != c.Status {
			continue
		}
		if active(c.Event) && r.EventName != c.Event {
			continue
		}
		out = append(out, r)
	}

	sortRegistrations(out, c.Sort)
	return out
}

func active(v string) bool {
	return v != "" && v != All
}

// matchesSearch is a case-insensitive substring match on leader name, leader
// email, event name and group id. Phone numbers match case-sensitively.
func matchesSearch(r models.Registration, raw, needle string) bool {
	return strings.Contains(strings.ToLower(r.Name), needle) ||
		strings.Contains(strings.ToLower(r.Email), needle) ||
		strings.Contains(r.Phone, raw) ||
		strings.Contains(strings.ToLower(r.EventName), needle) ||
		strings.Contains(strings.ToLower(r.GroupID), needle)
}

func sortRegistrations(regs []models.Registration, key string) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", SortNewest:
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt) })
	case SortOldest:
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt) })
	case SortName:
		col := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(regs, func(i, j int) bool { return col.CompareString(regs[i].Name, regs[j].Name) < 0 })
	case SortStatus:
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].Status < regs[j].Status })
	case SortAmount:
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].TotalAmount > regs[j].TotalAmount })
	}
}

// EventNames returns the distinct non-empty event names in first-seen order.
func EventNames(regs []models.Registration) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, r := range regs {
		if r.EventName == "" {
			continue
		}
		if _, ok := seen[r.EventName]; ok {
			continue
		}
		seen[r.EventName] = struct{}{}
		names = append(names, r.EventName)
	}
	return names
}
