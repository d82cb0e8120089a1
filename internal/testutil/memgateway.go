package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/eventdesk/internal/domain/models"
)

// MemGateway is an in-memory registration store for core tests. It
// implements the read side used by the aggregator and the write side used
// by the moderation engine.
//
// Set ReadErr or WriteErr to make the next calls fail.
type MemGateway struct {
	mu      sync.Mutex
	groups  []models.GroupRegistration
	members map[string][]models.GroupMember
	export  []models.ExportRow

	ReadErr  error
	WriteErr error

	// Writes counts successful write calls.
	Writes int
}

// NewMemGateway returns an empty MemGateway.
func NewMemGateway() *MemGateway {
	return &MemGateway{members: map[string][]models.GroupMember{}}
}

// AddGroup stores a group and its members. Missing timestamps and status
// are filled in.
func (g *MemGateway) AddGroup(reg models.GroupRegistration, members ...models.GroupMember) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if reg.Status == "" {
		reg.Status = models.StatusPending
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	if reg.UpdatedAt.IsZero() {
		reg.UpdatedAt = reg.CreatedAt
	}
	g.groups = append(g.groups, reg)
	for _, m := range members {
		m.GroupID = reg.GroupID
		g.members[reg.GroupID] = append(g.members[reg.GroupID], m)
	}
}

// SetExportRows replaces the rows returned by ExportRows.
func (g *MemGateway) SetExportRows(rows []models.ExportRow) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.export = rows
}

// Group returns the stored group row for id.
func (g *MemGateway) Group(id string) (models.GroupRegistration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.groups {
		if r.GroupID == id {
			return r, true
		}
	}
	return models.GroupRegistration{}, false
}

// MemberCount returns how many member rows are stored for id.
func (g *MemGateway) MemberCount(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members[id])
}

func (g *MemGateway) ListGroups(ctx context.Context) ([]models.GroupRow, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	groups := append([]models.GroupRegistration(nil), g.groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	out := make([]models.GroupRow, 0, len(groups))
	for _, reg := range groups {
		out = append(out, models.GroupRow{
			GroupRegistration: reg,
			Members:           append([]models.GroupMember(nil), g.members[reg.GroupID]...),
		})
	}
	return out, nil
}

func (g *MemGateway) GetGroup(ctx context.Context, groupID string) (models.GroupRow, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ReadErr != nil {
		return models.GroupRow{}, false, g.ReadErr
	}
	for _, reg := range g.groups {
		if reg.GroupID == groupID {
			return models.GroupRow{
				GroupRegistration: reg,
				Members:           append([]models.GroupMember(nil), g.members[groupID]...),
			}, true, nil
		}
	}
	return models.GroupRow{}, false, nil
}

func (g *MemGateway) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	out := append([]models.GroupMember(nil), g.members[groupID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MemberOrder < out[j].MemberOrder })
	return out, nil
}

func (g *MemGateway) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	return append([]models.ExportRow(nil), g.export...), nil
}

func (g *MemGateway) UpdateReview(ctx context.Context, groupIDs []string, patch models.ReviewPatch) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.WriteErr != nil {
		return 0, g.WriteErr
	}
	want := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		want[id] = struct{}{}
	}
	var matched int64
	for i := range g.groups {
		if _, ok := want[g.groups[i].GroupID]; !ok {
			continue
		}
		by := patch.ReviewedBy
		at := patch.ReviewedAt
		g.groups[i].Status = patch.Status
		g.groups[i].ReviewedBy = &by
		g.groups[i].ReviewedAt = &at
		g.groups[i].RejectionReason = patch.RejectionReason
		g.groups[i].UpdatedAt = patch.ReviewedAt
		matched++
	}
	g.Writes++
	return matched, nil
}

func (g *MemGateway) DeleteGroup(ctx context.Context, groupID string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.WriteErr != nil {
		return 0, g.WriteErr
	}
	var deleted int64
	kept := g.groups[:0]
	for _, reg := range g.groups {
		if reg.GroupID == groupID {
			deleted++
			continue
		}
		kept = append(kept, reg)
	}
	g.groups = kept
	delete(g.members, groupID)
	g.Writes++
	return deleted, nil
}
