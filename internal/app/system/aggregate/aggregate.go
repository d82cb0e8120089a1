// Package aggregate turns group and member rows from the registration store
// into one Registration per group.
//
// The Aggregator is read-only. It is built with an explicit store so each
// caller (HTTP handlers, the CLI, tests) supplies its own.
package aggregate

import (
	"context"
	"strings"

	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.uber.org/zap"
)

// Reader is the read side of the registration store.
type Reader interface {
	// ListGroups returns every group joined with its members, newest first.
	ListGroups(ctx context.Context) ([]models.GroupRow, error)
	// GetGroup returns one group joined with its members. found is false
	// when no group row exists for groupID.
	GetGroup(ctx context.Context, groupID string) (row models.GroupRow, found bool, err error)
	// ListMembers returns the members of one group ordered by member_order.
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	// ExportRows reads the pre-joined export view, newest submission first.
	ExportRows(ctx context.Context) ([]models.ExportRow, error)
}

// Snapshot is the result of one List call.
type Snapshot struct {
	Registrations []models.Registration `json:"registrations"`
	// Orphans holds ids of groups that have no member rows. They are left
	// out of Registrations because there is no leader to describe them.
	Orphans []string `json:"orphans,omitempty"`
}

// Aggregator builds Registration values from store rows.
type Aggregator struct {
	store Reader
	log   *zap.Logger
}

// New constructs an Aggregator over store.
func New(store Reader, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, log: logger}
}

// List fetches all groups and aggregates them, keeping the store's order
// (created_at descending). On a store failure no partial result is returned.
func (a *Aggregator) List(ctx context.Context) (Snapshot, error) {
	rows, err := a.store.ListGroups(ctx)
	if err != nil {
		a.log.Error("list registrations failed", zap.Error(err))
		return Snapshot{}, outcome.Fetch("Failed to fetch registrations", err)
	}

	snap := Group(rows)
	if len(snap.Orphans) > 0 {
		a.log.Warn("registrations without members omitted from list",
			zap.Strings("group_ids", snap.Orphans))
	}
	return snap, nil
}

// Detail returns the aggregated registration for one group.
func (a *Aggregator) Detail(ctx context.Context, groupID string) (models.Registration, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return models.Registration{}, outcome.Validation("Group ID is required")
	}

	row, found, err := a.store.GetGroup(ctx, groupID)
	if err != nil {
		a.log.Error("get registration failed", zap.String("group_id", groupID), zap.Error(err))
		return models.Registration{}, outcome.Fetch("Failed to fetch registration", err)
	}
	if !found {
		return models.Registration{}, outcome.NotFound("Registration not found")
	}

	reg, ok := Build(row)
	if !ok {
		a.log.Warn("registration has no members", zap.String("group_id", groupID))
		return models.Registration{}, outcome.NotFound("Registration has no members")
	}
	return reg, nil
}

// Members returns the members of one group ordered by member_order.
func (a *Aggregator) Members(ctx context.Context, groupID string) ([]models.Member, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, outcome.Validation("Group ID is required")
	}
	rows, err := a.store.ListMembers(ctx, groupID)
	if err != nil {
		a.log.Error("list group members failed", zap.String("group_id", groupID), zap.Error(err))
		return nil, outcome.Fetch("Failed to fetch group members", err)
	}
	out := make([]models.Member, 0, len(rows))
	for _, m := range rows {
		out = append(out, NormalizeMember(m))
	}
	return out, nil
}

// ExportRows reads the export view. It is independent of List.
func (a *Aggregator) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := a.store.ExportRows(ctx)
	if err != nil {
		a.log.Error("read export view failed", zap.Error(err))
		return nil, outcome.Fetch("Failed to fetch export data", err)
	}
	return rows, nil
}

// Group aggregates joined rows. The first row seen for a group_id wins;
// rows with a blank group_id are ignored.
func Group(rows []models.GroupRow) Snapshot {
	seen := make(map[string]struct{}, len(rows))
	snap := Snapshot{Registrations: make([]models.Registration, 0, len(rows))}

	for _, row := range rows {
		id := row.GroupID
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		reg, ok := Build(row)
		if !ok {
			snap.Orphans = append(snap.Orphans, id)
			continue
		}
		snap.Registrations = append(snap.Registrations, reg)
	}
	return snap
}

// Build aggregates a single joined row. ok is false when the group has no
// members.
//
// The leader is the first member in the row's order. MemberCount is the
// live number of members; the stored member_count is kept alongside it.
func Build(row models.GroupRow) (models.Registration, bool) {
	if len(row.Members) == 0 {
		return models.Registration{}, false
	}

	members := make([]models.Member, 0, len(row.Members))
	for _, m := range row.Members {
		members = append(members, NormalizeMember(m))
	}
	leader := members[0]
	g := row.GroupRegistration

	return models.Registration{
		GroupID:   g.GroupID,
		EventID:   g.EventID,
		EventName: g.EventName,

		UserID:          leader.UserID,
		Name:            leader.Name,
		Email:           leader.Email,
		Phone:           leader.Phone,
		College:         leader.College,
		CollegeLocation: leader.CollegeLocation,
		SelectionType:   leader.SelectionType,
		Tier:            leader.Tier,
		DelegateUserID:  leader.DelegateUserID,
		PassType:        leader.PassType,
		PassTier:        leader.PassTier,
		PassID:          leader.PassID,
		Amount:          leader.Amount,

		TotalAmount:           g.TotalAmount,
		PaymentTransactionID:  g.PaymentTransactionID,
		PaymentScreenshotPath: g.PaymentScreenshotPath,
		Status:                g.Status,
		CreatedAt:             g.CreatedAt,
		UpdatedAt:             g.UpdatedAt,
		ReviewedAt:            g.ReviewedAt,
		ReviewedBy:            g.ReviewedBy,
		RejectionReason:       g.RejectionReason,

		MemberCount:         len(members),
		StoredMemberCount:   g.MemberCount,
		MemberCountMismatch: g.MemberCount != len(members),

		Members: members,
	}, true
}

// NormalizeMember resolves the member identifier and fills defaults:
// selection_type falls back to "tier" when a tier is set (else "pass"),
// and a missing member_order becomes 1.
func NormalizeMember(m models.GroupMember) models.Member {
	selection := m.SelectionType
	if selection == "" {
		if m.Tier != "" {
			selection = "tier"
		} else {
			selection = "pass"
		}
	}
	order := m.MemberOrder
	if order <= 0 {
		order = 1
	}
	id := ""
	if !m.ID.IsZero() {
		id = m.ID.Hex()
	}

	return models.Member{
		ID:              id,
		GroupID:         m.GroupID,
		UserID:          models.ResolveIdentity(m.UserID, m.DelegateUserID, m.PassID),
		Name:            m.Name,
		Email:           m.Email,
		College:         m.College,
		Phone:           m.Phone,
		CollegeLocation: m.CollegeLocation,
		SelectionType:   selection,
		Tier:            m.Tier,
		DelegateUserID:  m.DelegateUserID,
		PassType:        m.PassType,
		PassTier:        m.PassTier,
		PassID:          m.PassID,
		Amount:          m.Amount,
		MemberOrder:     order,
		CreatedAt:       m.CreatedAt,
	}
}
