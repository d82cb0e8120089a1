// Package moderation applies admin review decisions to group registrations.
//
// Approve and Reject are the only status transitions (pending → approved,
// pending → rejected). The store does not enforce transitions: repeating an
// action rewrites the review fields and concurrent writes are
// last-writer-wins.
package moderation

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultReviewer is recorded when the caller supplies no reviewer.
const DefaultReviewer = "admin"

// Writer is the write side of the registration store.
type Writer interface {
	// UpdateReview applies patch to every group whose group_id is in
	// groupIDs and returns how many groups matched.
	UpdateReview(ctx context.Context, groupIDs []string, patch models.ReviewPatch) (int64, error)
	// DeleteGroup removes the group row and its member rows and returns how
	// many group rows were deleted.
	DeleteGroup(ctx context.Context, groupID string) (int64, error)
}

// Engine executes moderation actions.
type Engine struct {
	store  Writer
	now    func() time.Time
	log    *zap.Logger
	notify *Notifier
}

// New constructs an Engine. A nil clock uses time.Now in UTC.
func New(store Writer, clock func() time.Time, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, now: clock, log: logger}
}

// Approve marks one group approved and clears any rejection reason.
func (e *Engine) Approve(ctx context.Context, groupID, reviewer string) error {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return outcome.Validation("Group ID is required")
	}

	n, err := e.store.UpdateReview(ctx, []string{groupID}, e.patch(models.StatusApproved, reviewer, nil))
	if err != nil {
		e.log.Error("approve registration failed", zap.String("group_id", groupID), zap.Error(err))
		return outcome.Write("Failed to approve registration", err)
	}
	if n == 0 {
		return outcome.NotFound("Registration not found")
	}
	e.log.Info("registration approved", zap.String("group_id", groupID), zap.String("reviewer", reviewerOrDefault(reviewer)))
	return nil
}

// Reject marks one group rejected with reason. The reason is stripped of
// markup and trimmed; an empty result is rejected before any write.
func (e *Engine) Reject(ctx context.Context, groupID, reason, reviewer string) error {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return outcome.Validation("Group ID is required")
	}
	clean := htmlsanitize.StripTags(strings.TrimSpace(reason))
	if clean == "" {
		return outcome.Validation("Rejection reason is required")
	}

	n, err := e.store.UpdateReview(ctx, []string{groupID}, e.patch(models.StatusRejected, reviewer, &clean))
	if err != nil {
		e.log.Error("reject registration failed", zap.String("group_id", groupID), zap.Error(err))
		return outcome.Write("Failed to reject registration", err)
	}
	if n == 0 {
		return outcome.NotFound("Registration not found")
	}
	e.log.Info("registration rejected", zap.String("group_id", groupID), zap.String("reviewer", reviewerOrDefault(reviewer)))
	return nil
}

// BulkApprove approves every listed group in one write and returns how many
// existed. Unknown ids are ignored; blank and duplicate ids are dropped.
func (e *Engine) BulkApprove(ctx context.Context, groupIDs []string, reviewer string) (int64, error) {
	ids := make([]string, 0, len(groupIDs))
	seen := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, outcome.Validation("No registrations selected")
	}

	n, err := e.store.UpdateReview(ctx, ids, e.patch(models.StatusApproved, reviewer, nil))
	if err != nil {
		e.log.Error("bulk approve failed", zap.Int("requested", len(ids)), zap.Error(err))
		return 0, outcome.Write("Failed to bulk approve registrations", err)
	}
	e.log.Info("registrations bulk approved", zap.Int("requested", len(ids)), zap.Int64("matched", n))
	return n, nil
}

// Delete removes a group and all of its members. It cannot be undone.
func (e *Engine) Delete(ctx context.Context, groupID string) error {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return outcome.Validation("Group ID is required")
	}
	n, err := e.store.DeleteGroup(ctx, groupID)
	if err != nil {
		e.log.Error("delete registration failed", zap.String("group_id", groupID), zap.Error(err))
		return outcome.Write("Failed to delete registration", err)
	}
	if n == 0 {
		return outcome.NotFound("Registration not found")
	}
	e.log.Info("registration deleted", zap.String("group_id", groupID))
	return nil
}

func (e *Engine) patch(status models.Status, reviewer string, reason *string) models.ReviewPatch {
	return models.ReviewPatch{
		Status:          status,
		ReviewedBy:      reviewerOrDefault(reviewer),
		ReviewedAt:      e.now(),
		RejectionReason: reason,
	}
}

func reviewerOrDefault(reviewer string) string {
	if r := strings.TrimSpace(reviewer); r != "" {
		return r
	}
	return DefaultReviewer
}
