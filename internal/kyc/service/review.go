package service

import (
	"context"

	"garagehub/internal/audit"
	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	pstrings "garagehub/pkg/platform/strings"
	"garagehub/pkg/requestcontext"
)

// DefaultQueueLimit caps ListQueue when no limit is given.
const DefaultQueueLimit = 50

// Approve records a reviewer's approval of a submitted record.
func (s *Service) Approve(ctx context.Context, reviewerID id.UserID, expertID id.ExpertID) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.Approve", expertID)
	defer span.End()

	now := requestcontext.Now(ctx)
	rec, err := s.store.Execute(ctx, expertID,
		func(r *models.Record) error { return r.CanReview() },
		func(r *models.Record) bool {
			r.ApplyApproval(now)
			return true
		})
	if err != nil {
		return nil, s.endSpan(span, translate(err, "failed to approve kyc record"))
	}

	s.recordTransition(ctx, expertID, models.StatusSubmitted, rec.Status)
	s.emit(ctx, audit.Event{ExpertID: expertID, Action: audit.ActionApproved, ActorID: reviewerID.String()})
	return rec, nil
}

// Reject sends a submitted record back to the expert with a reason.
func (s *Service) Reject(ctx context.Context, reviewerID id.UserID, expertID id.ExpertID, reason string) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.Reject", expertID)
	defer span.End()

	if pstrings.IsBlank(reason) {
		return nil, s.endSpan(span, dErrors.NewValidation(map[string]string{"reason": "is required"}))
	}

	now := requestcontext.Now(ctx)
	rec, err := s.store.Execute(ctx, expertID,
		func(r *models.Record) error { return r.CanReview() },
		func(r *models.Record) bool {
			r.ApplyRejection(reason, now)
			return true
		})
	if err != nil {
		return nil, s.endSpan(span, translate(err, "failed to reject kyc record"))
	}

	s.recordTransition(ctx, expertID, models.StatusSubmitted, rec.Status)
	s.emit(ctx, audit.Event{
		ExpertID: expertID,
		Action:   audit.ActionRejected,
		ActorID:  reviewerID.String(),
		Reason:   rec.RejectionReason,
	})
	return rec, nil
}

// SetBackgroundCheckStatus stores the outcome of the external background
// check. It never moves the record's status.
func (s *Service) SetBackgroundCheckStatus(ctx context.Context, reviewerID id.UserID, expertID id.ExpertID, status models.BackgroundCheckStatus) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.SetBackgroundCheckStatus", expertID)
	defer span.End()

	if !status.IsValid() {
		return nil, s.endSpan(span, dErrors.NewValidation(map[string]string{
			"status": "must be one of pending, clear, flagged",
		}))
	}

	now := requestcontext.Now(ctx)
	changed := false
	rec, err := s.store.Execute(ctx, expertID,
		func(*models.Record) error { return nil },
		func(r *models.Record) bool {
			changed = r.ApplyBackgroundCheckStatus(status, now)
			return changed
		})
	if err != nil {
		return nil, s.endSpan(span, translate(err, "failed to update background check"))
	}

	if changed {
		s.emit(ctx, audit.Event{
			ExpertID: expertID,
			Action:   audit.ActionBackgroundCheckStatus,
			ActorID:  reviewerID.String(),
			Subject:  string(status),
		})
	}
	return rec, nil
}

// ListQueue returns records in status, oldest update first. Reviewers use it
// with StatusSubmitted.
func (s *Service) ListQueue(ctx context.Context, status models.Status, limit int) ([]*models.Record, error) {
	if !status.IsValid() {
		return nil, dErrors.NewValidation(map[string]string{"status": "unknown kyc status"})
	}
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	records, err := s.store.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, translate(err, "failed to list kyc records")
	}
	return records, nil
}
