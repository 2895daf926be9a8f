package service

import (
	"context"

	"garagehub/internal/audit"
	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/requestcontext"
)

// UpdateProgress merges a partial update. Only fields present in the patch
// change; a patch that changes nothing leaves status and UpdatedAt alone.
func (s *Service) UpdateProgress(ctx context.Context, expertID id.ExpertID, patch models.Patch) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.UpdateProgress", expertID)
	defer span.End()

	now := requestcontext.Now(ctx)
	if err := patch.Validate(now); err != nil {
		return nil, s.endSpan(span, err)
	}
	if _, err := s.getOrCreate(ctx, expertID); err != nil {
		return nil, s.endSpan(span, err)
	}

	var from models.Status
	changed := false
	rec, err := s.store.Execute(ctx, expertID,
		func(r *models.Record) error {
			if patch.IsEmpty() {
				return nil
			}
			return r.CanEdit()
		},
		func(r *models.Record) bool {
			from = r.Status
			if !patch.Apply(r) {
				return false
			}
			r.Touch(now)
			changed = true
			return true
		})
	if err != nil {
		return nil, s.endSpan(span, translate(err, "failed to save kyc progress"))
	}

	if changed {
		s.recordTransition(ctx, expertID, from, rec.Status)
		s.emit(ctx, audit.Event{ExpertID: expertID, Action: audit.ActionProgressSaved})
	}
	return rec, nil
}

// Submit runs the submission gate. Every deficiency is reported at once and
// the record is left untouched. Submitting an already submitted record
// returns it unchanged.
func (s *Service) Submit(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.Submit", expertID)
	defer span.End()

	now := requestcontext.Now(ctx)
	if _, err := s.getOrCreate(ctx, expertID); err != nil {
		return nil, s.endSpan(span, err)
	}

	var from models.Status
	rec, err := s.store.Execute(ctx, expertID,
		func(r *models.Record) error { return r.CanSubmit(now) },
		func(r *models.Record) bool {
			from = r.Status
			return r.ApplySubmit(now)
		})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeIncompleteSubmission) {
			if s.metrics != nil {
				s.metrics.IncrementSubmissionBlocked()
			}
			s.logger.InfoContext(ctx, "kyc submission incomplete",
				"request_id", requestcontext.RequestID(ctx),
				"expert_id", expertID.String(),
			)
		}
		return nil, s.endSpan(span, translate(err, "failed to submit kyc record"))
	}

	if from != rec.Status {
		s.recordTransition(ctx, expertID, from, rec.Status)
		s.emit(ctx, audit.Event{ExpertID: expertID, Action: audit.ActionSubmitted})
	}
	return rec, nil
}
