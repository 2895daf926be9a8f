package service

import (
	"context"
	"time"

	"garagehub/internal/audit"
	"garagehub/internal/kyc/documents"
	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/requestcontext"
)

// PutDocument validates and stores a file in slot, merging any metadata that
// came with it.
//
// The new file is written under a fresh key before the record is touched, so
// a failed write never changes the slot. The file it replaces is deleted only
// after the record is committed; if the commit fails the new file is deleted
// instead.
func (s *Service) PutDocument(ctx context.Context, expertID id.ExpertID, slot models.Slot, upload documents.Upload, meta models.DocumentMetadata) (*models.Document, *models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.PutDocument", expertID)
	defer span.End()

	start := time.Now()
	now := requestcontext.Now(ctx)

	file, err := documents.Validate(upload, s.maxUploadBytes)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementUploadRejected(string(dErrors.CodeOf(err)))
		}
		return nil, nil, s.endSpan(span, err)
	}
	if err := meta.Validate(now); err != nil {
		return nil, nil, s.endSpan(span, err)
	}

	current, err := s.getOrCreate(ctx, expertID)
	if err != nil {
		return nil, nil, s.endSpan(span, err)
	}
	if err := current.CanPutDocument(slot); err != nil {
		return nil, nil, s.endSpan(span, err)
	}

	key := documents.ObjectKey(expertID, slot, file.Ext)
	url, err := s.blobs.Put(ctx, key, file.ContentType, file.Content)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store kyc document",
			"request_id", requestcontext.RequestID(ctx),
			"expert_id", expertID.String(),
			"slot", slot.String(),
			"error", err,
		)
		return nil, nil, s.endSpan(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to store document"))
	}

	doc := &models.Document{
		Path:        key,
		URL:         url,
		ContentType: file.ContentType,
		Size:        file.Size(),
		UploadedAt:  now,
	}

	var from models.Status
	var replaced *models.Document
	rec, err := s.store.Execute(ctx, expertID,
		func(r *models.Record) error { return r.CanPutDocument(slot) },
		func(r *models.Record) bool {
			from = r.Status
			meta.Apply(r)
			replaced = r.ApplyPutDocument(slot, doc, meta.CertificationName)
			r.Touch(now)
			return true
		})
	if err != nil {
		s.deleteBlob(ctx, expertID, key)
		return nil, nil, s.endSpan(span, translate(err, "failed to save kyc document"))
	}
	if replaced != nil && replaced.Path != "" {
		s.deleteBlob(ctx, expertID, replaced.Path)
	}

	if s.metrics != nil {
		s.metrics.IncrementDocumentUploaded(string(slot.Kind))
		s.metrics.ObserveUpload(start)
	}
	s.recordTransition(ctx, expertID, from, rec.Status)
	s.emit(ctx, audit.Event{ExpertID: expertID, Action: audit.ActionDocumentUploaded, Subject: slot.String()})

	stored := rec.DocumentAt(slot)
	if stored == nil {
		stored = doc
	}
	return stored, rec, nil
}

// RemoveDocument empties slot and deletes its file. Removing an empty slot
// returns the record unchanged.
func (s *Service) RemoveDocument(ctx context.Context, expertID id.ExpertID, slot models.Slot) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.RemoveDocument", expertID)
	defer span.End()

	now := requestcontext.Now(ctx)
	if _, err := s.getOrCreate(ctx, expertID); err != nil {
		return nil, s.endSpan(span, err)
	}

	var from models.Status
	var removed *models.Document
	rec, err := s.store.Execute(ctx, expertID,
		func(r *models.Record) error { return r.CanEdit() },
		func(r *models.Record) bool {
			from = r.Status
			removed = r.ApplyRemoveDocument(slot)
			if removed == nil {
				return false
			}
			r.Touch(now)
			return true
		})
	if err != nil {
		return nil, s.endSpan(span, translate(err, "failed to remove kyc document"))
	}
	if removed == nil {
		return rec, nil
	}
	if removed.Path != "" {
		s.deleteBlob(ctx, expertID, removed.Path)
	}

	s.recordTransition(ctx, expertID, from, rec.Status)
	s.emit(ctx, audit.Event{ExpertID: expertID, Action: audit.ActionDocumentRemoved, Subject: slot.String()})
	return rec, nil
}

// deleteBlob removes a file that is no longer referenced. Failures leave an
// orphan that is logged, never surfaced.
func (s *Service) deleteBlob(ctx context.Context, expertID id.ExpertID, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete kyc document",
			"request_id", requestcontext.RequestID(ctx),
			"expert_id", expertID.String(),
			"path", key,
			"error", err,
		)
	}
}
