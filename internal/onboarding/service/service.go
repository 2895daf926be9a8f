// Package service saves onboarding wizard drafts and completes expert
// profiles.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"garagehub/internal/audit"
	"garagehub/internal/onboarding/models"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/platform/sentinel"
	"garagehub/pkg/requestcontext"
)

type Store interface {
	GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Profile, error)
	Execute(ctx context.Context, expertID id.ExpertID, mutate func(*models.Profile) bool) (*models.Profile, error)
}

// Geocoder resolves a street address to coordinates. cmd/server wires no
// implementation, so deployed clients must send coordinates themselves.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	geocoder       Geocoder
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithGeocoder(g Geocoder) Option {
	return func(s *Service) {
		s.geocoder = g
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.DiscardHandler)
	}
	return svc, nil
}

// Get returns the expert's profile, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, expertID id.ExpertID) (*models.Profile, error) {
	p, err := s.store.GetOrCreate(ctx, expertID, requestcontext.Now(ctx))
	if err != nil {
		return nil, translate(err, "failed to load expert profile")
	}
	return p, nil
}

// EnsureProfile creates the profile row if it is missing. KYC records hang
// off it.
func (s *Service) EnsureProfile(ctx context.Context, expertID id.ExpertID, now time.Time) error {
	if _, err := s.store.GetOrCreate(ctx, expertID, now); err != nil {
		return translate(err, "failed to load expert profile")
	}
	return nil
}

// SaveDraft stores the full draft without any completeness gate.
func (s *Service) SaveDraft(ctx context.Context, expertID id.ExpertID, draft models.Draft) (*models.Profile, error) {
	draft = draft.Normalize()
	if err := draft.ValidateForSave(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if _, err := s.store.GetOrCreate(ctx, expertID, now); err != nil {
		return nil, translate(err, "failed to load expert profile")
	}

	p, err := s.store.Execute(ctx, expertID, func(p *models.Profile) bool {
		return p.ApplyDraft(draft, now)
	})
	if err != nil {
		return nil, translate(err, "failed to save profile draft")
	}
	return p, nil
}

// Complete validates every wizard gate and marks the profile complete. An
// address without coordinates is geocoded first when a geocoder is set.
func (s *Service) Complete(ctx context.Context, expertID id.ExpertID, draft models.Draft) (*models.Profile, error) {
	draft = draft.Normalize()
	draft = s.fillCoordinates(ctx, expertID, draft)
	if err := draft.ValidateForCompletion(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if _, err := s.store.GetOrCreate(ctx, expertID, now); err != nil {
		return nil, translate(err, "failed to load expert profile")
	}

	firstCompletion := false
	p, err := s.store.Execute(ctx, expertID, func(p *models.Profile) bool {
		p.ApplyDraft(draft, now)
		firstCompletion = !p.ProfileCompleted
		p.MarkCompleted(now)
		return true
	})
	if err != nil {
		return nil, translate(err, "failed to complete profile")
	}

	if firstCompletion {
		s.logger.InfoContext(ctx, "expert profile completed",
			"request_id", requestcontext.RequestID(ctx),
			"expert_id", expertID.String(),
		)
		if s.auditPublisher != nil {
			if err := s.auditPublisher.Emit(ctx, audit.Event{
				Timestamp: now,
				ExpertID:  expertID,
				Action:    audit.ActionOnboardingCompleted,
				RequestID: requestcontext.RequestID(ctx),
			}); err != nil {
				s.logger.WarnContext(ctx, "failed to emit audit event",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
			}
		}
	}
	return p, nil
}

// fillCoordinates geocodes the address when coordinates are missing. A
// geocoder failure leaves the draft as it was; completion validation then
// reports the missing coordinates.
func (s *Service) fillCoordinates(ctx context.Context, expertID id.ExpertID, draft models.Draft) models.Draft {
	if s.geocoder == nil || draft.Address == "" || (draft.Latitude != nil && draft.Longitude != nil) {
		return draft
	}
	lat, lng, err := s.geocoder.Geocode(ctx, draft.Address)
	if err != nil {
		s.logger.WarnContext(ctx, "geocoding failed",
			"request_id", requestcontext.RequestID(ctx),
			"expert_id", expertID.String(),
			"error", err,
		)
		return draft
	}
	draft.Latitude = &lat
	draft.Longitude = &lng
	return draft
}

func translate(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "expert profile not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeTransient, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
