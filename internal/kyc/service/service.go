// Package service orchestrates the KYC record lifecycle: partial saves,
// document uploads into typed slots, the submission gate and reviewer
// decisions. Every operation takes the expert explicitly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"garagehub/internal/audit"
	"garagehub/internal/kyc/documents"
	"garagehub/internal/kyc/metrics"
	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/requestcontext"
)

type Store interface {
	GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Record, error)
	FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Record, error)
	Execute(ctx context.Context, expertID id.ExpertID, validate func(*models.Record) error, mutate func(*models.Record) bool) (*models.Record, error)
	ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.Record, error)
}

// BlobStore holds document bytes. Put returns the public URL.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// ExpertDirectory makes sure the expert profile a record belongs to exists.
type ExpertDirectory interface {
	EnsureProfile(ctx context.Context, expertID id.ExpertID, now time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates KYC record operations.
type Service struct {
	store          Store
	blobs          BlobStore
	directory      ExpertDirectory
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	maxUploadBytes int64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithExpertDirectory(directory ExpertDirectory) Option {
	return func(s *Service) {
		s.directory = directory
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithMaxUploadBytes overrides the per-file ceiling. Non-positive values keep
// the default.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func New(store Store, blobs BlobStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kyc store is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	svc := &Service{
		store:          store,
		blobs:          blobs,
		maxUploadBytes: documents.DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.DiscardHandler)
	}
	if svc.tracer == nil {
		svc.tracer = otel.Tracer("garagehub/internal/kyc/service")
	}
	return svc, nil
}

// Get returns the expert's record, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	ctx, span := s.startSpan(ctx, "kyc.Get", expertID)
	defer span.End()

	rec, err := s.getOrCreate(ctx, expertID)
	return rec, s.endSpan(span, err)
}

func (s *Service) getOrCreate(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	now := requestcontext.Now(ctx)
	if s.directory != nil {
		if err := s.directory.EnsureProfile(ctx, expertID, now); err != nil {
			return nil, translate(err, "failed to load expert profile")
		}
	}
	rec, err := s.store.GetOrCreate(ctx, expertID, now)
	if err != nil {
		return nil, translate(err, "failed to load kyc record")
	}
	return rec, nil
}

func (s *Service) startSpan(ctx context.Context, name string, expertID id.ExpertID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("expert_id", expertID.String()),
	))
}

func (s *Service) endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// recordTransition counts and logs a status change. No-op when from == to.
func (s *Service) recordTransition(ctx context.Context, expertID id.ExpertID, from, to models.Status) {
	if from == to {
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementTransition(from.String(), to.String())
	}
	s.logger.InfoContext(ctx, "kyc status changed",
		"request_id", requestcontext.RequestID(ctx),
		"expert_id", expertID.String(),
		"from", from,
		"to", to,
	)
}

// emit publishes an audit event. Audit failures are logged, never returned.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", event.RequestID,
			"expert_id", event.ExpertID.String(),
			"action", event.Action,
			"error", err,
		)
	}
}
