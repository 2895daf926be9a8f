package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garagehub/internal/kyc/documents"
	"garagehub/internal/kyc/models"
	"garagehub/internal/platform/middleware"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/platform/httputil"
	"garagehub/pkg/requestcontext"
)

// Service defines the KYC operations exposed over HTTP.
type Service interface {
	Get(ctx context.Context, expertID id.ExpertID) (*models.Record, error)
	UpdateProgress(ctx context.Context, expertID id.ExpertID, patch models.Patch) (*models.Record, error)
	PutDocument(ctx context.Context, expertID id.ExpertID, slot models.Slot, upload documents.Upload, meta models.DocumentMetadata) (*models.Document, *models.Record, error)
	RemoveDocument(ctx context.Context, expertID id.ExpertID, slot models.Slot) (*models.Record, error)
	Submit(ctx context.Context, expertID id.ExpertID) (*models.Record, error)
	Approve(ctx context.Context, reviewerID id.UserID, expertID id.ExpertID) (*models.Record, error)
	Reject(ctx context.Context, reviewerID id.UserID, expertID id.ExpertID, reason string) (*models.Record, error)
	SetBackgroundCheckStatus(ctx context.Context, reviewerID id.UserID, expertID id.ExpertID, status models.BackgroundCheckStatus) (*models.Record, error)
	ListQueue(ctx context.Context, status models.Status, limit int) ([]*models.Record, error)
}

// Handler serves the expert KYC endpoints and the reviewer endpoints.
type Handler struct {
	service        Service
	logger         *slog.Logger
	jwtValidator   middleware.JWTValidator
	maxUploadBytes int64
}

// New creates a KYC handler. maxUploadBytes bounds a single document; a
// non-positive value selects documents.DefaultMaxBytes.
func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = documents.DefaultMaxBytes
	}
	return &Handler{
		service:        service,
		logger:         logger,
		jwtValidator:   jwtValidator,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts the KYC routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireExpert(h.logger))

		r.Get("/experts/me/kyc", h.handleGet)
		r.With(middleware.ContentTypeJSON).Patch("/experts/me/kyc", h.handleUpdate)
		r.With(middleware.RequireContentType("multipart/form-data")).Post("/experts/me/kyc/documents/{slot}", h.handlePutDocument)
		r.Delete("/experts/me/kyc/documents/{slot}", h.handleRemoveDocument)
		r.Post("/experts/me/kyc/submit", h.handleSubmit)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireRole(middleware.RoleReviewer, h.logger))
		r.Use(middleware.ContentTypeJSON)

		r.Get("/admin/kyc", h.handleListQueue)
		r.Post("/admin/kyc/{expertID}/approve", h.handleApprove)
		r.Post("/admin/kyc/{expertID}/reject", h.handleReject)
		r.Patch("/admin/kyc/{expertID}/background-check", h.handleBackgroundCheck)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID := requestcontext.ExpertID(ctx)

	rec, err := h.service.Get(ctx, expertID)
	if err != nil {
		h.fail(ctx, w, "failed to load kyc record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID := requestcontext.ExpertID(ctx)

	var patch models.Patch
	if err := httputil.DecodeJSON(w, r, &patch); err != nil {
		h.fail(ctx, w, "invalid kyc update", err)
		return
	}

	rec, err := h.service.UpdateProgress(ctx, expertID, patch)
	if err != nil {
		h.fail(ctx, w, "failed to update kyc record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID := requestcontext.ExpertID(ctx)

	rec, err := h.service.Submit(ctx, expertID)
	if err != nil {
		h.fail(ctx, w, "kyc submission refused", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

func (h *Handler) handleListQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := models.StatusSubmitted
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = models.Status(raw)
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(ctx, w, "invalid queue request", dErrors.NewValidation(map[string]string{"limit": "must be a non-negative integer"}))
			return
		}
		limit = n
	}

	records, err := h.service.ListQueue(ctx, status, limit)
	if err != nil {
		h.fail(ctx, w, "failed to list kyc queue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToQueueResponse(records))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID, ok := h.expertParam(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Approve(ctx, requestcontext.UserID(ctx), expertID)
	if err != nil {
		h.fail(ctx, w, "kyc approval failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID, ok := h.expertParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	rec, err := h.service.Reject(ctx, requestcontext.UserID(ctx), expertID, req.Reason)
	if err != nil {
		h.fail(ctx, w, "kyc rejection failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

func (h *Handler) handleBackgroundCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	expertID, ok := h.expertParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.BackgroundCheckRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	rec, err := h.service.SetBackgroundCheckStatus(ctx, requestcontext.UserID(ctx), expertID, models.BackgroundCheckStatus(req.Status))
	if err != nil {
		h.fail(ctx, w, "background check update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(rec))
}

func (h *Handler) expertParam(w http.ResponseWriter, r *http.Request) (id.ExpertID, bool) {
	expertID, err := id.ParseExpertID(chi.URLParam(r, "expertID"))
	if err != nil {
		h.fail(r.Context(), w, "invalid expert id", err)
		return id.ExpertID{}, false
	}
	return expertID, true
}

func (h *Handler) slotParam(w http.ResponseWriter, r *http.Request) (models.Slot, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "slot"))
	if err != nil {
		raw = chi.URLParam(r, "slot")
	}
	slot, err := models.ParseSlot(raw)
	if err != nil {
		h.fail(r.Context(), w, "invalid document slot", err)
		return models.Slot{}, false
	}
	return slot, true
}

// fail logs at a level matching the error class and writes the envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}
	if expertID := requestcontext.ExpertID(ctx); !expertID.IsNil() {
		attrs = append(attrs, "expert_id", expertID.String())
	}
	if dErrors.IsServerSide(err) {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
