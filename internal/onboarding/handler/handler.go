package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"garagehub/internal/onboarding/models"
	"garagehub/internal/platform/middleware"
	id "garagehub/pkg/domain"
	dErrors "garagehub/pkg/domain-errors"
	"garagehub/pkg/platform/httputil"
	"garagehub/pkg/requestcontext"
)

// Service defines the onboarding wizard operations.
type Service interface {
	Get(ctx context.Context, expertID id.ExpertID) (*models.Profile, error)
	SaveDraft(ctx context.Context, expertID id.ExpertID, draft models.Draft) (*models.Profile, error)
	Complete(ctx context.Context, expertID id.ExpertID, draft models.Draft) (*models.Profile, error)
}

// Handler serves the onboarding wizard endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the onboarding routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireExpert(h.logger))
		r.Use(middleware.ContentTypeJSON)

		r.Get("/experts/me/onboarding", h.handleGet)
		r.Patch("/experts/me/onboarding", h.handleSaveDraft)
		r.Post("/experts/me/onboarding/complete", h.handleComplete)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, requestcontext.ExpertID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load expert profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft models.Draft
	if err := httputil.DecodeJSON(w, r, &draft); err != nil {
		h.fail(ctx, w, "invalid profile draft", err)
		return
	}

	p, err := h.service.SaveDraft(ctx, requestcontext.ExpertID(ctx), draft)
	if err != nil {
		h.fail(ctx, w, "failed to save profile draft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft models.Draft
	if err := httputil.DecodeJSON(w, r, &draft); err != nil {
		h.fail(ctx, w, "invalid profile draft", err)
		return
	}

	p, err := h.service.Complete(ctx, requestcontext.ExpertID(ctx), draft)
	if err != nil {
		h.fail(ctx, w, "profile completion refused", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"expert_id", requestcontext.ExpertID(ctx).String(),
	}
	if dErrors.IsServerSide(err) {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
