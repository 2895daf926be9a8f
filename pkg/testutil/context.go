package testutil

import (
	"net/http"

	id "garagehub/pkg/domain"
	"garagehub/pkg/requestcontext"
)

// WithExpert adds an expert ID to the request context.
// This simulates what the auth middleware would do for an authenticated expert.
// If expertID is not a valid UUID, it will not be added to the context.
func WithExpert(req *http.Request, expertID string) *http.Request {
	parsed, err := id.ParseExpertID(expertID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithExpertID(req.Context(), parsed))
}

// WithRoles grants roles on the request context.
func WithRoles(req *http.Request, roles ...string) *http.Request {
	return req.WithContext(requestcontext.WithRoles(req.Context(), roles))
}
