package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avelkov/cardvault/internal/api/shared"
	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/service"
	"github.com/avelkov/cardvault/internal/store"
)

// getPrincipalFromContext builds the calling principal from the values the
// authentication middleware placed in the request context.
//
// Returns false if the user ID or role is missing or invalid, which means
// the route was reached without passing through authentication.
func getPrincipalFromContext(r *http.Request) (service.Principal, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return service.Principal{}, false
	}

	role, ok := r.Context().Value(shared.UserRoleContextKey).(domain.Role)
	if !ok || !role.IsValid() {
		return service.Principal{}, false
	}

	return service.Principal{UserID: userID, Role: role}, true
}

// requirePrincipal extracts the principal or writes a 401 response.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (service.Principal, bool) {
	p, ok := getPrincipalFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Authentication required")
		return service.Principal{}, false
	}
	return p, true
}

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requirePathUUID extracts a path UUID or writes an error response.
func requirePathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}

// getPageRequest reads the page and limit query parameters. Missing or
// malformed values fall back to the defaults via PageRequest.Normalize.
func getPageRequest(r *http.Request) store.PageRequest {
	var page store.PageRequest
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		page.Limit = v
	}
	return page.Normalize()
}
