package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/http/middleware"
	"github.com/atifjaved999/mini-coaching/internal/http/response"
	"github.com/atifjaved999/mini-coaching/internal/repository"
	"github.com/atifjaved999/mini-coaching/internal/service"
)

func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return nil, false
	}
	return user, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return false
	}
	return true
}

func uintURLParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// writeServiceError maps the core result variants onto status codes:
// Forbidden→403, NotFound→404, Conflict/AlreadyBooked/validation→422,
// bad credentials→401, everything else→500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "you are not authorized to perform this action", nil)
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrParticipationNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, repository.ErrSessionConflict):
		response.Error(w, r, http.StatusUnprocessableEntity, "CONFLICT", "a session already exists during this time frame on the same date", nil)
	case errors.Is(err, service.ErrAlreadyBooked):
		response.Error(w, r, http.StatusUnprocessableEntity, "ALREADY_BOOKED", "you have already booked this session", nil)
	case errors.Is(err, service.ErrInvalidInterval), errors.Is(err, service.ErrValidation):
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	case errors.Is(err, service.ErrAvatarNotSet):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrFileTooBig), errors.Is(err, service.ErrInvalidFileType):
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, service.ErrStorageDisabled):
		response.Error(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", err.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
