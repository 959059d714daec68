package handler

import (
	"errors"
	"net/http"

	"dochub/internal/domain"
	"dochub/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Typed errors
// carrying their own status win over sentinel classification.
func handleError(w http.ResponseWriter, err error) {
	var denied *domain.PermissionDeniedError
	if errors.As(err, &denied) {
		httputil.RespondErrorWithExtras(w, denied.StatusCode(), denied.Error(), map[string]interface{}{
			"action": denied.Action,
			"role":   denied.Role,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrSchemaUnavailable):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
