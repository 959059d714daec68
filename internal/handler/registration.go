package handler

import (
	"log/slog"
	"net/http"

	"dochub/internal/domain/services"
	"dochub/internal/httputil"
)

// RegistrationHandler serves signup and the approval review routes.
type RegistrationHandler struct {
	registration services.RegistrationService
	logger       *slog.Logger
}

func NewRegistrationHandler(registration services.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registration: registration, logger: logger}
}

// Register wires the authenticated approval routes onto the mux.
func (h *RegistrationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/approvals", h.List)
	mux.HandleFunc("PATCH /api/approvals/{id}", h.Review)
}

// RegisterPublic wires the unauthenticated signup route.
func (h *RegistrationHandler) RegisterPublic(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", h.Signup)
}

func (h *RegistrationHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.registration.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, request)
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.registration.ListRequests(r.Context(), callerFrom(r), optionalQuery(r, "status"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requests)
}

func (h *RegistrationHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req services.ReviewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.registration.Review(r.Context(), callerFrom(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, request)
}
