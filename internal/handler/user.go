package handler

import (
	"log/slog"
	"net/http"

	"dochub/internal/domain/services"
	"dochub/internal/httputil"
)

// UserHandler serves user management and login.
type UserHandler struct {
	users  services.UserService
	auth   services.AuthService
	logger *slog.Logger
}

func NewUserHandler(users services.UserService, auth services.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, logger: logger}
}

// Register wires the authenticated user routes onto the mux. Login is
// public and registered separately via RegisterPublic.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.List)
	mux.HandleFunc("POST /api/users", h.Create)
	mux.HandleFunc("PATCH /api/users/{id}", h.Update)
	mux.HandleFunc("DELETE /api/users/{id}", h.Delete)
}

// RegisterPublic wires the unauthenticated routes.
func (h *UserHandler) RegisterPublic(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), callerFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateUserRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateUser(r.Context(), callerFrom(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
