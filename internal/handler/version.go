package handler

import (
	"log/slog"
	"net/http"

	"dochub/internal/domain/services"
	"dochub/internal/httputil"
)

// VersionHandler serves the community version routes.
type VersionHandler struct {
	versions services.VersionService
	logger   *slog.Logger
}

func NewVersionHandler(versions services.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{versions: versions, logger: logger}
}

// Register wires the version routes onto the mux.
func (h *VersionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/versions", h.List)
	mux.HandleFunc("POST /api/versions", h.Create)
	mux.HandleFunc("POST /api/versions/migrate", h.Migrate)
	mux.HandleFunc("PATCH /api/versions/{id}", h.Update)
	mux.HandleFunc("DELETE /api/versions/{id}", h.Delete)
}

func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	versions, err := h.versions.ListVersions(r.Context(), callerFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

func (h *VersionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.versions.CreateVersion(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

func (h *VersionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.versions.UpdateVersion(r.Context(), callerFrom(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.versions.DeleteVersion(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *VersionHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	var req services.MigrateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.versions.MigrateContent(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
