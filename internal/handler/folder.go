package handler

import (
	"log/slog"
	"net/http"

	"dochub/internal/domain/services"
	"dochub/internal/httputil"
)

// FolderHandler serves the folder routes.
type FolderHandler struct {
	folders services.FolderService
	logger  *slog.Logger
}

func NewFolderHandler(folders services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

// Register wires the folder routes onto the mux.
func (h *FolderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/folders", h.List)
	mux.HandleFunc("POST /api/folders", h.Create)
	mux.HandleFunc("GET /api/folders/{id}", h.Get)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Update)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Delete)
	mux.HandleFunc("PATCH /api/folders/{id}/recover", h.Recover)
	mux.HandleFunc("GET /api/notes/trash/folders", h.ListTrash)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.CreateFolder(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folders.GetFolder(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.UpdateFolder(r.Context(), callerFrom(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.ListFolders(r.Context(), callerFrom(r), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// Delete trashes the folder and its subtree. The response reports what
// actually happened, including cascade counts.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.folders.DeleteFolder(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *FolderHandler) Recover(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folders.RecoverFolder(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.GetTrashFolders(r.Context(), callerFrom(r), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}
