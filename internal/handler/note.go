package handler

import (
	"log/slog"
	"net/http"

	"dochub/internal/domain/services"
	"dochub/internal/httputil"
)

// NoteHandler serves the note routes, including the trash collection
// operations shared with folders.
type NoteHandler struct {
	notes  services.NoteService
	logger *slog.Logger
}

func NewNoteHandler(notes services.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

// Register wires the note routes onto the mux.
func (h *NoteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/notes", h.List)
	mux.HandleFunc("POST /api/notes", h.Create)
	mux.HandleFunc("GET /api/notes/search", h.Search)

	// Trash collection routes must precede the {id} patterns.
	mux.HandleFunc("GET /api/notes/trash", h.ListTrash)
	mux.HandleFunc("DELETE /api/notes/trash", h.EmptyTrash)
	mux.HandleFunc("PATCH /api/notes/trash/recover-all", h.RecoverAll)

	mux.HandleFunc("GET /api/notes/{id}", h.Get)
	mux.HandleFunc("PATCH /api/notes/{id}", h.Update)
	mux.HandleFunc("DELETE /api/notes/{id}", h.Delete)
	mux.HandleFunc("PATCH /api/notes/{id}/trash", h.Trash)
	mux.HandleFunc("PATCH /api/notes/{id}/recover", h.Recover)
	mux.HandleFunc("GET /api/notes/{id}/revisions", h.Revisions)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.notes.CreateNote(r.Context(), callerFrom(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetNote(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// updateNoteBody mirrors UpdateNoteRequest but keeps folder_id tri-state
// so JSON null can unfile the note.
type updateNoteBody struct {
	Title    *string                  `json:"title"`
	Content  *string                  `json:"content"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateNoteBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := services.UpdateNoteRequest{
		Title:   body.Title,
		Content: body.Content,
	}
	if body.FolderID.Present {
		if body.FolderID.Value == nil {
			req.ClearFolder = true
		} else {
			req.FolderID = body.FolderID.Value
		}
	}

	note, err := h.notes.UpdateNote(r.Context(), callerFrom(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListNotes(r.Context(), callerFrom(r), optionalQuery(r, "folderId"), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.SearchNotes(r.Context(), callerFrom(r), r.URL.Query().Get("q"), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Trash(w http.ResponseWriter, r *http.Request) {
	result, err := h.notes.MoveToTrash(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *NoteHandler) Recover(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.RecoverNote(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.DeleteNote(r.Context(), callerFrom(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.GetTrashNotes(r.Context(), callerFrom(r), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	result, err := h.notes.EmptyTrash(r.Context(), callerFrom(r), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *NoteHandler) RecoverAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.notes.RecoverAll(r.Context(), callerFrom(r), optionalQuery(r, "versionId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *NoteHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	revs, err := h.notes.ListRevisions(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, revs)
}
