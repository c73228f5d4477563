package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"notevault/internal/contextutil"
	"notevault/internal/storage"
)

// Enqueuer accepts note IDs for background embedding generation.
type Enqueuer interface {
	Enqueue(noteID string)
}

// NoteHandler handles note CRUD requests.
type NoteHandler struct {
	store storage.NoteStore
	queue Enqueuer
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(store storage.NoteStore, queue Enqueuer) *NoteHandler {
	return &NoteHandler{
		store: store,
		queue: queue,
	}
}

// CreateNoteRequest is the payload for creating a note.
type CreateNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// UpdateNoteRequest is the payload for updating a note. Absent fields are
// left unchanged.
type UpdateNoteRequest struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Archived *bool     `json:"archived,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	note := &storage.Note{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}

	if err := h.store.Create(ctx, note); err != nil {
		logger.ErrorContext(ctx, "failed to create note", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	h.queue.Enqueue(note.ID)

	writeJSON(w, http.StatusCreated, note)
}

// Update handles PUT /api/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content cannot be empty")
		return
	}

	note, ok := h.loadOwnedNote(w, r, userID)
	if !ok {
		return
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	if req.Archived != nil {
		note.Archived = *req.Archived
	}

	resetEmbedding, err := h.store.Update(ctx, note)
	if err != nil {
		logger.ErrorContext(ctx, "failed to update note", "note_id", note.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}

	// A content change on a live note needs a fresh vector. Archived notes
	// stay out of the queue; unarchiving goes through here too and picks the
	// note back up.
	if resetEmbedding && !note.Archived {
		h.queue.Enqueue(note.ID)
	}

	updated, err := h.store.FindByID(ctx, note.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to reload note", "note_id", note.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load note")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Get handles GET /api/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	note, ok := h.loadOwnedNote(w, r, userID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// Delete handles DELETE /api/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	note, ok := h.loadOwnedNote(w, r, userID)
	if !ok {
		return
	}

	if err := h.store.Delete(ctx, note.ID); err != nil {
		logger.ErrorContext(ctx, "failed to delete note", "note_id", note.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"

	notes, err := h.store.ListByUser(ctx, userID, includeArchived)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list notes")
		return
	}

	if notes == nil {
		notes = []*storage.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// loadOwnedNote fetches the note in the URL and checks it belongs to userID.
// Notes owned by someone else report as not found.
func (h *NoteHandler) loadOwnedNote(w http.ResponseWriter, r *http.Request, userID string) (*storage.Note, bool) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	noteID := chi.URLParam(r, "id")
	if noteID == "" {
		writeError(w, http.StatusBadRequest, "Note ID is required")
		return nil, false
	}

	note, err := h.store.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return nil, false
		}
		logger.ErrorContext(ctx, "failed to load note", "note_id", noteID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load note")
		return nil, false
	}

	if note.UserID != userID {
		writeError(w, http.StatusNotFound, "Note not found")
		return nil, false
	}

	return note, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
