package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/utils"
	"github.com/glideapp/glide-sync/models"
)

// enqueueRequest registers a finished recording for upload. Path must
// point at the audio file on disk; NoteID links it to an existing note.
type enqueueRequest struct {
	Path   string     `json:"path"`
	NoteID *uuid.UUID `json:"note_id,omitempty"`
}

type uploadList struct {
	Items []models.UploadTask `json:"items"`
}

type retryResponse struct {
	Retried int `json:"retried"`
}

func (h *Handler) listUploads(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	items, err := h.queue.List(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listUploads").Msg("error listing uploads")
		http.Error(w, "error listing uploads", statusFromError(err))
		return
	}

	utils.WriteJSON(w, uploadList{Items: items}, http.StatusOK)
}

func (h *Handler) createUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.createUpload").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	task, err := h.queue.Enqueue(r.Context(), req.Path, req.NoteID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createUpload").Str("path", req.Path).Msg("error enqueueing upload")
		http.Error(w, "error enqueueing upload", statusFromError(err))
		return
	}

	utils.WriteJSON(w, task, http.StatusCreated)
}

func (h *Handler) retryUploads(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	n, err := h.queue.RetryAll(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.retryUploads").Msg("error retrying uploads")
		http.Error(w, "error retrying uploads", statusFromError(err))
		return
	}

	utils.WriteJSON(w, retryResponse{Retried: n}, http.StatusOK)
}

func (h *Handler) cancelUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	discard := r.URL.Query().Get("discard") == "1"
	if err = h.queue.Cancel(r.Context(), id, discard); err != nil {
		log.Err(err).Str("func", "*Handler.cancelUpload").Str("id", id.String()).Msg("error cancelling upload")
		http.Error(w, "error cancelling upload", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
