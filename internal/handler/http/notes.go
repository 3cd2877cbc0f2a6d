package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/internal/utils"
	"github.com/glideapp/glide-sync/models"
)

// entityList is one page of entities plus pagination totals.
type entityList struct {
	Items   []models.Entity `json:"items"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// resolveRequest is the conflict resolution body. Merged carries the
// user-merged note payload, required for the "merged" resolution only.
type resolveRequest struct {
	Resolution models.Resolution `json:"resolution"`
	Merged     *models.Note      `json:"merged,omitempty"`
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	filter, err := listFilterFromQuery(r, models.KindNote)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listNotes").Msg("invalid list parameters")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, total, err := h.entities.List(r.Context(), filter)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listNotes").Msg("error listing notes")
		http.Error(w, "error listing notes", statusFromError(err))
		return
	}

	utils.WriteJSON(w, entityList{
		Items:   items,
		Total:   total,
		Page:    max(filter.Page, 1),
		PerPage: filter.PerPage,
	}, http.StatusOK)
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		log.Err(err).Str("func", "*Handler.createNote").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if note.ID == uuid.Nil {
		note.ID = h.ids.Generate()
	}

	saved, err := h.entities.UpsertLocal(r.Context(), models.Entity{
		ID:      note.ID,
		Kind:    models.KindNote,
		Payload: &note,
	}, models.StatusPending)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createNote").Msg("error saving note")
		http.Error(w, "error saving note", statusFromError(err))
		return
	}

	h.changed()
	utils.WriteJSON(w, saved, http.StatusCreated)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	entity, ok := h.loadEntity(w, r, models.KindNote)
	if !ok {
		return
	}
	utils.WriteJSON(w, entity, http.StatusOK)
}

func (h *Handler) patchNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entity, ok := h.loadEntity(w, r, models.KindNote)
	if !ok {
		return
	}
	if entity.SyncStatus == models.StatusConflict {
		// Both versions are in the response; the client must resolve first.
		utils.WriteJSON(w, entity, http.StatusConflict)
		return
	}

	var patch models.NotePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Str("func", "*Handler.patchNote").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	note, _ := models.PayloadAs[*models.Note](entity)
	patch.Apply(note)
	entity.Payload = note

	saved, err := h.entities.UpsertLocal(r.Context(), entity, models.StatusPending)
	if err != nil {
		log.Err(err).Str("func", "*Handler.patchNote").Msg("error saving note")
		http.Error(w, "error saving note", statusFromError(err))
		return
	}

	h.changed()
	utils.WriteJSON(w, saved, http.StatusOK)
}

// deleteNote tombstones the note; the row survives until the server
// confirms. A never-synced draft may be purged outright with ?permanent=1.
func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entity, ok := h.loadEntity(w, r, models.KindNote)
	if !ok {
		return
	}

	if r.URL.Query().Get("permanent") == "1" {
		if entity.UpdatedAtRemote != nil {
			http.Error(w, "only never-synced drafts can be deleted permanently", http.StatusBadRequest)
			return
		}
		if err := h.entities.Purge(r.Context(), entity.ID); err != nil {
			log.Err(err).Str("func", "*Handler.deleteNote").Msg("error purging note")
			http.Error(w, "error purging note", statusFromError(err))
			return
		}
		h.changed()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.entities.Delete(r.Context(), entity.ID); err != nil {
		log.Err(err).Str("func", "*Handler.deleteNote").Msg("error deleting note")
		http.Error(w, "error deleting note", statusFromError(err))
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restoreNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entity, ok := h.loadEntity(w, r, models.KindNote)
	if !ok {
		return
	}

	if err := h.entities.Restore(r.Context(), entity.ID); err != nil {
		log.Err(err).Str("func", "*Handler.restoreNote").Msg("error restoring note")
		http.Error(w, "error restoring note", statusFromError(err))
		return
	}

	restored, err := h.entities.Get(r.Context(), entity.ID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.restoreNote").Msg("error reloading note")
		http.Error(w, "error reloading note", statusFromError(err))
		return
	}

	h.changed()
	utils.WriteJSON(w, restored, http.StatusOK)
}

func (h *Handler) resolveNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entity, ok := h.loadEntity(w, r, models.KindNote)
	if !ok {
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.resolveNote").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	var merged models.Payload
	if req.Merged != nil {
		req.Merged.ID = entity.ID
		merged = req.Merged
	}

	resolved, err := h.entities.Resolve(r.Context(), entity.ID, req.Resolution, merged)
	if err != nil {
		log.Err(err).Str("func", "*Handler.resolveNote").
			Str("resolution", string(req.Resolution)).
			Msg("error resolving conflict")
		http.Error(w, "error resolving conflict", statusFromError(err))
		return
	}

	h.changed()
	utils.WriteJSON(w, resolved, http.StatusOK)
}

// loadEntity parses the {id} route param and loads the entity, writing the
// error response itself when something is off.
func (h *Handler) loadEntity(w http.ResponseWriter, r *http.Request, kind models.Kind) (models.Entity, bool) {
	log := logger.FromRequest(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return models.Entity{}, false
	}

	entity, err := h.entities.Get(r.Context(), id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.loadEntity").Str("id", id.String()).Msg("error loading entity")
		http.Error(w, "entity not found", statusFromError(err))
		return models.Entity{}, false
	}
	if entity.Kind != kind {
		http.Error(w, "entity not found", http.StatusNotFound)
		return models.Entity{}, false
	}
	return entity, true
}

func listFilterFromQuery(r *http.Request, kind models.Kind) (store.ListFilter, error) {
	q := r.URL.Query()
	filter := store.ListFilter{
		Kind:           kind,
		Query:          q.Get("q"),
		IncludeDeleted: q.Get("include_deleted") == "1",
	}

	if raw := q.Get("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return store.ListFilter{}, err
		}
		filter.FolderID = &id
	}
	if raw := q.Get("is_pinned"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return store.ListFilter{}, err
		}
		filter.IsPinned = &v
	}
	if raw := q.Get("is_archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return store.ListFilter{}, err
		}
		filter.IsArchived = &v
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return store.ListFilter{}, err
		}
		filter.Page = v
	}
	if raw := q.Get("per_page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return store.ListFilter{}, err
		}
		filter.PerPage = v
	}
	return filter, nil
}
