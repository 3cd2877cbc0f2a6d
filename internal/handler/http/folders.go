package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/internal/utils"
	"github.com/glideapp/glide-sync/models"
)

func (h *Handler) listFolders(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	items, total, err := h.entities.List(r.Context(), store.ListFilter{Kind: models.KindFolder})
	if err != nil {
		log.Err(err).Str("func", "*Handler.listFolders").Msg("error listing folders")
		http.Error(w, "error listing folders", statusFromError(err))
		return
	}

	utils.WriteJSON(w, entityList{Items: items, Total: total, Page: 1}, http.StatusOK)
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var folder models.Folder
	if err := json.NewDecoder(r.Body).Decode(&folder); err != nil {
		log.Err(err).Str("func", "*Handler.createFolder").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if folder.Name == "" {
		http.Error(w, "folder name is required", http.StatusBadRequest)
		return
	}
	if folder.ID == uuid.Nil {
		folder.ID = h.ids.Generate()
	}

	saved, err := h.entities.UpsertLocal(r.Context(), models.Entity{
		ID:      folder.ID,
		Kind:    models.KindFolder,
		Payload: &folder,
	}, models.StatusPending)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createFolder").Msg("error saving folder")
		http.Error(w, "error saving folder", statusFromError(err))
		return
	}

	h.changed()
	utils.WriteJSON(w, saved, http.StatusCreated)
}

func (h *Handler) patchFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entity, ok := h.loadEntity(w, r, models.KindFolder)
	if !ok {
		return
	}
	if entity.SyncStatus == models.StatusConflict {
		utils.WriteJSON(w, entity, http.StatusConflict)
		return
	}

	var patch models.FolderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Str("func", "*Handler.patchFolder").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	folder, _ := models.PayloadAs[*models.Folder](entity)
	patch.Apply(folder)
	entity.Payload = folder

	saved, err := h.entities.UpsertLocal(r.Context(), entity, models.StatusPending)
	if err != nil {
		log.Err(err).Str("func", "*Handler.patchFolder").Msg("error saving folder")
		http.Error(w, "error saving folder", statusFromError(err))
		return
	}

	h.changed()
	utils.WriteJSON(w, saved, http.StatusOK)
}

func (h *Handler) deleteFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entity, ok := h.loadEntity(w, r, models.KindFolder)
	if !ok {
		return
	}

	if err := h.entities.Delete(r.Context(), entity.ID); err != nil {
		log.Err(err).Str("func", "*Handler.deleteFolder").Msg("error deleting folder")
		http.Error(w, "error deleting folder", statusFromError(err))
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}
