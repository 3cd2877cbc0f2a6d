package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/utils"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	snapshot, err := h.statuses.Snapshot(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error computing status")
		http.Error(w, "error computing status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, snapshot, http.StatusOK)
}

// streamEvents pushes projection snapshots over SSE until the client
// disconnects. The first event is the current snapshot, so a client never
// starts blind.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots, unsubscribe := h.statuses.Subscribe()
	defer unsubscribe()

	if snapshot, err := h.statuses.Snapshot(r.Context()); err == nil {
		writeSSE(w, snapshot)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("func", "*Handler.streamEvents").Msg("event stream closed")
			return
		case snapshot, open := <-snapshots:
			if !open {
				return
			}
			if err := writeSSE(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: status\ndata: %s\n\n", data)
	return err
}

func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	h.engine.Trigger()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
