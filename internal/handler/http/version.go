package http

import (
	"net/http"
	"runtime/debug"
)

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	version := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(version))
}
