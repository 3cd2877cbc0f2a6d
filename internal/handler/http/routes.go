package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Get("/healthz", h.healthz)
	router.Get("/version", h.getVersion)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.getStatus)
		r.Get("/events", h.streamEvents)
		r.Post("/sync", h.triggerSync)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.listNotes)
			r.Post("/", h.createNote)
			r.Get("/{id}", h.getNote)
			r.Patch("/{id}", h.patchNote)
			r.Delete("/{id}", h.deleteNote)
			r.Post("/{id}/restore", h.restoreNote)
			r.Post("/{id}/resolve", h.resolveNote)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", h.listFolders)
			r.Post("/", h.createFolder)
			r.Patch("/{id}", h.patchFolder)
			r.Delete("/{id}", h.deleteFolder)
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Get("/", h.listUploads)
			r.Post("/", h.createUpload)
			r.Post("/retry", h.retryUploads)
			r.Post("/{id}/cancel", h.cancelUpload)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
