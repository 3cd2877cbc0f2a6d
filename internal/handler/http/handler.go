package http

import (
	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/service/uploads"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/internal/utils"
)

type Handler struct {
	entities store.EntityRepository
	queue    uploads.Queue
	engine   Syncer
	statuses StatusSource
	ids      *utils.UUIDGenerator

	logger *logger.Logger
}

func NewHandler(entities store.EntityRepository, queue uploads.Queue, engine Syncer, statuses StatusSource, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		entities: entities,
		queue:    queue,
		engine:   engine,
		statuses: statuses,
		ids:      utils.NewUUIDGenerator(),
		logger:   logger,
	}
}

// changed kicks the engine and the projection after a local mutation.
func (h *Handler) changed() {
	h.statuses.Notify()
	h.engine.Trigger()
}
