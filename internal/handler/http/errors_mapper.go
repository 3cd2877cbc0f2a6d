package http

import (
	"errors"
	"net/http"

	"github.com/glideapp/glide-sync/internal/store"
)

var errorStatusMap = map[error]int{
	store.ErrEntityNotFound:    http.StatusNotFound,
	store.ErrTaskNotFound:      http.StatusNotFound,
	store.ErrAlreadyExists:     http.StatusConflict,
	store.ErrInvalidTransition: http.StatusConflict,
	store.ErrNotInConflict:     http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
