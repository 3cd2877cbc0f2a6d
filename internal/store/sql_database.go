package store

import (
	"database/sql"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/migrations"
)

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
