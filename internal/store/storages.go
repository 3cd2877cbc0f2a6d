package store

import (
	"context"
	"fmt"

	"github.com/glideapp/glide-sync/internal/config"
	"github.com/glideapp/glide-sync/internal/logger"
)

// Storages groups the on-device repositories into a single value that can be
// passed around the service layer.
type Storages struct {
	// Entities is the SQLite-backed local entity store for notes and
	// folders with their sync metadata.
	Entities EntityRepository

	// Uploads is the durable audio upload queue.
	Uploads UploadTaskRepository

	db *DB
}

// NewStorages initialises the storage layer using the supplied configuration
// and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [Storages] value wired to fresh repositories.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Entities: NewEntityRepository(db, logger),
		Uploads:  NewUploadTaskRepository(db, logger),
		db:       db,
	}, nil
}

// Close releases the underlying database handle.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
