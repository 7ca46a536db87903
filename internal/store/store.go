// Package store persists published corpus generations so separate CLI
// invocations and the serve process share the last good corpus without
// re-running ingestion.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/resolve-cli/internal/config"
	"github.com/sells-group/resolve-cli/internal/corpus"
)

// GenerationStore persists complete generations. Saving a generation
// replaces all previously stored ones: there is no partial-update path.
type GenerationStore interface {
	// SaveGeneration writes the generation and discards older ones.
	SaveGeneration(ctx context.Context, gen *corpus.Generation) error

	// LoadLatest returns the most recently saved generation with its indexes
	// rebuilt, or (nil, nil) when nothing has been saved yet.
	LoadLatest(ctx context.Context) (*corpus.Generation, error)

	Close() error
}

// Open creates a GenerationStore for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (GenerationStore, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
