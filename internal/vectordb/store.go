// Package vectordb stores embedded chunks and serves k-nearest-neighbour
// queries over them.
package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/docuchat/cli/config"
)

// ErrInvalidK is returned when a search is requested with k < 1.
var ErrInvalidK = errors.New("k must be a positive integer")

// Record is one embedded chunk persisted in the store.
type Record struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// Match is a search hit. Score is the backend's native metric: cosine
// similarity (higher is better) for the sqlite and memory stores, cosine
// distance (lower is better) for pgvector. Callers may rely only on
// matches arriving most-relevant-first.
type Match struct {
	Record
	Score float64
}

// Store is the capability set every vector backend provides.
//
// Add is append-only and does not deduplicate: re-adding the same source
// produces duplicate entries. Delete is best-effort; a backend that
// cannot delete individual records logs a warning and no-ops, so callers
// needing hard deletion must recreate the index from source.
type Store interface {
	Add(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)
	Delete(ctx context.Context, sourceFile string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Open constructs the configured backend. Unknown store types are
// rejected outright rather than silently replaced with a default.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.VectorDB.Type {
	case config.StoreSQLite:
		return NewSQLite(cfg.VectorDB.Path)
	case config.StorePGVector:
		return NewPGVector(ctx, cfg.VectorDB.ConnectionString)
	case config.StoreMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store type: %q", cfg.VectorDB.Type)
	}
}
