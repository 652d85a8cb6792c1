package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/docuchat/cli/internal/logger"
)

// PGVector stores chunks in Postgres using the pgvector extension and
// ranks by cosine distance (`<=>`), so Match.Score is a distance: lower
// is better.
type PGVector struct {
	pool *pgxpool.Pool

	// dimension of the embedding column, fixed when the table is first
	// created. Zero until the table exists. Guarded by mu: Add writes it
	// while concurrent searches read it.
	mu        sync.Mutex
	dimension int
}

var _ Store = (*PGVector)(nil)

// NewPGVector connects to Postgres and picks up the chunk table if it
// already exists. The table itself is created lazily on first Add, when
// the embedding dimension is known.
func NewPGVector(ctx context.Context, connString string) (*PGVector, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PGVector{pool: pool}
	if err := s.loadDimension(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// loadDimension reads the embedding dimension of an existing table.
func (s *PGVector) loadDimension(ctx context.Context) error {
	var dim int
	err := s.pool.QueryRow(ctx,
		`SELECT coalesce(atttypmod, 0) FROM pg_attribute
		 WHERE attrelid = to_regclass('chunks') AND attname = 'embedding'`,
	).Scan(&dim)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect chunk table: %w", err)
	}
	s.setDim(dim)
	return nil
}

// dim reads the embedding dimension under the lock.
func (s *PGVector) dim() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

func (s *PGVector) setDim(d int) {
	s.mu.Lock()
	s.dimension = d
	s.mu.Unlock()
}

// ensureTable creates the chunk table for the given dimension. The lock
// is held across the whole check-then-create so concurrent first Adds
// cannot race the table into existence twice with different dimensions.
func (s *PGVector) ensureTable(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 {
		if dimension != s.dimension {
			return fmt.Errorf("embedding dimension %d does not match index dimension %d", dimension, s.dimension)
		}
		return nil
	}

	_, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS chunks (
			id uuid PRIMARY KEY,
			content text NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, dimension))
	if err != nil {
		return fmt.Errorf("failed to create chunk table: %w", err)
	}
	s.dimension = dimension
	return nil
}

// Add inserts records in one batch. The batch executes inside a single
// implicit transaction, so the records are durably committed before Add
// returns.
func (s *PGVector) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureTable(ctx, len(records[0].Vector)); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		metaJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		batch.Queue(
			"INSERT INTO chunks (id, content, embedding, metadata) VALUES ($1, $2, $3, $4)",
			r.ID, r.Content, pgvector.NewVector(r.Vector), metaJSON,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return nil
}

// Search returns the k nearest chunks by cosine distance.
func (s *PGVector) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if s.dim() == 0 {
		// No table yet means nothing has been added.
		return nil, nil
	}

	query := pgvector.NewVector(vector)
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, embedding, metadata, embedding <=> $1 AS distance
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		query, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var emb pgvector.Vector
		var metaJSON []byte
		if err := rows.Scan(&m.ID, &m.Content, &emb, &metaJSON, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		m.Vector = emb.Slice()
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Delete is not supported for this backend: the table is treated as
// append-only and rebuilt from source when hard deletion is required.
// The degradation is logged, never silent.
func (s *PGVector) Delete(_ context.Context, sourceFile string) error {
	logger.Warn("pgvector store does not delete individual sources; %s left in place (recreate the index to remove it)", sourceFile)
	return nil
}

// Count returns the number of stored chunks.
func (s *PGVector) Count(ctx context.Context) (int, error) {
	if s.dim() == 0 {
		return 0, nil
	}
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (s *PGVector) Close() error {
	s.pool.Close()
	return nil
}
