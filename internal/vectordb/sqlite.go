package vectordb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// SQLite is the default backend: a single-file store with brute-force
// cosine search. Every Add commits its transaction before returning, so
// committed records survive a crash; a retried Add after a crash may
// duplicate them (at-least-once).
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (or creates) the store at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			metadata TEXT,
			source_file TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_file);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// Add stores records in one transaction.
func (s *SQLite) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, content, embedding, metadata, source_file) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var metaJSON []byte
		if r.Metadata != nil {
			metaJSON, err = json.Marshal(r.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal metadata: %w", err)
			}
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Content, encodeVector(r.Vector), metaJSON, r.Metadata["source_file"]); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Search loads all rows and ranks them by cosine similarity in memory.
// Fine for corpora up to tens of thousands of chunks; beyond that an
// ANN index backend is the right tool.
func (s *SQLite) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, content, embedding, metadata FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var r Record
		var embBytes []byte
		var metaJSON sql.NullString
		if err := rows.Scan(&r.ID, &r.Content, &embBytes, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		r.Vector = decodeVector(embBytes)
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &r.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		matches = append(matches, Match{Record: r, Score: cosineSimilarity(r.Vector, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes all chunks loaded from sourceFile.
func (s *SQLite) Delete(ctx context.Context, sourceFile string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE source_file = ?", sourceFile); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// encodeVector converts []float32 to little-endian bytes.
func encodeVector(f []float32) []byte {
	buf := make([]byte, len(f)*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector converts little-endian bytes back to []float32.
func decodeVector(b []byte) []float32 {
	f := make([]float32, len(b)/4)
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return f
}
