package vectordb

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process store using brute-force cosine similarity.
// Nothing survives a restart; it exists for tests and ephemeral runs.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Add appends records. Concurrent readers are safe; they observe either
// the state before or after the append.
func (m *Memory) Add(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

// Search returns the k records most similar to vector, best first.
func (m *Memory) Search(_ context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for _, r := range m.records {
		matches = append(matches, Match{Record: r, Score: cosineSimilarity(r.Vector, vector)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes every record whose source_file metadata matches.
func (m *Memory) Delete(_ context.Context, sourceFile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	for _, r := range m.records {
		if r.Metadata["source_file"] != sourceFile {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

// Count returns the number of stored records.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
