package vectordb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(content, source string, vector []float32) Record {
	return Record{
		ID:      uuid.NewString(),
		Content: content,
		Vector:  vector,
		Metadata: map[string]string{
			"source_file": source,
			"file_name":   source,
		},
	}
}

func TestMemory_SearchEmptyIndex(t *testing.T) {
	m := NewMemory()
	matches, err := m.Search(context.Background(), []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemory_SearchInvalidK(t *testing.T) {
	m := NewMemory()
	_, err := m.Search(context.Background(), []float32{1, 0}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestMemory_SearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Add(ctx, []Record{
		record("orthogonal", "a.txt", []float32{0, 1}),
		record("aligned", "b.txt", []float32{1, 0}),
		record("diagonal", "c.txt", []float32{1, 1}),
	}))

	matches, err := m.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "aligned", matches[0].Content)
	assert.Equal(t, "diagonal", matches[1].Content)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemory_AddDoesNotDeduplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	r := record("same", "a.txt", []float32{1, 0})
	require.NoError(t, m.Add(ctx, []Record{r}))
	require.NoError(t, m.Add(ctx, []Record{r}))

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemory_DeleteBySource(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Add(ctx, []Record{
		record("keep", "keep.txt", []float32{1, 0}),
		record("drop", "drop.txt", []float32{0, 1}),
	}))

	require.NoError(t, m.Delete(ctx, "drop.txt"))

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := m.Search(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "keep", matches[0].Content)
}
