package chatbot

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/cli/config"
	"github.com/docuchat/cli/internal/chunker"
	"github.com/docuchat/cli/internal/documents"
	"github.com/docuchat/cli/internal/logger"
	"github.com/docuchat/cli/internal/vectordb"
)

// hashEmbedder is a deterministic bag-of-words embedder: token counts
// hashed into a fixed-size vector. Overlapping vocabulary yields high
// cosine similarity, which is all retrieval tests need.
type hashEmbedder struct {
	dim int
}

func (e hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dim)]++
	}
	return vec, nil
}

func (e hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// fakeLLM returns a canned answer and records how often it was called.
type fakeLLM struct {
	answer string
	err    error
	calls  int
}

func (f *fakeLLM) Complete(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// failingReader simulates a corrupt file of a supported format.
type failingReader struct{}

func (failingReader) Read(string) (string, error) {
	return "", errors.New("corrupt file")
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.VectorDB.Type = config.StoreMemory
	return cfg
}

func newTestBot(cfg *config.Config, model *fakeLLM) *Chatbot {
	splitter := chunker.NewSplitter(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	loader := documents.NewLoader(splitter)
	loader.Register(".pdf", failingReader{})
	return New(cfg, loader, hashEmbedder{dim: 64}, vectordb.NewMemory(), model)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAsk_BeforeIngestion(t *testing.T) {
	model := &fakeLLM{answer: "should not be called"}
	bot := newTestBot(testConfig(), model)

	result := bot.Ask(context.Background(), "anything?")

	assert.Equal(t, StatusError, result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Zero(t, model.calls, "the generative model must not be invoked on an empty index")
}

func TestAsk_AfterIngestionSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deploy.md", "Deployments require two approvals from the platform team.")

	model := &fakeLLM{answer: "Two approvals are required."}
	bot := newTestBot(testConfig(), model)

	load := bot.LoadDocuments(context.Background(), dir)
	require.Equal(t, StatusSuccess, load.Status)

	result := bot.Ask(context.Background(), "how many approvals do deployments require?")
	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "Two approvals are required.", result.Answer)
	assert.Equal(t, 1, model.calls)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, len(result.Sources), result.NumSources)
	assert.Equal(t, "deploy.md", result.Sources[0].Metadata[documents.MetaFileName])
}

func TestAsk_AppendsConversationMemory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content here")

	model := &fakeLLM{answer: "an answer"}
	bot := newTestBot(testConfig(), model)
	bot.LoadDocuments(context.Background(), dir)

	bot.Ask(context.Background(), "first question")
	bot.Ask(context.Background(), "second question")

	turns := bot.Conversation()
	require.Len(t, turns, 2)
	assert.Equal(t, "first question", turns[0].Question)
	assert.Equal(t, "an answer", turns[0].Answer)
}

func TestAsk_ModelFailureBecomesErrorResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content here")

	model := &fakeLLM{err: errors.New("rate limit exceeded")}
	bot := newTestBot(testConfig(), model)
	bot.LoadDocuments(context.Background(), dir)

	result := bot.Ask(context.Background(), "a question")
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "rate limit exceeded")
	assert.Empty(t, bot.Conversation(), "failed turns must not enter conversation memory")
}

func TestSearch_RoundTripFindsVerbatimPhrase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "animals.txt", "the elephant wears purple boots on rainy days")
	writeFile(t, dir, "other.txt", "quarterly finance report with revenue numbers")

	bot := newTestBot(testConfig(), &fakeLLM{answer: "x"})
	require.Equal(t, StatusSuccess, bot.LoadDocuments(context.Background(), dir).Status)

	results, err := bot.Search(context.Background(), "elephant wears purple boots", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "elephant wears purple boots")
}

func TestSearch_DoesNotTouchConversation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content here")

	bot := newTestBot(testConfig(), &fakeLLM{answer: "x"})
	bot.LoadDocuments(context.Background(), dir)

	_, err := bot.Search(context.Background(), "alpha", 2)
	require.NoError(t, err)
	assert.Empty(t, bot.Conversation())
}

func TestLoadDocuments_MissingDirectoryIsWarning(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stderr)

	bot := newTestBot(testConfig(), &fakeLLM{})
	result := bot.LoadDocuments(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, StatusWarning, result.Status)
}

func TestAddDocument_UnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", "blob")

	bot := newTestBot(testConfig(), &fakeLLM{})
	result := bot.AddDocument(context.Background(), path)
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "unsupported file type")
}

func TestAddDocument_TriggersReadyTransition(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.txt", "a single note about oncall rotations")

	model := &fakeLLM{answer: "oncall rotates weekly"}
	bot := newTestBot(testConfig(), model)

	before := bot.Ask(context.Background(), "who is oncall?")
	require.Equal(t, StatusError, before.Status)

	add := bot.AddDocument(context.Background(), path)
	require.Equal(t, StatusSuccess, add.Status)
	assert.Equal(t, 1, add.ChunkCount)

	after := bot.Ask(context.Background(), "who is oncall?")
	assert.Equal(t, StatusSuccess, after.Status)
}

func TestResetConversation_LeavesIndexReady(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content here")

	bot := newTestBot(testConfig(), &fakeLLM{answer: "x"})
	bot.LoadDocuments(context.Background(), dir)
	bot.Ask(context.Background(), "a question")
	require.NotEmpty(t, bot.Conversation())

	bot.ResetConversation()

	assert.Empty(t, bot.Conversation())
	info := bot.GetSystemInfo(context.Background())
	assert.True(t, info.Ready, "reset affects only conversational memory, not the index")
	assert.Positive(t, info.RecordCount)
}

func TestScenario_PolicyDocWithCorruptNeighbour(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stderr)

	dir := t.TempDir()
	policy := strings.Repeat("Remote work requires manager signoff. ", 15) // ~585 chars
	require.Less(t, len(policy), 1000)
	writeFile(t, dir, "policy.md", policy)
	writeFile(t, dir, "broken.pdf", "not really a pdf")

	model := &fakeLLM{answer: "Manager signoff is required."}
	bot := newTestBot(testConfig(), model)

	load := bot.LoadDocuments(context.Background(), dir)
	require.Equal(t, StatusSuccess, load.Status)
	assert.Equal(t, 1, load.Stats.TotalChunks)
	assert.Equal(t, 1, load.Stats.UniqueFiles)

	result := bot.Ask(context.Background(), "what does policy.md say about remote work?")
	require.Equal(t, StatusSuccess, result.Status)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "policy.md", result.Sources[0].Metadata[documents.MetaFileName])
}

func TestGetSystemInfo_Snapshot(t *testing.T) {
	cfg := testConfig()
	bot := newTestBot(cfg, &fakeLLM{})

	info := bot.GetSystemInfo(context.Background())
	assert.Equal(t, config.StoreMemory, info.VectorDBType)
	assert.Equal(t, cfg.Processing.ChunkSize, info.ChunkSize)
	assert.Equal(t, cfg.Processing.ChunkOverlap, info.ChunkOverlap)
	assert.False(t, info.Ready)
	assert.Zero(t, info.RecordCount)
}
