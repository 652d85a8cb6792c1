// Package chatbot orchestrates retrieval-augmented question answering:
// it ingests documents into the vector store and turns questions into
// grounded answers with source attributions.
package chatbot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docuchat/cli/config"
	"github.com/docuchat/cli/internal/documents"
	"github.com/docuchat/cli/internal/embeddings"
	"github.com/docuchat/cli/internal/llm"
	"github.com/docuchat/cli/internal/logger"
	"github.com/docuchat/cli/internal/vectordb"
)

// Result statuses. Every public operation reports one; no operation
// panics or leaks a raw error across this boundary under normal failure
// conditions.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusWarning = "warning"
)

// previewLength bounds the content preview attached to each source
// attribution.
const previewLength = 200

// Source attributes part of an answer to a stored chunk.
type Source struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// AskResult is the packaged outcome of a question.
type AskResult struct {
	Status     string   `json:"status"`
	Question   string   `json:"question,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	Message    string   `json:"message,omitempty"`
	Sources    []Source `json:"sources,omitempty"`
	NumSources int      `json:"num_sources"`
}

// LoadResult is the outcome of a directory ingestion.
type LoadResult struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Stats   documents.Stats `json:"stats"`
}

// AddResult is the outcome of a single-file ingestion.
type AddResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ChunkCount int    `json:"chunks"`
}

// SearchResult is one raw retrieval hit, without answer generation.
type SearchResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"similarity_score"`
}

// SystemInfo is a diagnostic snapshot of the bot's state.
type SystemInfo struct {
	VectorDBType        string  `json:"vector_db_type"`
	Model               string  `json:"model"`
	ChunkSize           int     `json:"chunk_size"`
	ChunkOverlap        int     `json:"chunk_overlap"`
	RetrievalK          int     `json:"retrieval_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	Ready               bool    `json:"ready"`
	RecordCount         int     `json:"record_count"`
	ConversationTurns   int     `json:"conversation_turns"`
	DocsDirectory       string  `json:"docs_directory"`
}

// Chatbot answers questions about a document corpus. One instance serves
// one conversational session; hosts serving many users should create an
// instance per session so conversation state is never shared.
type Chatbot struct {
	cfg      *config.Config
	loader   *documents.Loader
	embedder embeddings.Embedder
	store    vectordb.Store
	llm      llm.Completer
	memory   *ConversationMemory

	// ready latches to true once the index holds at least one record.
	// There is no reverse transition: the index is append-only.
	ready bool
}

// New creates a chatbot. Readiness is probed from the store so a
// pre-populated persistent index is queryable immediately.
func New(cfg *config.Config, loader *documents.Loader, embedder embeddings.Embedder, store vectordb.Store, completer llm.Completer) *Chatbot {
	b := &Chatbot{
		cfg:      cfg,
		loader:   loader,
		embedder: embedder,
		store:    store,
		llm:      completer,
		memory:   NewConversationMemory(cfg.Chat.MaxTurns),
	}
	b.refreshReady(context.Background())
	return b
}

// refreshReady re-evaluates the not-ready-to-ready transition.
func (b *Chatbot) refreshReady(ctx context.Context) {
	if b.ready {
		return
	}
	n, err := b.store.Count(ctx)
	if err != nil {
		logger.Warn("failed to probe index state: %v", err)
		return
	}
	if n > 0 {
		b.ready = true
		logger.Info("index ready with %d records", n)
	}
}

// LoadDocuments ingests every supported file under dir.
func (b *Chatbot) LoadDocuments(ctx context.Context, dir string) LoadResult {
	if dir == "" {
		dir = b.cfg.Paths.DocsDirectory
	}
	logger.Info("loading documents from %s", dir)

	chunks, err := b.loader.LoadDirectory(dir)
	if err != nil {
		return LoadResult{Status: StatusError, Message: err.Error()}
	}
	if len(chunks) == 0 {
		return LoadResult{Status: StatusWarning, Message: "No documents found"}
	}

	if err := b.indexChunks(ctx, chunks); err != nil {
		return LoadResult{Status: StatusError, Message: err.Error()}
	}

	return LoadResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Loaded %d document chunks", len(chunks)),
		Stats:   documents.ComputeStats(chunks),
	}
}

// AddDocument ingests a single file. Unlike a directory scan, failures
// here surface to the caller because this file was requested explicitly.
func (b *Chatbot) AddDocument(ctx context.Context, path string) AddResult {
	logger.Info("adding document %s", path)

	chunks, err := b.loader.LoadFile(path)
	if err != nil {
		return AddResult{Status: StatusError, Message: err.Error()}
	}
	if len(chunks) == 0 {
		return AddResult{Status: StatusError, Message: "Failed to process document: no content"}
	}

	if err := b.indexChunks(ctx, chunks); err != nil {
		return AddResult{Status: StatusError, Message: err.Error()}
	}

	return AddResult{
		Status:     StatusSuccess,
		Message:    fmt.Sprintf("Added %d chunks from document", len(chunks)),
		ChunkCount: len(chunks),
	}
}

// indexChunks embeds chunks and commits them to the store, then
// re-evaluates readiness so the first successful batch unlocks queries.
func (b *Chatbot) indexChunks(ctx context.Context, chunks []documents.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	records := make([]vectordb.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectordb.Record{
			ID:       uuid.NewString(),
			Content:  c.Content,
			Vector:   vectors[i],
			Metadata: c.Metadata,
		}
	}

	if err := b.store.Add(ctx, records); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	b.refreshReady(ctx)
	return nil
}

// Ask answers a question from the indexed corpus. An empty index is a
// normal, recoverable condition reported as an error-status result; the
// generative model is never invoked in that case.
func (b *Chatbot) Ask(ctx context.Context, question string) AskResult {
	b.refreshReady(ctx)
	if !b.ready {
		return AskResult{
			Status:  StatusError,
			Message: "No documents loaded. Please load documents first.",
			Answer:  "I don't have any documents to search through. Please load some documentation first.",
		}
	}

	logger.Info("processing question: %s", question)

	queryVec, err := b.embedder.Embed(ctx, question)
	if err != nil {
		return AskResult{Status: StatusError, Question: question, Message: err.Error()}
	}

	matches, err := b.store.Search(ctx, queryVec, b.cfg.Processing.RetrievalK)
	if err != nil {
		return AskResult{Status: StatusError, Question: question, Message: err.Error()}
	}

	prompt := buildPrompt(buildContext(matches), question)
	answer, err := b.llm.Complete(ctx, prompt)
	if err != nil {
		return AskResult{
			Status:   StatusError,
			Question: question,
			Message:  err.Error(),
			Answer:   "Sorry, I encountered an error while processing your question.",
		}
	}

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{
			Content:  truncatePreview(m.Content, previewLength),
			Metadata: m.Metadata,
		})
	}

	b.memory.Append(question, answer)

	return AskResult{
		Status:     StatusSuccess,
		Question:   question,
		Answer:     answer,
		Sources:    sources,
		NumSources: len(sources),
	}
}

// Search returns raw retrieval hits for a query without generating an
// answer. It never mutates conversation state.
func (b *Chatbot) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		k = b.cfg.Processing.RetrievalK
	}

	queryVec, err := b.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := b.store.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			Content:  m.Content,
			Metadata: m.Metadata,
			Score:    m.Score,
		})
	}
	return results, nil
}

// DeleteDocument removes a source's chunks where the backend supports
// it; otherwise the backend logs a warning and leaves them in place.
func (b *Chatbot) DeleteDocument(ctx context.Context, sourceFile string) error {
	return b.store.Delete(ctx, sourceFile)
}

// ResetConversation clears conversational memory. The index is
// unaffected.
func (b *Chatbot) ResetConversation() {
	b.memory.Clear()
	logger.Info("conversation memory reset")
}

// Conversation returns the turns held in memory, oldest first.
func (b *Chatbot) Conversation() []Turn {
	return b.memory.Turns()
}

// GetSystemInfo reports a diagnostic snapshot of the current state.
func (b *Chatbot) GetSystemInfo(ctx context.Context) SystemInfo {
	b.refreshReady(ctx)
	count, err := b.store.Count(ctx)
	if err != nil {
		logger.Warn("failed to count records: %v", err)
	}
	return SystemInfo{
		VectorDBType:        b.cfg.VectorDB.Type,
		Model:               b.cfg.OpenAI.Model,
		ChunkSize:           b.cfg.Processing.ChunkSize,
		ChunkOverlap:        b.cfg.Processing.ChunkOverlap,
		RetrievalK:          b.cfg.Processing.RetrievalK,
		SimilarityThreshold: b.cfg.Processing.SimilarityThreshold,
		Ready:               b.ready,
		RecordCount:         count,
		ConversationTurns:   b.memory.Len(),
		DocsDirectory:       b.cfg.Paths.DocsDirectory,
	}
}
