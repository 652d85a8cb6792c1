package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.OpenAI.APIKey = "sk-test"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidate_OverlapNotSmallerThanChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Processing.ChunkSize = 100
	cfg.Processing.ChunkOverlap = 100
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestValidate_UnsupportedStoreType(t *testing.T) {
	cfg := validConfig()
	cfg.VectorDB.Type = "chroma"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported vector store type")
}

func TestValidate_RetrievalK(t *testing.T) {
	cfg := validConfig()
	cfg.Processing.RetrievalK = 0
	require.Error(t, cfg.Validate())
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("CHUNK_SIZE", "512")
	t.Setenv("VECTOR_DB_TYPE", "memory")

	cfg := Default()
	cfg.applyEnv()

	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "text-embedding-3-large", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 512, cfg.Processing.ChunkSize)
	assert.Equal(t, StoreMemory, cfg.VectorDB.Type)
}
