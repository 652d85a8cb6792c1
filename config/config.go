package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Supported vector store backends.
const (
	StoreSQLite   = "sqlite"
	StorePGVector = "pgvector"
	StoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	OpenAI struct {
		// APIKey is read from the OPENAI_API_KEY environment variable,
		// never from the config file.
		APIKey         string `yaml:"-"`
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		EmbeddingModel string `yaml:"embedding_model"`
	} `yaml:"openai"`
	VectorDB struct {
		Type             string `yaml:"type"`
		Path             string `yaml:"path"`
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"vector_db"`
	Processing struct {
		ChunkSize           int     `yaml:"chunk_size"`
		ChunkOverlap        int     `yaml:"chunk_overlap"`
		RetrievalK          int     `yaml:"retrieval_k"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
	} `yaml:"processing"`
	Chat struct {
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		MaxTurns    int     `yaml:"max_turns"`
	} `yaml:"chat"`
	Paths struct {
		DocsDirectory string `yaml:"docs_directory"`
	} `yaml:"paths"`
}

// Load loads configuration from file or returns defaults. Environment
// variables override file values so deployments can tune the bot without
// editing the config file.
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(os.Getenv("HOME"), ".docuchat", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".docuchat")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	cfg.OpenAI.Model = "gpt-3.5-turbo"
	cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	cfg.VectorDB.Type = StoreSQLite
	cfg.VectorDB.Path = filepath.Join(os.Getenv("HOME"), ".docuchat", "index.db")
	cfg.VectorDB.ConnectionString = "postgres://postgres@localhost/postgres?sslmode=disable"
	cfg.Processing.ChunkSize = 1000
	cfg.Processing.ChunkOverlap = 200
	cfg.Processing.RetrievalK = 4
	cfg.Processing.SimilarityThreshold = 0.7
	cfg.Chat.MaxTokens = 1000
	cfg.Chat.Temperature = 0.7
	cfg.Chat.MaxTurns = 50
	cfg.Paths.DocsDirectory = "./documents"

	return cfg
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_EMBEDDING_MODEL"); v != "" {
		c.OpenAI.EmbeddingModel = v
	}
	if v := os.Getenv("VECTOR_DB_TYPE"); v != "" {
		c.VectorDB.Type = v
	}
	if v := os.Getenv("DOCS_DIRECTORY"); v != "" {
		c.Paths.DocsDirectory = v
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processing.ChunkSize = n
		}
	}
	if v := os.Getenv("CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processing.ChunkOverlap = n
		}
	}
	if v := os.Getenv("RETRIEVAL_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processing.RetrievalK = n
		}
	}
}

// Validate checks that required configuration is present and coherent.
// It runs once at startup; every violation is fatal. Misconfiguration is
// rejected outright rather than silently replaced with a default.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	if c.Processing.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Processing.ChunkSize)
	}
	if c.Processing.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d", c.Processing.ChunkOverlap)
	}
	if c.Processing.ChunkOverlap >= c.Processing.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Processing.ChunkOverlap, c.Processing.ChunkSize)
	}
	if c.Processing.RetrievalK <= 0 {
		return fmt.Errorf("retrieval_k must be positive, got %d", c.Processing.RetrievalK)
	}
	switch c.VectorDB.Type {
	case StoreSQLite, StorePGVector, StoreMemory:
	default:
		return fmt.Errorf("unsupported vector store type: %q (supported: sqlite, pgvector, memory)", c.VectorDB.Type)
	}
	return nil
}
