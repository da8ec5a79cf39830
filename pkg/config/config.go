// Package config loads the application configuration from YAML with
// environment overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/meeple-labs/rulebook-agent/pkg/manual"
)

// PathsConfig locates the on-disk inputs and outputs of ingestion.
type PathsConfig struct {
	ManualsDir   string `yaml:"manuals_dir"`
	ManifestPath string `yaml:"manifest_path"`
}

// ChunkerConfig controls how manual text is split before embedding.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// OpenAIConfig covers both the chat model and the embedder. The API key is
// only ever read from the environment.
type OpenAIConfig struct {
	APIKeyEnv      string  `yaml:"api_key_env"`
	ChatModel      string  `yaml:"chat_model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float32 `yaml:"temperature"`
}

// OllamaConfig configures the local embedding alternative.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// EmbedderConfig selects the embedder implementation.
type EmbedderConfig struct {
	Type      string        `yaml:"type"` // openai or ollama
	Dimension int           `yaml:"dimension"`
	Ollama    *OllamaConfig `yaml:"ollama,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant store.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Collection string `yaml:"collection"`
}

// PostgresConfig contains connection details for a pgvector store.
type PostgresConfig struct {
	DSNEnv string `yaml:"dsn_env"`
	Table  string `yaml:"table"`
}

// VectorStoreConfig selects the vector store implementation.
type VectorStoreConfig struct {
	Type     string          `yaml:"type"` // qdrant or postgres
	Qdrant   *QdrantConfig   `yaml:"qdrant,omitempty"`
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
}

// Config is the root application configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. A .env file in the working directory is loaded first so
// api_key_env lookups see it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// OpenAIKey resolves the OpenAI API key from the configured env var.
func (c *Config) OpenAIKey() (string, error) {
	key := os.Getenv(c.OpenAI.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.OpenAI.APIKeyEnv)
	}
	return key, nil
}

// QdrantKey resolves the optional Qdrant API key. Empty means no auth.
func (c *Config) QdrantKey() string {
	if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.VectorStore.Qdrant.APIKeyEnv)
}

// PostgresDSN resolves the pgvector connection string.
func (c *Config) PostgresDSN() (string, error) {
	if c.VectorStore.Postgres == nil {
		return "", errors.New("postgres vector store is not configured")
	}
	dsn := os.Getenv(c.VectorStore.Postgres.DSNEnv)
	if dsn == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.VectorStore.Postgres.DSNEnv)
	}
	return dsn, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Paths.ManualsDir == "" {
		cfg.Paths.ManualsDir = "data/pdf_rule_books"
	}
	if cfg.Paths.ManifestPath == "" {
		cfg.Paths.ManifestPath = manual.DefaultManifestPath
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = manual.DefaultChunkSize
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = manual.DefaultChunkOverlap
		}
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 1536
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = &OllamaConfig{}
		}
		if cfg.Embedder.Ollama.URL == "" {
			cfg.Embedder.Ollama.URL = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "nomic-embed-text"
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.APIKeyEnv == "" {
			cfg.VectorStore.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
		}
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "board_game_manuals"
		}
	}
	if cfg.VectorStore.Type == "postgres" {
		if cfg.VectorStore.Postgres == nil {
			cfg.VectorStore.Postgres = &PostgresConfig{}
		}
		if cfg.VectorStore.Postgres.DSNEnv == "" {
			cfg.VectorStore.Postgres.DSNEnv = "DATABASE_URL"
		}
		if cfg.VectorStore.Postgres.Table == "" {
			cfg.VectorStore.Postgres.Table = "board_game_manuals"
		}
	}
}
