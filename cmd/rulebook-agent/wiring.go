package main

import (
	"context"
	"fmt"

	"github.com/meeple-labs/rulebook-agent/pkg/config"
	"github.com/meeple-labs/rulebook-agent/pkg/embed"
	"github.com/meeple-labs/rulebook-agent/pkg/vectorstore"
)

// buildEmbedder constructs the configured embedder.
func buildEmbedder(cfg *config.Config) (embed.BatchEmbedder, error) {
	switch cfg.Embedder.Type {
	case "openai", "":
		key, err := cfg.OpenAIKey()
		if err != nil {
			return nil, err
		}
		model := cfg.OpenAI.EmbeddingModel
		if model == "" {
			model = embed.DefaultModel
		}
		return embed.NewOpenAIEmbedder(key, model), nil
	case "ollama":
		return embed.NewOllamaEmbedder(cfg.Embedder.Ollama.URL, cfg.Embedder.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}

// buildStore constructs the configured vector store. The returned cleanup
// closes any held connections and is always safe to call.
func buildStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, func(), error) {
	switch cfg.VectorStore.Type {
	case "qdrant", "":
		q := cfg.VectorStore.Qdrant
		store := vectorstore.NewQdrantStore(q.URL, cfg.QdrantKey(), q.Collection)
		return store, func() {}, nil
	case "memory":
		// volatile, handy for trying the chat loop without infrastructure
		return vectorstore.NewMemoryStore(), func() {}, nil
	case "postgres":
		dsn, err := cfg.PostgresDSN()
		if err != nil {
			return nil, nil, err
		}
		store, err := vectorstore.NewPostgresStore(ctx, dsn, cfg.VectorStore.Postgres.Table)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store type %q", cfg.VectorStore.Type)
	}
}
