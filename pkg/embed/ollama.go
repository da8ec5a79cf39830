package embed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaEmbedder embeds texts with a local Ollama server. Useful when the
// manuals should never leave the machine; the collection dimension must
// match the chosen model (e.g. 768 for nomic-embed-text).
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

// NewOllamaEmbedder connects to host (or OLLAMA_HOST, or the local default).
func NewOllamaEmbedder(host, model string) (*OllamaEmbedder, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if model == "" {
		return nil, fmt.Errorf("ollama embedder requires a model name")
	}
	client := ollama.NewClient(u, &http.Client{Timeout: 30 * time.Second})
	return &OllamaEmbedder{client: client, model: model}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	pairs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return pairs[0].Vector, nil
}

// EmbedBatch sends all texts in a single request; the Ollama API batches
// natively via the Input field.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	resp, err := e.client.Embed(ctx, &ollama.EmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	out := make([]Embedding, len(texts))
	for i, vec := range resp.Embeddings {
		out[i] = Embedding{Text: texts[i], Vector: vec}
	}
	return out, nil
}

var (
	_ Embedder      = (*OllamaEmbedder)(nil)
	_ BatchEmbedder = (*OllamaEmbedder)(nil)
	_ BatchEmbedder = (*OpenAIEmbedder)(nil)
)
