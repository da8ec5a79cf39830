package embed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel matches the model the manuals were originally embedded with.
// Changing it requires re-ingesting every collection.
const DefaultModel = string(openai.AdaEmbeddingV2)

// DefaultDimension is the vector size of DefaultModel.
const DefaultDimension = 1536

// OpenAIEmbedder calls the OpenAI embeddings API in fixed-size batches.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	baseURL   string
	batchSize int
	cooldown  time.Duration
	pause     time.Duration
	logf      func(format string, args ...any)
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithBatchSize overrides the per-request batch size.
func WithBatchSize(n int) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithCooldown overrides the sleep before the single rate-limit retry.
func WithCooldown(d time.Duration) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.cooldown = d }
}

// WithPause overrides the delay between successful batches.
func WithPause(d time.Duration) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.pause = d }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.baseURL = u }
}

// WithLogger redirects progress and drop notices.
func WithLogger(logf func(format string, args ...any)) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		if logf != nil {
			e.logf = logf
		}
	}
}

// NewOpenAIEmbedder builds an embedder. An empty apiKey falls back to
// OPENAI_API_KEY; an empty model falls back to DefaultModel.
func NewOpenAIEmbedder(apiKey, model string, opts ...OpenAIOption) *OpenAIEmbedder {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = DefaultModel
	}
	e := &OpenAIEmbedder{
		model:     model,
		batchSize: 20,
		cooldown:  20 * time.Second,
		pause:     500 * time.Millisecond,
		logf:      log.Printf,
	}
	for _, opt := range opts {
		opt(e)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	if e.baseURL != "" {
		cfg.BaseURL = e.baseURL
	}
	e.client = openai.NewClientWithConfig(cfg)
	return e
}

// Embed returns the vector for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedOnce(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch partitions texts into batches and embeds each with one API
// call. A rate-limited batch is retried exactly once after the cooldown;
// a batch that still fails is dropped with a log line and the remaining
// batches continue. A short pause between successful batches keeps the
// request rate polite.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	out := make([]Embedding, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		batch := texts[start:end]

		vectors, err := e.embedOnce(ctx, batch)
		if isRateLimit(err) {
			e.logf("embed: rate limited, cooling down for %s", e.cooldown)
			if err = sleepCtx(ctx, e.cooldown); err != nil {
				return out, err
			}
			vectors, err = e.embedOnce(ctx, batch)
		}
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			e.logf("embed: dropping batch %d (%d texts): %v", start/e.batchSize+1, len(batch), err)
			continue
		}

		for i, vec := range vectors {
			out = append(out, Embedding{Text: batch[i], Vector: vec})
		}
		if end < len(texts) && e.pause > 0 {
			if err := sleepCtx(ctx, e.pause); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: batch,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("embedding response carries %d vectors for %d inputs", len(resp.Data), len(batch))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
