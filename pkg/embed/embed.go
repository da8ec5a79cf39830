package embed

import "context"

// Embedding pairs a text with the vector produced for it. Batch embedding
// returns these pairs rather than a bare vector slice so that a dropped
// batch can never desynchronize texts from their embeddings.
type Embedding struct {
	Text   string
	Vector []float32
}

// Embedder produces a vector for a single text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder embeds many texts in provider-sized batches. The result may
// be shorter than the input when a batch fails terminally; callers that rely
// on one vector per input must check the lengths match.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)
}
