package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Payload is the data persisted alongside each vector.
type Payload struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	GameName   string `json:"game_name"`
	ChunkIndex int    `json:"chunk_index"`
	DocChars   int    `json:"doc_chars"`
	ChunkChars int    `json:"chunk_chars"`
}

// Record is one persisted manual chunk.
type Record struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Result is a search hit with its similarity score.
type Result struct {
	Record
	Score float64
}

// Store is the gateway to a vector collection. Implementations are safe for
// sequential reuse; concurrent callers need their own synchronization.
type Store interface {
	// EnsureCollection creates the collection if missing. With recreate set
	// it drops any existing collection first, discarding all records.
	EnsureCollection(ctx context.Context, dim int, recreate bool) error
	// Upsert writes records in bounded batches. A failed batch is returned
	// as an error, never swallowed.
	Upsert(ctx context.Context, records []Record) error
	// Search returns up to topK records by descending cosine similarity.
	// A non-empty gameName restricts hits to that exact payload value.
	// No matches is an empty slice, not an error.
	Search(ctx context.Context, vector []float32, topK int, gameName string) ([]Result, error)
	// Count reports the number of records in the collection.
	Count(ctx context.Context) (int, error)
}

// upsertBatchSize bounds one write call; Qdrant and pgvector both handle
// this comfortably.
const upsertBatchSize = 100

// RecordID derives a deterministic UUID for a chunk so re-ingesting the same
// document replaces its previous records instead of duplicating them.
func RecordID(sourceFile string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "manual://%s/%d", sourceFile, chunkIndex)).String()
}
