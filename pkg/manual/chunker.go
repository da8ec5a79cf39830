package manual

import (
	"fmt"
	"strings"
)

// Defaults mirror the sizes the manuals were originally ingested with.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker slides a fixed-size window with fixed overlap over text.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates 0 <= overlap < size and returns a Chunker.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must satisfy 0 <= overlap < size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into overlapping windows of at most size runes.
// Windows that are blank after trimming are dropped from the output but do
// not affect the offset arithmetic. Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+c.size, len(runes))
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
