package manual

import (
	"strings"
	"testing"
)

func TestNewChunkerValidation(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", DefaultChunkSize, DefaultChunkOverlap, false},
		{"no overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunker(tc.size, tc.overlap)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewChunker(%d, %d) error = %v, wantErr %v", tc.size, tc.overlap, err, tc.wantErr)
			}
		})
	}
}

func TestChunkWindowing(t *testing.T) {
	c, err := NewChunker(1000, 200)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	text := strings.Repeat("abcdefghij", 180) // 1800 runes

	chunks := c.Chunk(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantLens := []int{1000, 1000, 200}
	for i, chunk := range chunks {
		if got := len([]rune(chunk)); got != wantLens[i] {
			t.Errorf("chunk %d has %d runes, want %d", i, got, wantLens[i])
		}
	}
	// adjacent windows share exactly the overlap
	tail := chunks[0][len(chunks[0])-200:]
	head := chunks[1][:200]
	if tail != head {
		t.Errorf("overlap mismatch between chunk 0 and 1")
	}
}

func TestChunkShortText(t *testing.T) {
	c, _ := NewChunker(1000, 200)
	chunks := c.Chunk("short rules text")
	if len(chunks) != 1 || chunks[0] != "short rules text" {
		t.Fatalf("got %q, want the input as a single chunk", chunks)
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c, _ := NewChunker(1000, 200)
	if chunks := c.Chunk(""); len(chunks) != 0 {
		t.Fatalf("empty input produced %d chunks", len(chunks))
	}
}

func TestChunkDropsBlankWindows(t *testing.T) {
	c, _ := NewChunker(4, 0)
	chunks := c.Chunk("abcd    efgh")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %q", len(chunks), chunks)
	}
	if chunks[0] != "abcd" || chunks[1] != "efgh" {
		t.Fatalf("blank window shifted offsets: %q", chunks)
	}
}
