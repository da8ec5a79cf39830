package manual

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/meeple-labs/rulebook-agent/pkg/embed"
	"github.com/meeple-labs/rulebook-agent/pkg/vectorstore"
)

// fakeEmbedder returns a fixed-size vector per text. Setting short makes it
// return one embedding fewer than requested.
type fakeEmbedder struct {
	dim   int
	short bool
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, f.dim)
	vec[0] = float32(len(text))
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]embed.Embedding, error) {
	f.calls++
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([]embed.Embedding, 0, n)
	for _, text := range texts[:n] {
		vec, _ := f.Embed(ctx, text)
		out = append(out, embed.Embedding{Text: text, Vector: vec})
	}
	return out, nil
}

type failingStore struct {
	vectorstore.Store
}

func (failingStore) Upsert(context.Context, []vectorstore.Record) error {
	return errors.New("connection refused")
}

func writeFakePDF(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-stub"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testIngestor(store vectorstore.Store, emb embed.BatchEmbedder, manifest, text string) *Ingestor {
	chunker, _ := NewChunker(1000, 200)
	return &Ingestor{
		Chunker:      chunker,
		Embedder:     emb,
		Store:        store,
		Dimension:    4,
		ManifestPath: manifest,
		Logf:         func(string, ...any) {},
		Extract:      func(string) (string, error) { return text, nil },
	}
}

func TestIngestRun(t *testing.T) {
	dir := t.TempDir()
	writeFakePDF(t, dir, "catan_manual.pdf")
	writeFakePDF(t, dir, "Risk.pdf")
	manifest := filepath.Join(t.TempDir(), "supported_games.txt")

	store := vectorstore.NewMemoryStore()
	text := strings.Repeat("roll the dice ", 130) // 1820 runes -> 3 chunks
	ing := testIngestor(store, &fakeEmbedder{dim: 4}, manifest, text)

	summary, err := ing.Run(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Processed) != 2 {
		t.Fatalf("processed %v, want 2 files", summary.Processed)
	}
	if summary.Records != 6 {
		t.Fatalf("got %d records, want 6", summary.Records)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 6 {
		t.Fatalf("store holds %d records, want 6", count)
	}
	if !reflect.DeepEqual(summary.Games, []string{"Catan", "Risk"}) {
		t.Fatalf("games = %v", summary.Games)
	}
	games, err := LoadManifest(manifest)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if !reflect.DeepEqual(games, []string{"Catan", "Risk"}) {
		t.Fatalf("manifest = %v", games)
	}
}

func TestIngestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFakePDF(t, dir, "catan_manual.pdf")
	manifest := filepath.Join(t.TempDir(), "supported_games.txt")

	store := vectorstore.NewMemoryStore()
	text := strings.Repeat("x", 1800)
	ing := testIngestor(store, &fakeEmbedder{dim: 4}, manifest, text)

	for i := 0; i < 2; i++ {
		if _, err := ing.Run(context.Background(), dir, false); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
	count, _ := store.Count(context.Background())
	if count != 3 {
		t.Fatalf("re-ingesting duplicated records: count = %d, want 3", count)
	}
}

func TestIngestEmbeddingMismatchSkipsDocument(t *testing.T) {
	dir := t.TempDir()
	writeFakePDF(t, dir, "catan_manual.pdf")
	manifest := filepath.Join(t.TempDir(), "supported_games.txt")

	store := vectorstore.NewMemoryStore()
	ing := testIngestor(store, &fakeEmbedder{dim: 4, short: true}, manifest, strings.Repeat("x", 1800))

	summary, err := ing.Run(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Processed) != 0 || len(summary.Skipped) != 1 {
		t.Fatalf("processed=%v skipped=%v, want the document skipped", summary.Processed, summary.Skipped)
	}
	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Fatalf("partial document was written: count = %d", count)
	}
}

func TestIngestUpsertFailureSkipsDocument(t *testing.T) {
	dir := t.TempDir()
	writeFakePDF(t, dir, "catan_manual.pdf")
	manifest := filepath.Join(t.TempDir(), "supported_games.txt")

	base := vectorstore.NewMemoryStore()
	ing := testIngestor(failingStore{base}, &fakeEmbedder{dim: 4}, manifest, strings.Repeat("x", 500))

	summary, err := ing.Run(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Skipped) != 1 {
		t.Fatalf("skipped = %v, want the failing document", summary.Skipped)
	}
}

func TestIngestManifestPolicyOnEmptyRun(t *testing.T) {
	emptyDir := t.TempDir()
	manifest := filepath.Join(t.TempDir(), "supported_games.txt")
	if err := WriteManifest(manifest, []string{"Catan"}); err != nil {
		t.Fatal(err)
	}

	store := vectorstore.NewMemoryStore()
	ing := testIngestor(store, &fakeEmbedder{dim: 4}, manifest, "")

	// no documents, no clear: the existing manifest survives
	if _, err := ing.Run(context.Background(), emptyDir, false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	games, _ := LoadManifest(manifest)
	if !reflect.DeepEqual(games, []string{"Catan"}) {
		t.Fatalf("manifest was clobbered: %v", games)
	}

	// no documents, clear requested: the manifest is emptied
	if _, err := ing.Run(context.Background(), emptyDir, true); err != nil {
		t.Fatalf("Run with clear: %v", err)
	}
	games, _ = LoadManifest(manifest)
	if games != nil {
		t.Fatalf("clear run left manifest entries: %v", games)
	}
}
