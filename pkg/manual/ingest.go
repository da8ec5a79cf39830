package manual

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meeple-labs/rulebook-agent/pkg/embed"
	"github.com/meeple-labs/rulebook-agent/pkg/vectorstore"
)

// Ingestor drives the extract -> normalize -> chunk -> embed -> upsert
// pipeline for every PDF in a directory. Everything is sequential and
// blocking; a document either contributes all of its chunks or none.
type Ingestor struct {
	Chunker      *Chunker
	Embedder     embed.BatchEmbedder
	Store        vectorstore.Store
	Dimension    int
	ManifestPath string
	Logf         func(format string, args ...any)

	// Extract overrides PDF text extraction; nil means ExtractText.
	Extract func(path string) (string, error)
}

// Summary reports what one ingestion run did.
type Summary struct {
	Processed []string // source files fully ingested
	Skipped   []string // source files excluded, with a reason logged
	Records   int      // vector records written
	Games     []string // normalized names written to the manifest
}

// Run ingests every *.pdf under dir into the store's collection. With clear
// set the collection is destroyed and recreated first.
//
// Manifest policy: when at least one document succeeds, the manifest is
// rewritten with this run's names. When nothing succeeds, it is rewritten
// empty only for a clear run or when no manifest exists yet; otherwise the
// existing file is left alone.
func (ing *Ingestor) Run(ctx context.Context, dir string, clear bool) (*Summary, error) {
	logf := ing.Logf
	if logf == nil {
		logf = log.Printf
	}
	if ing.Chunker == nil {
		return nil, fmt.Errorf("ingestor requires a chunker")
	}
	if ing.Embedder == nil {
		return nil, fmt.Errorf("ingestor requires an embedder")
	}
	if ing.Store == nil {
		return nil, fmt.Errorf("ingestor requires a vector store")
	}
	dim := ing.Dimension
	if dim <= 0 {
		dim = embed.DefaultDimension
	}

	if err := ing.Store.EnsureCollection(ctx, dim, clear); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	pdfs, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var games []string

	for _, name := range pdfs {
		path := filepath.Join(dir, name)
		records, err := ing.processDocument(ctx, path, name, logf)
		if err != nil {
			return summary, err
		}
		if records == nil {
			summary.Skipped = append(summary.Skipped, name)
			continue
		}
		if err := ing.Store.Upsert(ctx, records); err != nil {
			// Reported, never swallowed; the document stays out of the
			// manifest and the run moves on.
			logf("ingest: %s: upsert failed: %v (skipped)", name, err)
			summary.Skipped = append(summary.Skipped, name)
			continue
		}
		summary.Processed = append(summary.Processed, name)
		summary.Records += len(records)
		games = append(games, CleanGameName(name))
		logf("ingest: %s: added %d chunks", name, len(records))
	}

	if len(summary.Processed) > 0 {
		if err := WriteManifest(ing.manifestPath(), games); err != nil {
			return summary, err
		}
		summary.Games = dedupeSorted(games)
		return summary, nil
	}
	if clear || !fileExists(ing.manifestPath()) {
		if err := WriteManifest(ing.manifestPath(), nil); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// processDocument runs the per-document pipeline. A nil, nil return means
// the document was skipped; the reason has been logged.
func (ing *Ingestor) processDocument(ctx context.Context, path, name string, logf func(string, ...any)) ([]vectorstore.Record, error) {
	extract := ing.Extract
	if extract == nil {
		extract = ExtractText
	}
	text, err := extract(path)
	if err != nil {
		logf("ingest: %s: %v (skipped)", name, err)
		return nil, nil
	}
	text = NormalizeText(text)
	if text == "" {
		logf("ingest: %s: no text extracted (skipped)", name)
		return nil, nil
	}

	chunks := ing.Chunker.Chunk(text)
	if len(chunks) == 0 {
		logf("ingest: %s: no chunks produced (skipped)", name)
		return nil, nil
	}

	embeddings, err := ing.Embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logf("ingest: %s: embedding failed: %v (skipped)", name, err)
		return nil, nil
	}
	if len(embeddings) != len(chunks) {
		logf("ingest: %s: %d chunks but %d embeddings, refusing partial ingest (skipped)",
			name, len(chunks), len(embeddings))
		return nil, nil
	}

	game := CleanGameName(name)
	records := make([]vectorstore.Record, len(embeddings))
	for i, emb := range embeddings {
		records[i] = vectorstore.Record{
			ID:     vectorstore.RecordID(name, i+1),
			Vector: emb.Vector,
			Payload: vectorstore.Payload{
				Text:       emb.Text,
				SourceFile: name,
				GameName:   game,
				ChunkIndex: i + 1,
				DocChars:   len([]rune(text)),
				ChunkChars: len([]rune(emb.Text)),
			},
		}
	}
	return records, nil
}

func (ing *Ingestor) manifestPath() string {
	if ing.ManifestPath != "" {
		return ing.ManifestPath
	}
	return DefaultManifestPath
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf directory: %w", err)
	}
	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, entry.Name())
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

func dedupeSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
