package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meeple-labs/rulebook-agent/pkg/manual"
)

var (
	ingestClear      bool
	ingestDir        string
	ingestCollection string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest PDF manuals into the vector store",
	Long: `Extracts text from every PDF in the manuals directory, chunks and
embeds it, and writes the vectors to the configured store. Re-running
replaces the records of unchanged files in place.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "drop and recreate the collection before ingesting")
	ingestCmd.Flags().StringVar(&ingestDir, "pdf-dir", "", "override the manuals directory from the config")
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "override the collection name from the config")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ingestDir != "" {
		cfg.Paths.ManualsDir = ingestDir
	}
	if ingestCollection != "" {
		if cfg.VectorStore.Qdrant != nil {
			cfg.VectorStore.Qdrant.Collection = ingestCollection
		}
		if cfg.VectorStore.Postgres != nil {
			cfg.VectorStore.Postgres.Table = ingestCollection
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir := cfg.Paths.ManualsDir
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manuals dir: %w", err)
		}
		cmd.Printf("Created %s. Put PDF manuals there (or run the download command) and re-run ingest.\n", dir)
		return nil
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	chunker, err := manual.NewChunker(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return err
	}

	ing := &manual.Ingestor{
		Chunker:      chunker,
		Embedder:     embedder,
		Store:        store,
		Dimension:    cfg.Embedder.Dimension,
		ManifestPath: cfg.Paths.ManifestPath,
		Logf:         log.Printf,
	}
	summary, err := ing.Run(ctx, dir, ingestClear)
	if err != nil {
		return err
	}

	cmd.Printf("Ingested %d file(s), %d record(s) written.\n", len(summary.Processed), summary.Records)
	if len(summary.Skipped) > 0 {
		cmd.Printf("Skipped: %s\n", strings.Join(summary.Skipped, ", "))
	}
	if len(summary.Games) > 0 {
		cmd.Printf("Supported games: %s\n", strings.Join(summary.Games, ", "))
	}
	return nil
}
