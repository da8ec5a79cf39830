package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meeple-labs/rulebook-agent/pkg/manual"
)

var downloadDir string

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download publisher rulebook PDFs into the manuals directory",
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "", "override the manuals directory from the config")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if downloadDir != "" {
		cfg.Paths.ManualsDir = downloadDir
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	saved, err := manual.Download(ctx, cfg.Paths.ManualsDir)
	if err != nil {
		return err
	}
	cmd.Printf("Saved %d of %d manuals to %s.\n", saved, len(manual.Catalog), cfg.Paths.ManualsDir)
	return nil
}
