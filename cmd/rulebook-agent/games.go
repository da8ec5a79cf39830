package main

import (
	"github.com/spf13/cobra"

	"github.com/meeple-labs/rulebook-agent/pkg/manual"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games whose manuals have been ingested",
	RunE:  runGames,
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	games, err := manual.LoadManifest(cfg.Paths.ManifestPath)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		cmd.Println("No manuals ingested yet. Run the ingest command first.")
		return nil
	}
	for _, g := range games {
		cmd.Println(g)
	}
	return nil
}
