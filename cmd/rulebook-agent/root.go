package main

import (
	"github.com/spf13/cobra"

	"github.com/meeple-labs/rulebook-agent/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rulebook-agent",
	Short: "Chat assistant for board game rules backed by ingested manuals",
	Long: `rulebook-agent answers board game rules questions from the actual
rulebooks. Download publisher manuals, ingest them into a vector store,
then chat: the agent searches the manuals, looks up game metadata on
BoardGameGeek, and asks for clarification when a question is ambiguous.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
