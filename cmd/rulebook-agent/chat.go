package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/meeple-labs/rulebook-agent/pkg/agent"
	"github.com/meeple-labs/rulebook-agent/pkg/bgg"
	"github.com/meeple-labs/rulebook-agent/pkg/chat"
	"github.com/meeple-labs/rulebook-agent/pkg/manual"
	"github.com/meeple-labs/rulebook-agent/pkg/tools"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	key, err := cfg.OpenAIKey()
	if err != nil {
		return err
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

	var modelOpts []agent.OpenAIChatOption
	if cfg.OpenAI.ChatModel != "" {
		modelOpts = append(modelOpts, agent.WithChatModel(cfg.OpenAI.ChatModel))
	}
	modelOpts = append(modelOpts, agent.WithTemperature(cfg.OpenAI.Temperature))
	model, err := agent.NewOpenAIChat(key, modelOpts...)
	if err != nil {
		return err
	}

	catalog := agent.NewCatalog(
		&tools.ManualSearch{
			Embedder:     embedder,
			Store:        store,
			ManifestPath: cfg.Paths.ManifestPath,
		},
		&tools.BGGLookup{Client: bgg.NewClient()},
		tools.Clarify{},
	)
	driver := agent.NewDriver(model, catalog)

	games, err := manual.LoadManifest(cfg.Paths.ManifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	p := tea.NewProgram(chat.New(driver, games), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
