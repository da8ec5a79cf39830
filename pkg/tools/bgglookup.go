package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meeple-labs/rulebook-agent/pkg/agent"
	"github.com/meeple-labs/rulebook-agent/pkg/bgg"
)

const (
	// BGGToolName is the function name the model calls.
	BGGToolName = "search_boardgamegeek"

	descriptionLimit = 600
)

// BGGLookup answers general game metadata questions from BoardGameGeek.
type BGGLookup struct {
	Client *bgg.Client
}

// Spec implements agent.Tool.
func (t *BGGLookup) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: BGGToolName,
		Description: "Look up a board game on BoardGameGeek for general information: " +
			"player count, playtime, year, categories, mechanics, rank and a short " +
			"description. Use query_type 'rules_faq' or 'errata' when the user wants " +
			"community FAQs or corrections rather than the base metadata.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"game_name": map[string]any{
					"type":        "string",
					"description": "The board game to look up.",
				},
				"query_type": map[string]any{
					"type":        "string",
					"enum":        []string{"general_info", "rules_faq", "errata"},
					"description": "What kind of information is wanted (default general_info).",
				},
			},
			"required": []string{"game_name"},
		},
	}
}

type bggArgs struct {
	GameName  string `json:"game_name"`
	QueryType string `json:"query_type"`
}

// Invoke implements agent.Tool.
func (t *BGGLookup) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	var args bggArgs
	if err := decodeArgs(req.Arguments, &args); err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error: invalid BoardGameGeek arguments: %v", err)}, nil
	}
	if strings.TrimSpace(args.GameName) == "" {
		return agent.ToolResponse{Content: "Error: game_name is required for a BoardGameGeek lookup."}, nil
	}

	game, err := t.Client.FindGame(ctx, args.GameName)
	if errors.Is(err, bgg.ErrNotFound) {
		return agent.ToolResponse{Content: fmt.Sprintf("Could not find '%s' on BoardGameGeek.", args.GameName)}, nil
	}
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error querying BoardGameGeek: %v", err)}, nil
	}

	switch args.QueryType {
	case "rules_faq", "errata":
		return agent.ToolResponse{Content: fmt.Sprintf(
			"FAQs and errata for '%s' live in the community sections of its BoardGameGeek page: %s",
			game.Name, game.PageURL())}, nil
	}
	return agent.ToolResponse{Content: formatGame(game)}, nil
}

func formatGame(g *bgg.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BoardGameGeek information for '%s'", g.Name)
	if g.YearPublished > 0 {
		fmt.Fprintf(&b, " (%d)", g.YearPublished)
	}
	b.WriteString(":\n")
	if g.MinPlayers > 0 || g.MaxPlayers > 0 {
		fmt.Fprintf(&b, "Players: %d-%d\n", g.MinPlayers, g.MaxPlayers)
	}
	if g.MinPlaytime > 0 || g.MaxPlaytime > 0 {
		fmt.Fprintf(&b, "Playtime: %d-%d minutes\n", g.MinPlaytime, g.MaxPlaytime)
	}
	if g.Rank != "" && g.Rank != "Not Ranked" {
		fmt.Fprintf(&b, "BGG rank: %s\n", g.Rank)
	}
	if len(g.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(g.Categories, ", "))
	}
	if len(g.Mechanics) > 0 {
		fmt.Fprintf(&b, "Mechanics: %s\n", strings.Join(g.Mechanics, ", "))
	}
	if desc := truncate(g.Description, descriptionLimit); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}
	fmt.Fprintf(&b, "More: %s", g.PageURL())
	return b.String()
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
