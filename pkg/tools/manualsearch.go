// Package tools holds the agent-facing tools. Each tool reports its own
// failures as result text so a bad lookup never kills the conversation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meeple-labs/rulebook-agent/pkg/agent"
	"github.com/meeple-labs/rulebook-agent/pkg/embed"
	"github.com/meeple-labs/rulebook-agent/pkg/manual"
	"github.com/meeple-labs/rulebook-agent/pkg/vectorstore"
)

const (
	// ManualSearchToolName is the function name the model calls.
	ManualSearchToolName = "search_board_game_manuals"

	defaultTopK = 3
	maxTopK     = 10
)

// ManualSearch retrieves relevant rulebook passages from the vector store.
type ManualSearch struct {
	Embedder     embed.Embedder
	Store        vectorstore.Store
	ManifestPath string
	TopK         int
}

// Spec implements agent.Tool.
func (t *ManualSearch) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: ManualSearchToolName,
		Description: "Search the ingested board game manuals for passages relevant to a " +
			"rules question. Pass game_name to restrict results to one game; use the " +
			"plain game title, e.g. 'Catan' or 'Ticket To Ride'.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The rules question or topic to search for.",
				},
				"game_name": map[string]any{
					"type":        "string",
					"description": "Optional game title to filter results to.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "How many passages to return (default 3).",
				},
			},
			"required": []string{"query"},
		},
	}
}

type manualSearchArgs struct {
	Query    string `json:"query"`
	GameName string `json:"game_name"`
	TopK     int    `json:"top_k"`
}

// Invoke implements agent.Tool.
func (t *ManualSearch) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	var args manualSearchArgs
	if err := decodeArgs(req.Arguments, &args); err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error: invalid search arguments: %v", err)}, nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return agent.ToolResponse{Content: "Error: the search query is empty."}, nil
	}

	topK := args.TopK
	if topK <= 0 {
		topK = t.TopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	vec, err := t.Embedder.Embed(ctx, args.Query)
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error embedding the search query: %v", err)}, nil
	}

	var notes []string
	filter := ""
	if strings.TrimSpace(args.GameName) != "" {
		filter = manual.TitleCase(args.GameName)
		if note := t.unknownGameNote(filter); note != "" {
			notes = append(notes, note)
		}
	}

	results, err := t.Store.Search(ctx, vec, topK, filter)
	if err != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error searching the manuals: %v", err)}, nil
	}
	if len(results) == 0 {
		msg := "No relevant passages were found in the board game manuals."
		if filter != "" {
			msg = fmt.Sprintf("No relevant passages were found in the manual for '%s'.", filter)
		}
		if len(notes) > 0 {
			msg = strings.Join(notes, "\n") + "\n\n" + msg
		}
		return agent.ToolResponse{Content: msg}, nil
	}

	blocks := make([]string, 0, len(results)+1)
	if len(notes) > 0 {
		blocks = append(blocks, strings.Join(notes, "\n"))
	}
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("From '%s' (manual: %s, chunk %d, score: %.2f):\n%s",
			r.Payload.GameName, r.Payload.SourceFile, r.Payload.ChunkIndex, r.Score, r.Payload.Text))
	}
	return agent.ToolResponse{Content: strings.Join(blocks, "\n\n---\n\n")}, nil
}

// unknownGameNote warns when the filter names a game outside the ingested
// set. A missing or unreadable manifest stays silent; the search itself is
// still the source of truth.
func (t *ManualSearch) unknownGameNote(gameName string) string {
	if t.ManifestPath == "" {
		return ""
	}
	games, err := manual.LoadManifest(t.ManifestPath)
	if err != nil || len(games) == 0 {
		return ""
	}
	for _, g := range games {
		if strings.EqualFold(g, gameName) {
			return ""
		}
	}
	return fmt.Sprintf("Note: '%s' is not in the list of ingested manuals (%s); results may be empty.",
		gameName, strings.Join(games, ", "))
}

// decodeArgs round-trips the loosely typed argument map into a typed
// struct so numeric fields land as ints.
func decodeArgs(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
