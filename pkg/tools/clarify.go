package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/meeple-labs/rulebook-agent/pkg/agent"
)

// ClarificationPrefix marks a tool result that carries a question for the
// user rather than data for the model.
const ClarificationPrefix = "CLARIFICATION_NEEDED: "

// Clarify asks the user a question. The router ends the turn as soon as
// the model calls it, so Invoke only runs when something replays the call;
// it still produces a well-formed sentinel for that case.
type Clarify struct{}

// Spec implements agent.Tool.
func (Clarify) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: agent.ClarificationTool,
		Description: "Ask the user a clarifying question when their request is ambiguous, " +
			"for example when the game or edition is unclear. Do not guess; ask.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"clarifying_question": map[string]any{
					"type":        "string",
					"description": "The question to put to the user.",
				},
			},
			"required": []string{"clarifying_question"},
		},
	}
}

// Invoke implements agent.Tool.
func (Clarify) Invoke(_ context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	question, _ := req.Arguments["clarifying_question"].(string)
	if strings.TrimSpace(question) == "" {
		question = "Could you clarify your question?"
	}
	return agent.ToolResponse{Content: fmt.Sprintf("%s%s", ClarificationPrefix, question)}, nil
}
