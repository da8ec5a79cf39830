package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// ClarificationTool is the tool name the router treats as a question back
// to the user. It is never executed by the graph; reaching the user is the
// driver's job.
const ClarificationTool = "ask_user_for_clarification"

// State is a node in the agent loop.
type State int

const (
	StateAgent State = iota
	StateTools
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateAgent:
		return "agent"
	case StateTools:
		return "tools"
	case StateEnd:
		return "end"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Route decides the next state from the most recent message alone. A
// clarification call ends the loop even when other calls ride alongside
// it; the user has to answer before any of them can be useful.
func Route(last Message) State {
	if last.Role != RoleAssistant {
		return StateAgent
	}
	if len(last.ToolCalls) == 0 {
		return StateEnd
	}
	for _, call := range last.ToolCalls {
		if call.Name == ClarificationTool {
			return StateEnd
		}
	}
	return StateTools
}

const defaultMaxSteps = 12

// Graph runs the agent/tools loop until Route reaches the end state.
type Graph struct {
	Model    ChatModel
	Catalog  *Catalog
	MaxSteps int
}

// Run advances the loop starting from the agent state and returns the
// extended history. The history grows strictly by appending: one assistant
// message per agent step, one tool message per requested call, in call
// order. An error from the model aborts the turn; tool failures do not,
// they come back as tool message content.
func (g *Graph) Run(ctx context.Context, history []Message) ([]Message, error) {
	maxSteps := g.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	state := StateAgent
	for step := 0; step < maxSteps; step++ {
		switch state {
		case StateAgent:
			msg, err := g.Model.Chat(ctx, history, g.Catalog.Specs())
			if err != nil {
				return history, err
			}
			history = append(history, msg)
			state = Route(msg)
		case StateTools:
			last := history[len(history)-1]
			for _, call := range last.ToolCalls {
				history = append(history, g.execute(ctx, call))
			}
			state = StateAgent
		case StateEnd:
			return history, nil
		}
	}
	return history, fmt.Errorf("agent loop did not finish within %d steps", maxSteps)
}

// execute runs one tool call. Every failure path produces a tool message
// tied to the call ID so the model always sees a result for every call it
// made.
func (g *Graph) execute(ctx context.Context, call ToolCall) Message {
	tool, _, ok := g.Catalog.Lookup(call.Name)
	if !ok {
		return ToolResultMessage(call.ID, fmt.Sprintf("Error: unknown tool %q.", call.Name))
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return ToolResultMessage(call.ID, fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err))
		}
	}

	resp, err := tool.Invoke(ctx, ToolRequest{CallID: call.ID, Arguments: args})
	if err != nil {
		return ToolResultMessage(call.ID, fmt.Sprintf("Error executing %s: %v", call.Name, err))
	}
	return ToolResultMessage(call.ID, resp.Content)
}
