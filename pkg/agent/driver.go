package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// TurnKind classifies what a completed turn produced.
type TurnKind int

const (
	// TurnResponse is a final assistant answer.
	TurnResponse TurnKind = iota
	// TurnClarification is a question back to the user; the conversation
	// is paused until they answer.
	TurnClarification
	// TurnError means the turn failed and the history was left as it was
	// before the turn started.
	TurnError
)

const fallbackResponse = "Sorry, I couldn't determine the next step."

// Turn is the outcome of driving one user input through the graph.
type Turn struct {
	Kind    TurnKind
	Content string

	// CallID and PendingMessage are set for clarification turns. The
	// pending assistant message already sits at the end of History;
	// resuming only needs the tool result appended.
	CallID         string
	PendingMessage Message

	// History is the conversation after this turn. For error turns it is
	// the unchanged input history.
	History []Message
}

// Driver turns user text into completed turns.
type Driver struct {
	Graph *Graph
}

// NewDriver wires a driver over a model and tool catalog.
func NewDriver(model ChatModel, catalog *Catalog) *Driver {
	return &Driver{Graph: &Graph{Model: model, Catalog: catalog}}
}

// Send appends the user's input to the history and runs a turn.
func (d *Driver) Send(ctx context.Context, history []Message, input string) Turn {
	return d.run(ctx, append(cloneHistory(history), UserMessage(input)))
}

// Resume answers a pending clarification and runs the turn to completion.
// The tool result is appended directly after the asking assistant message,
// which resume expects to be the last entry of history (as left there by
// the clarification Turn). If it is not, the pending message is appended
// first so the call and its result stay adjacent.
func (d *Driver) Resume(ctx context.Context, history []Message, pending Message, callID, reply string) Turn {
	out := cloneHistory(history)
	if !endsWithCall(out, callID) {
		out = append(out, pending)
	}
	out = append(out, ToolResultMessage(callID, reply))
	return d.run(ctx, out)
}

func (d *Driver) run(ctx context.Context, history []Message) Turn {
	before := history[:len(history):len(history)]
	out, err := d.Graph.Run(ctx, history)
	if err != nil {
		return Turn{
			Kind:    TurnError,
			Content: fmt.Sprintf("The assistant ran into a problem: %v", err),
			History: before,
		}
	}
	if len(out) == 0 {
		return Turn{Kind: TurnResponse, Content: fallbackResponse, History: out}
	}

	last := out[len(out)-1]
	if last.Role == RoleAssistant {
		if call, ok := clarificationCall(last); ok {
			question, err := clarifyingQuestion(call.Arguments)
			if err != nil {
				return Turn{
					Kind:    TurnError,
					Content: fmt.Sprintf("The assistant asked for clarification but the request could not be read: %v", err),
					History: before,
				}
			}
			return Turn{
				Kind:           TurnClarification,
				Content:        question,
				CallID:         call.ID,
				PendingMessage: last,
				History:        out,
			}
		}
		if len(last.ToolCalls) == 0 && strings.TrimSpace(last.Content) != "" {
			return Turn{Kind: TurnResponse, Content: last.Content, History: out}
		}
	}
	return Turn{Kind: TurnResponse, Content: fallbackResponse, History: out}
}

func clarificationCall(m Message) (ToolCall, bool) {
	for _, call := range m.ToolCalls {
		if call.Name == ClarificationTool {
			return call, true
		}
	}
	return ToolCall{}, false
}

func clarifyingQuestion(rawArgs string) (string, error) {
	var args struct {
		ClarifyingQuestion string `json:"clarifying_question"`
	}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(args.ClarifyingQuestion) == "" {
		return "Could you clarify your question?", nil
	}
	return args.ClarifyingQuestion, nil
}

func endsWithCall(history []Message, callID string) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	if last.Role != RoleAssistant {
		return false
	}
	for _, call := range last.ToolCalls {
		if call.ID == callID {
			return true
		}
	}
	return false
}

func cloneHistory(history []Message) []Message {
	return append([]Message(nil), history...)
}
