package agent

import "context"

// ToolSpec describes a tool to the model. Parameters is a JSON-schema
// object passed through to the chat API verbatim.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolRequest carries the decoded arguments of one tool call.
type ToolRequest struct {
	CallID    string
	Arguments map[string]any
}

// ToolResponse is the text fed back to the model. Tool output becomes model
// input, so implementations convert their own failures into descriptive
// Content instead of returning an error wherever the conversation can
// usefully continue.
type ToolResponse struct {
	Content string
}

// Tool is a callable operation exposed to the agent.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}
