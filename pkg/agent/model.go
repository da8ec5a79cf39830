package agent

import "context"

// ChatModel produces the assistant's next message given the running
// conversation and the tools it may call.
type ChatModel interface {
	Chat(ctx context.Context, history []Message, tools []ToolSpec) (Message, error)
}
