package agent

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model. Arguments is the
// raw JSON blob exactly as the model produced it; it is validated at the
// tool boundary, not here.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry in the conversation history threaded through the
// graph. Assistant messages may carry tool calls; tool messages answer a
// specific call via ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// UserMessage wraps plain user text.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage wraps a plain assistant reply.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ToolResultMessage ties a tool's output back to the call that produced it.
func ToolResultMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}
