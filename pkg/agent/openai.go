package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultChatModel = openai.GPT4TurboPreview

const defaultSystemPrompt = "You are a board game rules assistant. Answer questions " +
	"about game rules using the manual search tool, look up game metadata on " +
	"BoardGameGeek when asked about a game in general, and ask the user for " +
	"clarification when their question is ambiguous. Cite the manual passages " +
	"you relied on."

// OpenAIChat implements ChatModel on the OpenAI chat completions API with
// function tools attached.
type OpenAIChat struct {
	client       *openai.Client
	model        string
	temperature  float32
	systemPrompt string
}

// OpenAIChatOption customizes an OpenAIChat.
type OpenAIChatOption func(*OpenAIChat)

// WithChatModel overrides the completion model.
func WithChatModel(model string) OpenAIChatOption {
	return func(o *OpenAIChat) {
		if model != "" {
			o.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) OpenAIChatOption {
	return func(o *OpenAIChat) { o.temperature = t }
}

// WithSystemPrompt replaces the default system prompt. An empty prompt
// disables the system message entirely.
func WithSystemPrompt(prompt string) OpenAIChatOption {
	return func(o *OpenAIChat) { o.systemPrompt = prompt }
}

// NewOpenAIChat builds a chat model from an API key.
func NewOpenAIChat(apiKey string, opts ...OpenAIChatOption) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	o := &OpenAIChat{
		client:       openai.NewClientWithConfig(cfg),
		model:        defaultChatModel,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Chat sends the history plus tool specs and maps the top choice back into
// the local message shape.
func (o *OpenAIChat) Chat(ctx context.Context, history []Message, tools []ToolSpec) (Message, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if o.systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: o.systemPrompt,
		})
	}
	for _, m := range history {
		msgs = append(msgs, toOpenAIMessage(m))
	}

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: o.temperature,
	}
	for _, spec := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Message{}, errors.New("chat completion returned no choices")
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{Content: m.Content}
	switch m.Role {
	case RoleAssistant:
		out.Role = openai.ChatMessageRoleAssistant
		for _, tc := range m.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
	case RoleTool:
		out.Role = openai.ChatMessageRoleTool
		out.ToolCallID = m.ToolCallID
	default:
		out.Role = openai.ChatMessageRoleUser
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) Message {
	out := Message{Role: RoleAssistant, Content: m.Content}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}
