// Package provider defines the chat-completion contract shared by the model
// backends.
package provider

import "context"

// Provider produces one assistant message per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type Request struct {
	Model string

	Messages []Message
	// Tools are offered to the model. When empty no tools or tool choice are
	// sent.
	Tools []ToolDefinition
	// ToolChoice is sent only alongside Tools. Empty means "auto".
	ToolChoice string

	MaxTokens   *int
	Temperature *float64
}

type Response struct {
	Message      Message
	Usage        Usage
	FinishReason FinishReason
}

// Text concatenates the text parts of the response message.
func (r Response) Text() string {
	var s string
	for _, p := range r.Message.Content {
		if t, ok := p.(TextPart); ok {
			s += t.Text
		}
	}
	return s
}

// ToolCalls returns the tool calls of the response message in order.
func (r Response) ToolCalls() []ToolCallPart {
	var out []ToolCallPart
	for _, p := range r.Message.Content {
		if tc, ok := p.(ToolCallPart); ok {
			out = append(out, tc)
		}
	}
	return out
}
