package provider

import "encoding/json"

type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	FinishLength    FinishReason = "length"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Message struct {
	Role    Role
	Content []ContentPart

	// ToolCallID is used for tool result messages (role=tool) to associate the
	// result with a prior tool call.
	ToolCallID string
}

type ContentPart interface {
	isContentPart()
}

type TextPart struct{ Text string }

func (TextPart) isContentPart() {}

// ToolCallPart is a tool invocation requested by the model. Args is the raw
// arguments string exactly as the model produced it; it may be empty or
// malformed.
type ToolCallPart struct {
	ID   string
	Name string
	Args string
}

func (ToolCallPart) isContentPart() {}

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Text builds a message holding a single text part.
func Text(role Role, text string) Message {
	return Message{Role: role, Content: []ContentPart{TextPart{Text: text}}}
}

// ToolResult builds a role=tool message answering toolCallID.
func ToolResult(toolCallID, text string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: []ContentPart{TextPart{Text: text}}}
}
