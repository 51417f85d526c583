package core

import "encoding/json"

// ToolCall is a model-issued request to invoke a named tool with raw JSON
// arguments. The ID pairs the request with its result message.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult carries one tool invocation's outcome back to the model.
// IsError marks failures so the model can recover in its next turn instead
// of the whole exchange aborting.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ToolSchema is the provider-neutral description of a tool: its name, what
// it does, and a JSON Schema for its arguments. Provider clients translate
// it into their own wire shape.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

func NewToolResult(toolCallID, content string) ToolResult {
	return ToolResult{ToolCallID: toolCallID, Content: content}
}

// NewToolError wraps a failure message as a result the model can read.
func NewToolError(toolCallID, errMsg string) ToolResult {
	return ToolResult{ToolCallID: toolCallID, Content: errMsg, IsError: true}
}
