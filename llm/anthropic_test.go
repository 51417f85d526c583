package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartwell/jobpilot/core"
)

func TestAnthropicConvertMessageToolUse(t *testing.T) {
	c := NewAnthropicClient("key")
	msg := core.Message{
		Role:    core.RoleAssistant,
		Content: "thinking",
		ToolCalls: []core.ToolCall{{
			ID:        "call_1",
			Name:      "analyze_job",
			Arguments: json.RawMessage(`{"job_id": 3}`),
		}},
	}

	converted, err := c.convertMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "assistant", converted["role"])

	blocks, ok := converted["content"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, blocks, 2)
	assert.Equal(t, "text", blocks[0]["type"])
	assert.Equal(t, "tool_use", blocks[1]["type"])
	assert.Equal(t, "analyze_job", blocks[1]["name"])
	assert.Equal(t, map[string]any{"job_id": float64(3)}, blocks[1]["input"])
}

func TestAnthropicConvertMessageRejectsMalformedArguments(t *testing.T) {
	c := NewAnthropicClient("key")
	msg := core.NewToolCallMessage([]core.ToolCall{{
		ID:        "call_1",
		Name:      "analyze_job",
		Arguments: json.RawMessage(`{not json`),
	}})

	_, err := c.convertMessage(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze_job")
	assert.Contains(t, err.Error(), "malformed arguments")
}

func TestAnthropicConvertMessageToolResult(t *testing.T) {
	c := NewAnthropicClient("key")
	msg := core.NewToolMessage("call_1", "result text")

	converted, err := c.convertMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "user", converted["role"])

	blocks, ok := converted["content"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, blocks, 1)
	assert.Equal(t, "tool_result", blocks[0]["type"])
	assert.Equal(t, "call_1", blocks[0]["tool_use_id"])
}
