package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hartwell/jobpilot/core"
)

type AnthropicClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	version string
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		baseURL: "https://api.anthropic.com/v1",
		client:  &http.Client{Timeout: 120 * time.Second},
		version: "2023-06-01",
	}
}

func (c *AnthropicClient) Chat(ctx context.Context, model, system, user string) (*ChatResponse, error) {
	msgs := []core.Message{core.NewUserMessage(user)}
	return c.ChatWithTools(ctx, model, system, msgs, nil)
}

func (c *AnthropicClient) ChatWithTools(ctx context.Context, model, system string, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error) {
	messages, err := c.buildMessages(msgs)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"model":      model,
		"max_tokens": 4096,
		"messages":   messages,
	}

	if system != "" {
		reqBody["system"] = system
	}

	if len(tools) > 0 {
		reqBody["tools"] = c.buildTools(tools)
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.version)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return c.parseResponse(result), nil
}

func (c *AnthropicClient) buildMessages(msgs []core.Message) ([]map[string]any, error) {
	messages := make([]map[string]any, 0, len(msgs))

	for _, m := range msgs {
		if m.Role == core.RoleSystem {
			continue
		}
		converted, err := c.convertMessage(m)
		if err != nil {
			return nil, err
		}
		messages = append(messages, converted)
	}

	return messages, nil
}

func (c *AnthropicClient) convertMessage(m core.Message) (map[string]any, error) {
	if m.Role == core.RoleTool {
		return map[string]any{
			"role": "user",
			"content": []map[string]any{{
				"type":        "tool_result",
				"tool_use_id": m.ToolCallID,
				"content":     m.Content,
			}},
		}, nil
	}

	if len(m.ToolCalls) > 0 {
		blocks := make([]map[string]any, 0, len(m.ToolCalls)+1)
		if m.Content != "" {
			blocks = append(blocks, map[string]any{"type": "text", "text": m.Content})
		}
		for _, tc := range m.ToolCalls {
			var input map[string]any
			if len(tc.Arguments) > 0 {
				if err := json.Unmarshal(tc.Arguments, &input); err != nil {
					return nil, fmt.Errorf("tool call %q has malformed arguments: %w", tc.Name, err)
				}
			}
			blocks = append(blocks, map[string]any{
				"type":  "tool_use",
				"id":    tc.ID,
				"name":  tc.Name,
				"input": input,
			})
		}
		return map[string]any{"role": "assistant", "content": blocks}, nil
	}

	return map[string]any{
		"role":    string(m.Role),
		"content": m.Content,
	}, nil
}

func (c *AnthropicClient) buildTools(tools []core.ToolSchema) []map[string]any {
	result := make([]map[string]any, len(tools))
	for i, t := range tools {
		result[i] = map[string]any{
			"name":         t.Name,
			"description":  t.Description,
			"input_schema": json.RawMessage(t.Parameters),
		}
	}
	return result
}

func (c *AnthropicClient) parseResponse(resp anthropicResponse) *ChatResponse {
	result := &ChatResponse{
		FinishReason: resp.StopReason,
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.Content += block.Text
		case "tool_use":
			inputBytes, _ := json.Marshal(block.Input)
			result.ToolCalls = append(result.ToolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: inputBytes,
			})
		}
	}

	return result
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}
