package llm

import (
	"context"

	"github.com/hartwell/jobpilot/core"
)

// Client is a raw chat-completion provider. Implementations perform one HTTP
// round-trip per call; retry, timeout and availability policy live in Adapter.
type Client interface {
	Chat(ctx context.Context, model, system, user string) (*ChatResponse, error)
	ChatWithTools(ctx context.Context, model, system string, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout int
}
