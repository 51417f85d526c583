package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hartwell/jobpilot/core"
)

// ErrNoProvider is returned when a chat request names a model whose provider
// has no credentials configured.
var ErrNoProvider = errors.New("no provider configured")

// UnifiedClient routes chat calls to a provider based on the model name
// prefix: claude-* to Anthropic, gpt-*/o1-* to OpenAI, ollama/* to a local
// OpenAI-compatible endpoint.
type UnifiedClient struct {
	openai    *OpenAIClient
	anthropic *AnthropicClient
	ollama    *OpenAIClient
}

type UnifiedConfig struct {
	OpenAIKey     string
	OpenAIBaseURL string
	AnthropicKey  string
	OllamaURL     string
}

func NewUnifiedClient(cfg UnifiedConfig) *UnifiedClient {
	u := &UnifiedClient{}

	if cfg.OpenAIKey != "" {
		u.openai = NewOpenAIClientWithConfig(ClientConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}

	if cfg.AnthropicKey != "" {
		u.anthropic = NewAnthropicClient(cfg.AnthropicKey)
	}

	if cfg.OllamaURL != "" {
		u.ollama = NewOpenAIClientWithConfig(ClientConfig{BaseURL: cfg.OllamaURL})
	}

	return u
}

func (u *UnifiedClient) Chat(ctx context.Context, model, system, user string) (*ChatResponse, error) {
	client, resolvedModel, err := u.resolveClient(model)
	if err != nil {
		return nil, err
	}
	return client.Chat(ctx, resolvedModel, system, user)
}

func (u *UnifiedClient) ChatWithTools(ctx context.Context, model, system string, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error) {
	client, resolvedModel, err := u.resolveClient(model)
	if err != nil {
		return nil, err
	}
	return client.ChatWithTools(ctx, resolvedModel, system, msgs, tools)
}

// resolveClient picks the provider for a model name. A recognized prefix
// whose provider is not configured is an error, not a fallthrough: a
// claude-* request must never be served by another provider. The nil checks
// stay on the concrete pointers so an unconfigured provider is never wrapped
// into a non-nil Client interface.
func (u *UnifiedClient) resolveClient(model string) (Client, string, error) {
	switch {
	case strings.HasPrefix(model, "claude-"):
		if u.anthropic == nil {
			return nil, "", fmt.Errorf("%w for model %q", ErrNoProvider, model)
		}
		return u.anthropic, model, nil
	case strings.HasPrefix(model, "gpt-"), strings.HasPrefix(model, "o1-"):
		if u.openai == nil {
			return nil, "", fmt.Errorf("%w for model %q", ErrNoProvider, model)
		}
		return u.openai, model, nil
	case strings.HasPrefix(model, "ollama/"):
		if u.ollama == nil {
			return nil, "", fmt.Errorf("%w for model %q", ErrNoProvider, model)
		}
		return u.ollama, strings.TrimPrefix(model, "ollama/"), nil
	}
	return u.defaultClient(model)
}

// defaultClient handles model names with no recognized prefix by picking the
// first configured provider.
func (u *UnifiedClient) defaultClient(model string) (Client, string, error) {
	switch {
	case u.openai != nil:
		return u.openai, model, nil
	case u.anthropic != nil:
		return u.anthropic, model, nil
	case u.ollama != nil:
		return u.ollama, model, nil
	}
	return nil, "", fmt.Errorf("%w for model %q", ErrNoProvider, model)
}

func (u *UnifiedClient) HasOpenAI() bool {
	return u.openai != nil
}

func (u *UnifiedClient) HasAnthropic() bool {
	return u.anthropic != nil
}

func (u *UnifiedClient) HasOllama() bool {
	return u.ollama != nil
}
