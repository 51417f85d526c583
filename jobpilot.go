// Package jobpilot provides an LLM-backed assistant for tracking and
// applying to jobs: job analysis, resume optimization, cover letter
// generation, company research, and match scoring over a per-user job and
// document store.
//
// Example usage:
//
//	client := jobpilot.NewUnifiedClient(jobpilot.UnifiedConfig{
//	    OpenAIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	stores, _ := store.NewStores("data/jobpilot.db")
//	srv, _ := jobpilot.NewServer(jobpilot.ServerConfig{
//	    Client: client,
//	    Stores: stores,
//	    Model:  "gpt-4",
//	})
//	http.ListenAndServe(":8000", srv.Handler())
package jobpilot

import (
	"github.com/hartwell/jobpilot/assistant"
	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/monitor"
	"github.com/hartwell/jobpilot/server"
	"github.com/hartwell/jobpilot/tools"
)

// LLM client aliases
type (
	LLMClient     = llm.Client
	UnifiedClient = llm.UnifiedClient
	UnifiedConfig = llm.UnifiedConfig
	ModelAdapter  = llm.Adapter
	RetryPolicy   = llm.RetryPolicy
)

// NewUnifiedClient creates a provider client that auto-routes by model name.
func NewUnifiedClient(cfg UnifiedConfig) *UnifiedClient {
	return llm.NewUnifiedClient(cfg)
}

// Server aliases
type (
	Server       = server.Server
	ServerConfig = server.Config
)

// NewServer creates the HTTP server for the assistant and portal API.
func NewServer(cfg ServerConfig) (*Server, error) {
	return server.New(cfg)
}

// Assistant aliases
type (
	Session       = assistant.Session
	Dispatcher    = assistant.Dispatcher
	PromptBuilder = assistant.PromptBuilder
)

// Tool aliases
type (
	Tool         = tools.Tool
	ToolRegistry = tools.Registry
)

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return tools.NewRegistry()
}

// Core type aliases
type (
	Message        = core.Message
	MessageRole    = core.MessageRole
	ToolCall       = core.ToolCall
	ToolResult     = core.ToolResult
	ModelConfig    = core.ModelConfig
	AssistantError = core.AssistantError
)

// Monitor aliases
type (
	MetricsCollector  = monitor.MetricsCollector
	InMemoryCollector = monitor.InMemoryCollector
	ChatMetrics       = monitor.ChatMetrics
)
