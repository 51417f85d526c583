package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hartwell/jobpilot/assistant"
	"github.com/hartwell/jobpilot/config"
	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/jobimport"
	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/monitor"
	"github.com/hartwell/jobpilot/store"
	"github.com/hartwell/jobpilot/tools"
)

// Config configures a new Server instance.
type Config struct {
	Client    llm.Client
	Stores    *store.Stores
	Model     string
	Style     config.CoverLetterStyle
	Assistant config.AssistantConfig
	Importer  *jobimport.Importer // optional; nil disables the import endpoint
	Metrics   monitor.MetricsCollector
	Logger    *slog.Logger

	// BasePrompt overrides the built-in assistant instructions.
	BasePrompt string
}

// Server is the HTTP surface of the job application assistant.
type Server struct {
	client   llm.Client
	stores   *store.Stores
	model    string
	style    config.CoverLetterStyle
	acfg     config.AssistantConfig
	importer *jobimport.Importer
	metrics  monitor.MetricsCollector
	logger   *slog.Logger

	adapter    *llm.Adapter
	counter    assistant.TokenCounter
	sessions   *sessionManager
	basePrompt string
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("server: llm client is required")
	}
	if cfg.Stores == nil {
		return nil, fmt.Errorf("server: stores are required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitor.NewNoOpCollector()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var counter assistant.TokenCounter
	counter, err := assistant.NewTiktokenCounter(cfg.Model)
	if err != nil {
		cfg.Logger.Warn("token encoding unavailable, using heuristic counter", "error", err)
		counter = assistant.HeuristicCounter{}
	}

	retry := llm.DefaultRetryPolicy()
	if cfg.Assistant.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.Assistant.MaxAttempts
	}
	adapter := llm.NewAdapter(cfg.Client, llm.AdapterConfig{
		Model:         core.DefaultModelConfig(cfg.Model),
		Retry:         retry,
		CallTimeout:   cfg.Assistant.RequestTimeout,
		RatePerMinute: cfg.Assistant.RatePerMinute,
	}, cfg.Logger)

	return &Server{
		client:     cfg.Client,
		stores:     cfg.Stores,
		model:      cfg.Model,
		style:      cfg.Style,
		acfg:       cfg.Assistant,
		importer:   cfg.Importer,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		adapter:    adapter,
		counter:    counter,
		sessions:   newSessionManager(),
		basePrompt: cfg.BasePrompt,
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	return s.stores.Close()
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tools", s.handleTools)

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleSessionReset)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleSessionDelete)

	mux.HandleFunc("GET /jobs", s.handleJobList)
	mux.HandleFunc("POST /jobs", s.handleJobCreate)
	mux.HandleFunc("GET /jobs/{id}", s.handleJobGet)
	mux.HandleFunc("PATCH /jobs/{id}/status", s.handleJobStatus)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleJobDelete)

	mux.HandleFunc("GET /documents", s.handleDocumentList)
	mux.HandleFunc("POST /documents", s.handleDocumentCreate)
	mux.HandleFunc("POST /documents/{id}/preferred", s.handleDocumentPrefer)

	mux.HandleFunc("GET /goals", s.handleGoalsGet)
	mux.HandleFunc("POST /goals", s.handleGoalsSave)

	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("GET /metrics/summary", s.handleMetricsSummary)

	return corsMiddleware(mux)
}

// newSession builds a session and its dispatcher for one user. Tools are
// bound to the user so every database read inside a tool is scoped.
func (s *Server) newSession(userID int64) (*assistant.Session, error) {
	registry, err := s.buildRegistry(userID)
	if err != nil {
		return nil, err
	}

	prompts := assistant.NewPromptBuilder(s.stores, s.counter, s.acfg.TokenBudget, s.basePrompt)
	dispatcher := assistant.NewDispatcher(s.adapter, registry, prompts, s.metrics, s.logger, s.acfg.MaxRounds)

	session := assistant.NewSession(userID)
	s.sessions.add(session, dispatcher)
	return session, nil
}

func (s *Server) buildRegistry(userID int64) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	toolSet := []tools.Tool{
		tools.NewJobAnalyzer(s.stores.Jobs, userID),
		tools.NewResumeOptimizer(s.stores.Documents, userID),
		tools.NewCoverLetterGenerator(s.stores.Jobs, s.stores.Documents, s.client, s.model, s.style, userID),
		tools.NewCompanyResearcher(s.client, s.model),
		tools.NewJobMatcher(s.stores.Jobs, s.stores.Documents, userID),
	}

	for _, t := range toolSet {
		wrapped, err := tools.WithSchemaValidation(t)
		if err != nil {
			return nil, fmt.Errorf("wrap tool %s: %w", t.Name(), err)
		}
		if err := registry.Register(wrapped); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
