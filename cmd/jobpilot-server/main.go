package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/hartwell/jobpilot/config"
	"github.com/hartwell/jobpilot/jobimport"
	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/logger"
	"github.com/hartwell/jobpilot/monitor"
	"github.com/hartwell/jobpilot/server"
	"github.com/hartwell/jobpilot/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "jobpilot-server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	style, err := config.LoadCoverLetterStyle(cfg.StyleFile)
	if err != nil {
		return err
	}

	basePrompt := ""
	if cfg.Assistant.SystemPromptFile != "" {
		data, err := os.ReadFile(cfg.Assistant.SystemPromptFile)
		if err != nil {
			return fmt.Errorf("read system prompt: %w", err)
		}
		basePrompt = string(data)
	}

	stores, err := store.NewStores(cfg.Database.DSN)
	if err != nil {
		return err
	}

	client := llm.NewUnifiedClient(llm.UnifiedConfig{
		OpenAIKey:     cfg.LLM.OpenAIKey,
		OpenAIBaseURL: cfg.LLM.OpenAIBaseURL,
		AnthropicKey:  cfg.LLM.AnthropicKey,
		OllamaURL:     cfg.LLM.OllamaURL,
	})

	var importer *jobimport.Importer
	if cfg.Import.ScrapeAPIKey != "" {
		primary := jobimport.NewScrapeAPIFetcher(cfg.Import.ScrapeAPIKey, cfg.Import.ScrapeAPIURL)
		importer = jobimport.NewImporter(primary, jobimport.NewHTTPFetcher(), client, cfg.LLM.Model, stores.Jobs, log)
	} else {
		importer = jobimport.NewImporter(jobimport.NewHTTPFetcher(), nil, client, cfg.LLM.Model, stores.Jobs, log)
	}

	srv, err := server.New(server.Config{
		Client:     client,
		Stores:     stores,
		Model:      cfg.LLM.Model,
		Style:      style,
		Assistant:  cfg.Assistant,
		Importer:   importer,
		Metrics:    monitor.NewInMemoryCollector(),
		Logger:     log,
		BasePrompt: basePrompt,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	log.Info("starting jobpilot server", "addr", cfg.Server.Addr, "model", cfg.LLM.Model)
	return http.ListenAndServe(cfg.Server.Addr, srv.Handler())
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		applyEnv(cfg)
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets API keys come from the environment so they stay out of
// config files.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.AnthropicKey = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.LLM.OllamaURL = v
	}
	if v := os.Getenv("SCRAPE_API_KEY"); v != "" {
		cfg.Import.ScrapeAPIKey = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}
