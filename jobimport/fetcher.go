package jobimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves the text content of a job posting page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

const maxFetchBytes = 1 << 20

// HTTPFetcher pulls a page with a plain GET. Works for static postings;
// JavaScript-rendered boards need the scrape API instead.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// ScrapeAPIFetcher uses a hosted scraping service that renders JavaScript
// and returns the main page content as markdown.
type ScrapeAPIFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewScrapeAPIFetcher(apiKey, baseURL string) *ScrapeAPIFetcher {
	if baseURL == "" {
		baseURL = "https://api.firecrawl.dev/v1"
	}
	return &ScrapeAPIFetcher{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	} `json:"data"`
}

func (f *ScrapeAPIFetcher) Fetch(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
		WaitFor:         2000,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape API status %d: %s", resp.StatusCode, string(body))
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse scrape response: %w", err)
	}
	if !parsed.Success {
		return "", fmt.Errorf("scrape API error: %s", parsed.Error)
	}

	content := parsed.Data.Markdown
	if content == "" {
		content = parsed.Data.HTML
	}
	if len(content) < 100 {
		return "", fmt.Errorf("scraped content too short (%d chars)", len(content))
	}
	return content, nil
}
