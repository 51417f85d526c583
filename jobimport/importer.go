package jobimport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/store"
)

const extractionPrompt = `You are an extraction agent. Given the text of a job posting page, extract:

- company_name
- job_title
- job_description: the complete description text, word for word, without page headers and footers. Include everything a candidate would care about: the company, role, tasks, skills, pay, location details, and application or benefit information.
- location: city and country, for example "New York, USA"
- salary: the salary range if stated, for example "$100,000 - $120,000 per year"

Return only a JSON object with those five keys. Use an empty string for anything the page does not state.`

// Importer turns a job posting URL into a tracked job: it fetches the page,
// extracts the structured fields with the model, and stores the result.
type Importer struct {
	fetcher  Fetcher
	fallback Fetcher
	client   llm.Client
	model    string
	jobs     store.JobStore
	logger   *slog.Logger
}

// NewImporter builds an importer. fallback may be nil; when set it is tried
// after the primary fetcher fails.
func NewImporter(fetcher, fallback Fetcher, client llm.Client, model string, jobs store.JobStore, logger *slog.Logger) *Importer {
	return &Importer{
		fetcher:  fetcher,
		fallback: fallback,
		client:   client,
		model:    model,
		jobs:     jobs,
		logger:   logger,
	}
}

type extractedJob struct {
	CompanyName    string `json:"company_name"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	Location       string `json:"location"`
	Salary         string `json:"salary"`
}

// Import fetches url, extracts the posting, and creates a job record for
// userID. The stored record is returned with its assigned ID.
func (i *Importer) Import(ctx context.Context, userID int64, url string) (store.JobRecord, error) {
	content, err := i.fetcher.Fetch(ctx, url)
	if err != nil && i.fallback != nil {
		i.logger.Warn("primary fetch failed, trying fallback", "url", url, "error", err)
		content, err = i.fallback.Fetch(ctx, url)
	}
	if err != nil {
		return store.JobRecord{}, fmt.Errorf("fetch %s: %w", url, err)
	}

	resp, err := i.client.Chat(ctx, i.model, extractionPrompt, content)
	if err != nil {
		return store.JobRecord{}, fmt.Errorf("extract job fields: %w", err)
	}

	var extracted extractedJob
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &extracted); err != nil {
		return store.JobRecord{}, fmt.Errorf("parse extraction response: %w", err)
	}
	if extracted.CompanyName == "" && extracted.JobTitle == "" {
		return store.JobRecord{}, fmt.Errorf("extraction found no job in page content")
	}

	job := store.JobRecord{
		UserID:         userID,
		CompanyName:    extracted.CompanyName,
		JobTitle:       extracted.JobTitle,
		JobDescription: extracted.JobDescription,
		ApplicationURL: url,
		Status:         "Not applied",
		Location:       extracted.Location,
		Salary:         extracted.Salary,
		AddedAt:        time.Now(),
	}

	id, err := i.jobs.CreateJob(ctx, job)
	if err != nil {
		return store.JobRecord{}, fmt.Errorf("store imported job: %w", err)
	}
	job.ID = id

	i.logger.Info("imported job",
		"user", userID,
		"job", id,
		"company", job.CompanyName,
		"title", job.JobTitle,
	)
	return job, nil
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
