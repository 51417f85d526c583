package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hartwell/jobpilot/config"
	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/store"
)

// CoverLetterGenerator drafts a personalized cover letter for a tracked job
// using the model, the user's preferred resume, and the configured style.
// The generated letter is saved to the document store so it shows up in the
// user's documents alongside uploads.
type CoverLetterGenerator struct {
	jobs   store.JobStore
	docs   store.DocumentStore
	client llm.Client
	model  string
	style  config.CoverLetterStyle
	userID int64
}

type coverLetterArgs struct {
	JobID          int64  `json:"job_id"`
	CompanyName    string `json:"company_name,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
}

func NewCoverLetterGenerator(jobs store.JobStore, docs store.DocumentStore, client llm.Client, model string, style config.CoverLetterStyle, userID int64) *CoverLetterGenerator {
	return &CoverLetterGenerator{
		jobs:   jobs,
		docs:   docs,
		client: client,
		model:  model,
		style:  style,
		userID: userID,
	}
}

func (t *CoverLetterGenerator) Name() string {
	return "generate_cover_letter"
}

func (t *CoverLetterGenerator) Description() string {
	return "Generate a personalized cover letter for a tracked job, following the user's style preferences"
}

func (t *CoverLetterGenerator) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"job_id": {
				"type": "integer",
				"description": "ID of the tracked job"
			},
			"company_name": {
				"type": "string",
				"description": "Company name; overrides the stored value"
			},
			"job_title": {
				"type": "string",
				"description": "Job title; overrides the stored value"
			},
			"job_description": {
				"type": "string",
				"description": "Job description text; overrides the stored value"
			}
		},
		"required": ["job_id"]
	}`)
}

func (t *CoverLetterGenerator) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params coverLetterArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	company, title, description := params.CompanyName, params.JobTitle, params.JobDescription
	if company == "" || title == "" || description == "" {
		job, err := t.jobs.GetJob(ctx, t.userID, params.JobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Sprintf("No job found with ID %d", params.JobID), nil
			}
			return "", fmt.Errorf("load job %d: %w", params.JobID, err)
		}
		if company == "" {
			company = job.CompanyName
		}
		if title == "" {
			title = job.JobTitle
		}
		if description == "" {
			description = job.JobDescription
		}
	}

	resumeText := ""
	if doc, err := t.docs.GetPreferredResume(ctx, t.userID); err == nil {
		resumeText = doc.Content
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("load preferred resume: %w", err)
	}

	resp, err := t.client.Chat(ctx, t.model, t.systemPrompt(), t.userPrompt(company, title, description, resumeText))
	if err != nil {
		return "", fmt.Errorf("generate cover letter: %w", err)
	}

	letter, truncated := enforceWordLimit(resp.Content, t.style.MaxWords)

	name := fmt.Sprintf("Cover Letter - %s - %s", company, title)
	if _, err := t.docs.SaveDocument(ctx, t.userID, store.DocCoverLetter, name, letter); err != nil {
		return "", fmt.Errorf("save cover letter: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Cover letter for %s - %s** (saved to your documents)\n\n", company, title)
	b.WriteString(letter)
	if truncated {
		fmt.Fprintf(&b, "\n\n*Note: trimmed to the configured %d-word limit.*", t.style.MaxWords)
	}
	if flagged := t.bannedPhrasesUsed(letter); len(flagged) > 0 {
		fmt.Fprintf(&b, "\n\n*Note: review these phrases you asked to avoid: %s.*", strings.Join(flagged, "; "))
	}
	return b.String(), nil
}

func (t *CoverLetterGenerator) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You write cover letters for job applications.\n")

	switch t.style.Tone {
	case config.ToneFormal:
		b.WriteString("Use a formal, professional tone.\n")
	default:
		b.WriteString("Use a conversational, genuine tone. Write like a person, not a template.\n")
	}

	if t.style.MaxWords > 0 {
		fmt.Fprintf(&b, "Keep the letter under %d words.\n", t.style.MaxWords)
	}
	if len(t.style.BannedPhrases) > 0 {
		fmt.Fprintf(&b, "Never use these phrases: %s.\n", strings.Join(t.style.BannedPhrases, "; "))
	}
	if len(t.style.Structure) > 0 {
		fmt.Fprintf(&b, "Structure: %s.\n", strings.Join(t.style.Structure, ", then "))
	}
	if t.style.SignOff != "" {
		fmt.Fprintf(&b, "Sign off with: %s\n", t.style.SignOff)
	}
	b.WriteString("Output only the letter itself, no commentary.")
	return b.String()
}

func (t *CoverLetterGenerator) userPrompt(company, title, description, resumeText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\nPosition: %s\n\nJob description:\n%s\n", company, title, description)
	if resumeText != "" {
		fmt.Fprintf(&b, "\nMy resume:\n%s\n", resumeText)
	}
	return b.String()
}

func (t *CoverLetterGenerator) bannedPhrasesUsed(letter string) []string {
	lower := strings.ToLower(letter)
	var flagged []string
	for _, phrase := range t.style.BannedPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			flagged = append(flagged, phrase)
		}
	}
	return flagged
}

// enforceWordLimit trims text to at most maxWords words, reporting whether
// anything was removed. maxWords <= 0 disables the limit.
func enforceWordLimit(text string, maxWords int) (string, bool) {
	if maxWords <= 0 {
		return text, false
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text, false
	}
	return strings.Join(words[:maxWords], " "), true
}
