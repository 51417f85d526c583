package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hartwell/jobpilot/store"
)

// JobAnalyzer reads a tracked job from the store and reports its key
// requirements, mentioned skills, and seniority band.
type JobAnalyzer struct {
	jobs   store.JobStore
	userID int64
}

type jobAnalyzerArgs struct {
	JobID int64 `json:"job_id"`
}

func NewJobAnalyzer(jobs store.JobStore, userID int64) *JobAnalyzer {
	return &JobAnalyzer{jobs: jobs, userID: userID}
}

func (t *JobAnalyzer) Name() string {
	return "analyze_job"
}

func (t *JobAnalyzer) Description() string {
	return "Analyze a tracked job posting to extract key requirements, skills, and insights"
}

func (t *JobAnalyzer) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"job_id": {
				"type": "integer",
				"description": "ID of the job to analyze"
			}
		},
		"required": ["job_id"]
	}`)
}

func (t *JobAnalyzer) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params jobAnalyzerArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	job, err := t.jobs.GetJob(ctx, t.userID, params.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Sprintf("No job found with ID %d", params.JobID), nil
		}
		return "", fmt.Errorf("load job %d: %w", params.JobID, err)
	}

	requirements := extractRequirements(job.JobDescription)
	skills := extractSkills(job.JobDescription, 8)

	var b strings.Builder
	fmt.Fprintf(&b, "**Job Analysis for %s - %s**\n\n", job.CompanyName, job.JobTitle)

	b.WriteString("**Key Requirements:**\n")
	if len(requirements) == 0 {
		b.WriteString("- None clearly identified\n")
	}
	for _, req := range requirements {
		fmt.Fprintf(&b, "- %s\n", req)
	}

	b.WriteString("\n**Technical Skills Mentioned:** ")
	if len(skills) == 0 {
		b.WriteString("None specifically mentioned")
	} else {
		b.WriteString(strings.Join(skills, ", "))
	}

	fmt.Fprintf(&b, "\n\n**Experience Level:** %s\n", experienceLevel(job.JobDescription))
	fmt.Fprintf(&b, "**Location:** %s\n", orDefault(job.Location, "Not specified"))
	fmt.Fprintf(&b, "**Salary:** %s\n", orDefault(job.Salary, "Not specified"))
	fmt.Fprintf(&b, "**Current Status:** %s\n", orDefault(job.Status, "Not applied"))
	fmt.Fprintf(&b, "\n**Job Description Length:** %d characters", len(job.JobDescription))

	return b.String(), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
