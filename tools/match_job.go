package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hartwell/jobpilot/store"
)

// JobMatcher scores how well the user's preferred resume matches a tracked
// job posting and lists strengths and gaps.
type JobMatcher struct {
	jobs   store.JobStore
	docs   store.DocumentStore
	userID int64
}

type jobMatcherArgs struct {
	JobID int64 `json:"job_id"`
}

func NewJobMatcher(jobs store.JobStore, docs store.DocumentStore, userID int64) *JobMatcher {
	return &JobMatcher{jobs: jobs, docs: docs, userID: userID}
}

func (t *JobMatcher) Name() string {
	return "match_job"
}

func (t *JobMatcher) Description() string {
	return "Score how well the user's resume matches a specific job posting"
}

func (t *JobMatcher) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"job_id": {
				"type": "integer",
				"description": "ID of the job to match against"
			}
		},
		"required": ["job_id"]
	}`)
}

func (t *JobMatcher) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params jobMatcherArgs
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

	resumeText := ""
	if doc, err := t.docs.GetPreferredResume(ctx, t.userID); err == nil {
		resumeText = doc.Content
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("load preferred resume: %w", err)
	}

	jobSkills := extractSkills(job.JobDescription, len(skillKeywords))
	resumeSkills := extractSkills(resumeText, len(skillKeywords))

	resumeSet := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		resumeSet[s] = true
	}

	var matching, missing []string
	for _, s := range jobSkills {
		if resumeSet[s] {
			matching = append(matching, s)
		} else {
			missing = append(missing, s)
		}
	}

	// Default to a middling score when the description names no skills we
	// know how to detect.
	score := 7.0
	if len(jobSkills) > 0 {
		score = math.Min(10, float64(len(matching))/float64(len(jobSkills))*10)
	}

	var b strings.Builder
	b.WriteString("**JOB MATCH ANALYSIS**\n\n")
	fmt.Fprintf(&b, "**Position:** %s - %s\n\n", job.CompanyName, job.JobTitle)
	fmt.Fprintf(&b, "**Match Score:** %.1f/10\n\n", score)

	b.WriteString("**Strengths:**\n")
	if len(matching) == 0 {
		b.WriteString("- No directly matching skills detected\n")
	}
	for _, s := range capped(matching, 5) {
		fmt.Fprintf(&b, "- Experience with %s\n", s)
	}

	b.WriteString("\n**Areas to Address:**\n")
	if len(missing) == 0 {
		b.WriteString("- None detected\n")
	}
	for _, s := range capped(missing, 3) {
		fmt.Fprintf(&b, "- May need to highlight %s experience\n", s)
	}

	b.WriteString("\n**Recommendations:**\n")
	b.WriteString("- Tailor your resume to emphasize relevant experience\n")
	b.WriteString("- Research the company culture and values\n")
	b.WriteString("- Prepare specific examples of relevant projects")

	if resumeText == "" {
		b.WriteString("\n\n*Note: no resume on file; score reflects the job description only.*")
	}
	return b.String(), nil
}
