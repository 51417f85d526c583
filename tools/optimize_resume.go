package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hartwell/jobpilot/store"
)

// ResumeOptimizer compares a resume against a job description and suggests
// skills and keywords to emphasize. When no resume text is supplied, the
// user's preferred resume from the document store is used.
type ResumeOptimizer struct {
	docs   store.DocumentStore
	userID int64
}

type resumeOptimizerArgs struct {
	JobDescription string `json:"job_description"`
	ResumeText     string `json:"resume_text,omitempty"`
}

func NewResumeOptimizer(docs store.DocumentStore, userID int64) *ResumeOptimizer {
	return &ResumeOptimizer{docs: docs, userID: userID}
}

func (t *ResumeOptimizer) Name() string {
	return "optimize_resume"
}

func (t *ResumeOptimizer) Description() string {
	return "Suggest resume changes to better match a specific job description"
}

func (t *ResumeOptimizer) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"job_description": {
				"type": "string",
				"description": "The job description to optimize the resume for"
			},
			"resume_text": {
				"type": "string",
				"description": "Resume content as text; omit to use the stored preferred resume"
			}
		},
		"required": ["job_description"]
	}`)
}

func (t *ResumeOptimizer) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params resumeOptimizerArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	resumeText := params.ResumeText
	if resumeText == "" {
		doc, err := t.docs.GetPreferredResume(ctx, t.userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "No resume on file. Upload a resume or pass its text directly.", nil
			}
			return "", fmt.Errorf("load preferred resume: %w", err)
		}
		resumeText = doc.Content
	}

	jobSkills := extractSkills(params.JobDescription, len(skillKeywords))
	resumeSkills := extractSkills(resumeText, len(skillKeywords))

	resumeSet := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		resumeSet[s] = true
	}

	var missing, matching []string
	for _, s := range jobSkills {
		if resumeSet[s] {
			matching = append(matching, s)
		} else {
			missing = append(missing, s)
		}
	}

	resumeLower := strings.ToLower(resumeText)
	var missingKeywords []string
	for _, kw := range extractTopKeywords(params.JobDescription, 10) {
		if !strings.Contains(resumeLower, strings.ToLower(kw)) {
			missingKeywords = append(missingKeywords, kw)
		}
	}

	var suggestions []string
	if len(missing) > 0 {
		suggestions = append(suggestions,
			"**Skills to highlight or add:** "+strings.Join(capped(missing, 5), ", "))
	}
	if len(missingKeywords) > 0 {
		suggestions = append(suggestions,
			"**Keywords to incorporate:** "+strings.Join(capped(missingKeywords, 5), ", "))
	}

	if len(suggestions) == 0 {
		return "Your resume appears well-aligned with this job description. " +
			"Consider emphasizing relevant experience and quantifiable achievements.", nil
	}

	result := "**Resume Optimization Suggestions:**\n\n" + strings.Join(suggestions, "\n\n")
	if len(matching) > 0 {
		result += "\n\n**Matching Skills Found:** " + strings.Join(matching, ", ")
	}
	return result, nil
}

func capped(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
