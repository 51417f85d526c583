package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartwell/jobpilot/store"
)

const sampleDescription = `We are looking for a senior backend engineer with 5+ years experience
building services in Python and Go. Proficiency with PostgreSQL and Docker
required; knowledge of Kubernetes and AWS a plus. Bachelor's degree preferred.`

func TestJobAnalyzerReportsSkillsAndLevel(t *testing.T) {
	jobs := newMockJobStore(store.JobRecord{
		ID:             1,
		UserID:         7,
		CompanyName:    "Acme Corp",
		JobTitle:       "Backend Engineer",
		JobDescription: sampleDescription,
		Location:       "Remote, USA",
		Status:         "Not applied",
	})

	tool := NewJobAnalyzer(jobs, 7)
	out, err := tool.Execute(context.Background(), mustArgs(map[string]any{"job_id": 1}))
	require.NoError(t, err)

	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "Python")
	assert.Contains(t, out, "Docker")
	assert.Contains(t, out, "Senior Level (5+ years)")
	assert.Contains(t, out, "Remote, USA")
}

func TestJobAnalyzerMissingJob(t *testing.T) {
	tool := NewJobAnalyzer(newMockJobStore(), 7)

	out, err := tool.Execute(context.Background(), mustArgs(map[string]any{"job_id": 999}))
	require.NoError(t, err)
	assert.Contains(t, out, "No job found with ID 999")
}

func TestJobAnalyzerScopedToUser(t *testing.T) {
	jobs := newMockJobStore(store.JobRecord{
		ID:             1,
		UserID:         1,
		CompanyName:    "Other Co",
		JobTitle:       "Analyst",
		JobDescription: "entry level analyst role",
	})

	// Same job ID, different user: must not leak.
	tool := NewJobAnalyzer(jobs, 2)
	out, err := tool.Execute(context.Background(), mustArgs(map[string]any{"job_id": 1}))
	require.NoError(t, err)
	assert.Contains(t, out, "No job found")
}

func TestExperienceLevelBuckets(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"senior engineer with 7+ years", "Senior Level (5+ years)"},
		{"mid-level developer, 3+ years required", "Mid Level (3-5 years)"},
		{"entry level position for new grad", "Entry Level (0-2 years)"},
		{"a job description with no hints", "Experience level not clearly specified"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, experienceLevel(tc.text), tc.text)
	}
}

func TestExtractRequirementsCapped(t *testing.T) {
	reqs := extractRequirements(sampleDescription)
	assert.NotEmpty(t, reqs)
	assert.LessOrEqual(t, len(reqs), 10)
	assert.Contains(t, reqs, "5+ years experience")
}
