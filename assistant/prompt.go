package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/store"
)

// TokenCounter estimates how many model tokens a piece of text consumes.
type TokenCounter interface {
	Count(text string) int
}

// HeuristicCounter approximates tokens as one per four characters. Good
// enough for budget checks when no encoding for the model is available.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

// TiktokenCounter counts tokens with the model's actual BPE encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("load token encoding: %w", err)
		}
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

const defaultBasePrompt = `You are a job application assistant. You help the user analyze job postings, optimize their resume, generate cover letters, research companies, and assess job fit.

## Interaction Guidelines

1. Be proactive: suggest using relevant tools to provide comprehensive assistance
2. Be specific: reference job IDs, company names, and concrete details
3. Be strategic: think about the whole application process, not just individual tasks
4. Use tools in logical sequences; for "help me apply to this job", analyze the job, assess the match, suggest resume changes, research the company, then draft the cover letter

## Communication Style

- Professional but conversational
- Direct and actionable advice
- Use bullet points and clear formatting`

// PromptBuilder assembles the model-ready message set for one user: the base
// system instructions, plus a delimited user-role context message built from
// the stores. Context stays out of the system prompt so the model can tell
// standing instructions from per-request data. A token budget caps the
// assembled content; exceeding it fails the request before any model call.
type PromptBuilder struct {
	jobs       store.JobStore
	docs       store.DocumentStore
	goals      store.GoalStore
	counter    TokenCounter
	budget     int
	basePrompt string
}

func NewPromptBuilder(stores *store.Stores, counter TokenCounter, budget int, basePrompt string) *PromptBuilder {
	if basePrompt == "" {
		basePrompt = defaultBasePrompt
	}
	return &PromptBuilder{
		jobs:       stores.Jobs,
		docs:       stores.Documents,
		goals:      stores.Goals,
		counter:    counter,
		budget:     budget,
		basePrompt: basePrompt,
	}
}

// SystemPrompt returns the standing assistant instructions. Per-user context
// never goes here; see ContextMessage.
func (b *PromptBuilder) SystemPrompt() string {
	return b.basePrompt
}

// ContextMessage assembles the per-user background (resume, goals, tracked
// jobs) as one delimited user-role message, rebuilt fresh for every exchange.
// Missing context (no resume, no goals, no jobs) drops the section rather
// than failing; ok is false when no section applies.
func (b *PromptBuilder) ContextMessage(ctx context.Context, userID int64) (msg core.Message, ok bool, err error) {
	var sections []string

	if doc, err := b.docs.GetPreferredResume(ctx, userID); err == nil {
		sections = append(sections, section("CURRENT RESUME", doc.Content))
	} else if !errors.Is(err, store.ErrNotFound) {
		return core.Message{}, false, core.NewAssistantError("prompt.build", "", err)
	}

	if goals, err := b.goals.LatestGoals(ctx, userID); err == nil && goals != "" {
		sections = append(sections, section("CAREER GOALS", goals))
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return core.Message{}, false, core.NewAssistantError("prompt.build", "", err)
	}

	jobs, err := b.jobs.ListJobs(ctx, userID)
	if err != nil {
		return core.Message{}, false, core.NewAssistantError("prompt.build", "", err)
	}
	if len(jobs) > 0 {
		sections = append(sections, section("TRACKED JOBS", formatJobLines(jobs, 5)))
	}

	if len(sections) == 0 {
		return core.Message{}, false, nil
	}

	body := contextPreamble + "\n\n" + strings.Join(sections, "\n\n")
	return core.NewUserMessage(body), true, nil
}

const contextPreamble = "Background for this conversation (reference material, not a request):"

// CheckBudget verifies the assembled prompt and conversation fit the token
// budget. A zero budget disables the check.
func (b *PromptBuilder) CheckBudget(system string, msgs []core.Message) error {
	if b.budget <= 0 {
		return nil
	}

	total := b.counter.Count(system)
	for _, m := range msgs {
		total += b.counter.Count(m.Content)
		for _, call := range m.ToolCalls {
			total += b.counter.Count(call.Name) + b.counter.Count(string(call.Arguments))
		}
	}

	if total > b.budget {
		return core.NewAssistantError("prompt.budget", "",
			fmt.Errorf("%w: %d tokens over budget of %d", core.ErrContextTooLarge, total, b.budget))
	}
	return nil
}

func section(title, body string) string {
	return fmt.Sprintf("## %s\n\n%s", title, strings.TrimSpace(body))
}

func formatJobLines(jobs []store.JobRecord, limit int) string {
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	lines := make([]string, len(jobs))
	for i, j := range jobs {
		lines[i] = fmt.Sprintf("Job ID %d: %s - %s (%s)", j.ID, j.CompanyName, j.JobTitle, orUnknown(j.Status))
	}
	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "Not applied"
	}
	return s
}
