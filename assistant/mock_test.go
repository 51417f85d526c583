package assistant

import (
	"context"
	"encoding/json"

	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/store"
)

// scriptedModel returns queued completions in order, or the queued error.
type scriptedModel struct {
	queue []queuedResult
	calls int
}

type queuedResult struct {
	completion core.Completion
	err        error
}

func (m *scriptedModel) Complete(_ context.Context, _ string, _ []core.Message, _ []core.ToolSchema) (core.Completion, error) {
	if m.calls >= len(m.queue) {
		return nil, core.ErrModelUnavailable
	}
	r := m.queue[m.calls]
	m.calls++
	return r.completion, r.err
}

func answer(text string) queuedResult {
	return queuedResult{completion: core.FinalAnswer{Text: text}}
}

func toolCalls(calls ...core.ToolCall) queuedResult {
	return queuedResult{completion: core.ToolCallsRequested{Calls: calls}}
}

func failure(err error) queuedResult {
	return queuedResult{err: err}
}

// funcTool adapts a function to the tools.Tool interface.
type funcTool struct {
	name string
	fn   func(ctx context.Context, args json.RawMessage) (string, error)
}

func (t funcTool) Name() string        { return t.name }
func (t funcTool) Description() string { return t.name }
func (t funcTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}
func (t funcTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return t.fn(ctx, args)
}

// Empty store fakes: the prompt builder tolerates users with no data.
type emptyJobs struct{}

func (emptyJobs) GetJob(context.Context, int64, int64) (store.JobRecord, error) {
	return store.JobRecord{}, store.ErrNotFound
}
func (emptyJobs) ListJobs(context.Context, int64) ([]store.JobRecord, error) { return nil, nil }
func (emptyJobs) CreateJob(context.Context, store.JobRecord) (int64, error)  { return 0, nil }
func (emptyJobs) UpdateJobStatus(context.Context, int64, int64, string) error {
	return store.ErrNotFound
}
func (emptyJobs) DeleteJob(context.Context, int64, int64) error { return store.ErrNotFound }

type emptyDocs struct{}

func (emptyDocs) GetPreferredResume(context.Context, int64) (store.Document, error) {
	return store.Document{}, store.ErrNotFound
}
func (emptyDocs) SaveDocument(context.Context, int64, string, string, string) (int64, error) {
	return 0, nil
}
func (emptyDocs) ListDocuments(context.Context, int64) ([]store.Document, error) { return nil, nil }
func (emptyDocs) SetPreferredResume(context.Context, int64, int64) error         { return store.ErrNotFound }

type emptyGoals struct{}

func (emptyGoals) LatestGoals(context.Context, int64) (string, error) { return "", store.ErrNotFound }
func (emptyGoals) SaveGoals(context.Context, int64, string) error     { return nil }

func emptyStores() *store.Stores {
	return &store.Stores{Jobs: emptyJobs{}, Documents: emptyDocs{}, Goals: emptyGoals{}}
}
