package tools

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/store"
)

type mockJobStore struct {
	jobs map[int64]store.JobRecord
}

func newMockJobStore(jobs ...store.JobRecord) *mockJobStore {
	m := &mockJobStore{jobs: make(map[int64]store.JobRecord)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *mockJobStore) GetJob(_ context.Context, userID, jobID int64) (store.JobRecord, error) {
	j, ok := m.jobs[jobID]
	if !ok || j.UserID != userID {
		return store.JobRecord{}, store.ErrNotFound
	}
	return j, nil
}

func (m *mockJobStore) ListJobs(_ context.Context, userID int64) ([]store.JobRecord, error) {
	var out []store.JobRecord
	for _, j := range m.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *mockJobStore) CreateJob(_ context.Context, job store.JobRecord) (int64, error) {
	id := int64(len(m.jobs) + 1)
	job.ID = id
	m.jobs[id] = job
	return id, nil
}

func (m *mockJobStore) UpdateJobStatus(_ context.Context, userID, jobID int64, status string) error {
	j, ok := m.jobs[jobID]
	if !ok || j.UserID != userID {
		return store.ErrNotFound
	}
	j.Status = status
	m.jobs[jobID] = j
	return nil
}

func (m *mockJobStore) DeleteJob(_ context.Context, userID, jobID int64) error {
	j, ok := m.jobs[jobID]
	if !ok || j.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.jobs, jobID)
	return nil
}

type mockDocStore struct {
	mu   sync.Mutex
	docs []store.Document
}

func (m *mockDocStore) GetPreferredResume(_ context.Context, userID int64) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *store.Document
	for i := range m.docs {
		d := &m.docs[i]
		if d.UserID != userID || d.Kind != store.DocResume {
			continue
		}
		if d.Preferred {
			return *d, nil
		}
		if latest == nil || d.UploadedAt.After(latest.UploadedAt) {
			latest = d
		}
	}
	if latest == nil {
		return store.Document{}, store.ErrNotFound
	}
	return *latest, nil
}

func (m *mockDocStore) SaveDocument(_ context.Context, userID int64, kind, name, content string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.docs) + 1)
	m.docs = append(m.docs, store.Document{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Kind:       kind,
		Content:    content,
		UploadedAt: time.Now(),
	})
	return id, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context, userID int64) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Document
	for _, d := range m.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocStore) SetPreferredResume(_ context.Context, userID, docID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for i := range m.docs {
		if m.docs[i].UserID == userID && m.docs[i].Kind == store.DocResume {
			m.docs[i].Preferred = m.docs[i].ID == docID
			if m.docs[i].ID == docID {
				found = true
			}
		}
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

type mockLLM struct {
	chatFunc func(ctx context.Context, model, system, user string) (*llm.ChatResponse, error)
}

func (m *mockLLM) Chat(ctx context.Context, model, system, user string) (*llm.ChatResponse, error) {
	return m.chatFunc(ctx, model, system, user)
}

func (m *mockLLM) ChatWithTools(ctx context.Context, model, system string, _ []core.Message, _ []core.ToolSchema) (*llm.ChatResponse, error) {
	return m.chatFunc(ctx, model, system, "")
}

func mustArgs(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
