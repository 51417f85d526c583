package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartwell/jobpilot/config"
	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/llm"
	"github.com/hartwell/jobpilot/monitor"
	"github.com/hartwell/jobpilot/store"
)

type stubClient struct {
	reply string
}

func (c *stubClient) Chat(ctx context.Context, model, system, user string) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Content: c.reply}, nil
}

func (c *stubClient) ChatWithTools(ctx context.Context, model, system string, msgs []core.Message, tools []core.ToolSchema) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Content: c.reply}, nil
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	stores, err := store.NewSQLiteStores(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	srv, err := New(Config{
		Client:  &stubClient{reply: "Happy to help with your job search."},
		Stores:  stores,
		Model:   "gpt-4",
		Style:   config.DefaultCoverLetterStyle(),
		Metrics: monitor.NewInMemoryCollector(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestToolsEndpointListsCatalog(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/tools", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var infos []ToolInfo
	require.NoError(t, json.Unmarshal(body, &infos))
	require.Len(t, infos, 5)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Contains(t, names, "analyze_job")
	assert.Contains(t, names, "generate_cover_letter")
	assert.Contains(t, names, "match_job")
}

func TestChatCreatesSessionAndReplies(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{
		UserID:  1,
		Message: "What jobs am I tracking?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var chat ChatResponse
	require.NoError(t, json.Unmarshal(body, &chat))
	assert.NotEmpty(t, chat.SessionID)
	assert.Equal(t, "Happy to help with your job search.", chat.Reply)

	// Second message on the same session keeps the history growing.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{
		UserID:    1,
		SessionID: chat.SessionID,
		Message:   "Anything else?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/sessions/"+chat.SessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.Len(t, sess.Snapshot.Messages, 4, "two user turns, two assistant replies")
}

func TestChatValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{UserID: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "message required")

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "user_id required")

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{
		UserID: 1, SessionID: "missing", Message: "hi",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "unknown session")
}

func TestChatSessionBelongsToUser(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{UserID: 1, Message: "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chat ChatResponse
	require.NoError(t, json.Unmarshal(body, &chat))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{
		UserID: 2, SessionID: chat.SessionID, Message: "hello",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "another user cannot use the session")
}

func TestSessionResetAndDelete(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{UserID: 1, Message: "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chat ChatResponse
	require.NoError(t, json.Unmarshal(body, &chat))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+chat.SessionID+"/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/sessions/"+chat.SessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.Empty(t, sess.Snapshot.Messages, "reset clears the history")
	assert.Equal(t, chat.SessionID, sess.Snapshot.ID, "reset keeps the session id")

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/sessions/"+chat.SessionID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/sessions/"+chat.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJobEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/jobs", CreateJobRequest{
		UserID:      1,
		CompanyName: "Acme Corp",
		JobTitle:    "Backend Engineer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created store.JobRecord
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created.ID)
	assert.Equal(t, "Not applied", created.Status)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/jobs", CreateJobRequest{UserID: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "company and title required")

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/jobs?user_id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var jobs []store.JobRecord
	require.NoError(t, json.Unmarshal(body, &jobs))
	assert.Len(t, jobs, 1)

	url := ts.URL + "/jobs/" + jsonID(created.ID)
	resp, _ = doJSON(t, http.MethodGet, url+"?user_id=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, url+"?user_id=2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "user_id query required")

	resp, _ = doJSON(t, http.MethodPatch, url+"/status", UpdateStatusRequest{UserID: 1, Status: "Applied"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPatch, url+"/status", UpdateStatusRequest{UserID: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "status required")

	resp, _ = doJSON(t, http.MethodDelete, url+"?user_id=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, url+"?user_id=1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocumentEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/documents", CreateDocumentRequest{
		UserID: 1, Name: "resume.md", Kind: store.DocResume, Content: "Go, Python, SQL",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created map[string]int64
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created["id"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/documents", CreateDocumentRequest{UserID: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/documents?user_id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var docs []store.Document
	require.NoError(t, json.Unmarshal(body, &docs))
	assert.Len(t, docs, 1)

	resp, _ = doJSON(t, http.MethodPost,
		ts.URL+"/documents/"+jsonID(created["id"])+"/preferred?user_id=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/documents/9999/preferred?user_id=1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGoalEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	// Missing goals read back as empty rather than an error.
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/goals?user_id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var goals map[string]string
	require.NoError(t, json.Unmarshal(body, &goals))
	assert.Empty(t, goals["goals"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/goals", SaveGoalsRequest{
		UserID: 1, Goals: "Ship a platform migration",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/goals?user_id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &goals))
	assert.Equal(t, "Ship a platform migration", goals["goals"])
}

func TestImportNotConfigured(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/import", ImportRequest{UserID: 1, URL: "https://example.com/job"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestMetricsSummary(t *testing.T) {
	_, ts := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, ts.URL+"/chat", ChatRequest{UserID: 1, Message: "hello"})
	var chat ChatResponse
	require.NoError(t, json.Unmarshal(body, &chat))

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/metrics/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary monitor.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.TotalChats)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/chat", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}
