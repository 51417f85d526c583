package server

import (
	"encoding/json"

	"github.com/hartwell/jobpilot/assistant"
	"github.com/hartwell/jobpilot/store"
)

type ChatRequest struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type SessionResponse struct {
	Snapshot assistant.Snapshot `json:"session"`
}

type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type CreateJobRequest struct {
	UserID         int64  `json:"user_id"`
	CompanyName    string `json:"company_name"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	ApplicationURL string `json:"application_url,omitempty"`
	Status         string `json:"status,omitempty"`
	Location       string `json:"location,omitempty"`
	Salary         string `json:"salary,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

type CreateDocumentRequest struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type SaveGoalsRequest struct {
	UserID int64  `json:"user_id"`
	Goals  string `json:"goals"`
}

type ImportRequest struct {
	UserID int64  `json:"user_id"`
	URL    string `json:"url"`
}

type ImportResponse struct {
	Job store.JobRecord `json:"job"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
