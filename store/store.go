package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an entity does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("not found")

// JobRecord is one tracked job application. All reads and writes are scoped by
// UserID; no query crosses user boundaries.
type JobRecord struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CompanyName    string    `json:"company_name"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
	ApplicationURL string    `json:"application_url,omitempty"`
	Status         string    `json:"status"`
	Sentiment      string    `json:"sentiment,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Location       string    `json:"location,omitempty"`
	Salary         string    `json:"salary,omitempty"`
	AddedAt        time.Time `json:"added_at"`
	AppliedAt      time.Time `json:"applied_at,omitempty"`
}

// Document is an uploaded or generated user document. Kind is one of
// "Resume", "Cover Letter" or "Other"; at most one resume per user carries the
// preferred flag.
type Document struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	Preferred  bool      `json:"preferred"`
	UploadedAt time.Time `json:"uploaded_at"`
}

const (
	DocResume      = "Resume"
	DocCoverLetter = "Cover Letter"
)

// JobStore provides per-user job persistence. The assistant core only reads;
// writes serve the surrounding portal handlers.
type JobStore interface {
	GetJob(ctx context.Context, userID, jobID int64) (JobRecord, error)
	ListJobs(ctx context.Context, userID int64) ([]JobRecord, error)
	CreateJob(ctx context.Context, job JobRecord) (int64, error)
	UpdateJobStatus(ctx context.Context, userID, jobID int64, status string) error
	DeleteJob(ctx context.Context, userID, jobID int64) error
}

// DocumentStore provides per-user document persistence. GetPreferredResume
// returns the resume flagged as preferred, falling back to the most recently
// uploaded resume; ErrNotFound when the user has none.
type DocumentStore interface {
	GetPreferredResume(ctx context.Context, userID int64) (Document, error)
	SaveDocument(ctx context.Context, userID int64, kind, name, content string) (int64, error)
	ListDocuments(ctx context.Context, userID int64) ([]Document, error)
	SetPreferredResume(ctx context.Context, userID, docID int64) error
}

// GoalStore persists free-text career goals; the latest submission wins.
type GoalStore interface {
	LatestGoals(ctx context.Context, userID int64) (string, error)
	SaveGoals(ctx context.Context, userID int64, goals string) error
}

// Stores bundles the three persistence interfaces over one database handle.
type Stores struct {
	Jobs      JobStore
	Documents DocumentStore
	Goals     GoalStore

	closer interface{ Close() error }
}

func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
