package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hartwell/jobpilot/store/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStores implements JobStore, DocumentStore and GoalStore over a local
// SQLite database.
type SQLiteStores struct {
	db *sql.DB
}

// NewSQLiteStores opens (creating if needed) a SQLite database at dsn and runs
// migrations.
func NewSQLiteStores(dsn string) (*Stores, error) {
	if dsn == "" {
		dsn = "data/jobpilot.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStores{db: db}
	return &Stores{Jobs: s, Documents: s, Goals: s, closer: db}, nil
}

func runSQLiteMigrations(db *sql.DB) error {
	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// JobStore implementation

const jobColumns = `id, user_id, company_name, job_title, job_description,
	application_url, status, sentiment, notes, location, salary, added_at, applied_at`

func scanJob(row interface{ Scan(...any) error }) (JobRecord, error) {
	var j JobRecord
	var appliedAt sql.NullTime
	err := row.Scan(
		&j.ID, &j.UserID, &j.CompanyName, &j.JobTitle, &j.JobDescription,
		&j.ApplicationURL, &j.Status, &j.Sentiment, &j.Notes, &j.Location,
		&j.Salary, &j.AddedAt, &appliedAt,
	)
	if err != nil {
		return j, err
	}
	if appliedAt.Valid {
		j.AppliedAt = appliedAt.Time
	}
	return j, nil
}

func (s *SQLiteStores) GetJob(ctx context.Context, userID, jobID int64) (JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ? AND user_id = ?`, jobID, userID)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return j, ErrNotFound
	}
	if err != nil {
		return j, fmt.Errorf("query job: %w", err)
	}
	return j, nil
}

func (s *SQLiteStores) ListJobs(ctx context.Context, userID int64) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = ? ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobRecord
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *SQLiteStores) CreateJob(ctx context.Context, job JobRecord) (int64, error) {
	if job.AddedAt.IsZero() {
		job.AddedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = "Not applied"
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (user_id, company_name, job_title, job_description,
			application_url, status, sentiment, notes, location, salary, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.UserID, job.CompanyName, job.JobTitle, job.JobDescription,
		job.ApplicationURL, job.Status, job.Sentiment, job.Notes, job.Location,
		job.Salary, job.AddedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStores) UpdateJobStatus(ctx context.Context, userID, jobID int64, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?,
			applied_at = CASE WHEN ? = 'Applied' THEN ? ELSE applied_at END
		WHERE id = ? AND user_id = ?`,
		status, status, time.Now().UTC(), jobID, userID,
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStores) DeleteJob(ctx context.Context, userID, jobID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = ? AND user_id = ?`, jobID, userID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DocumentStore implementation

const docColumns = `id, user_id, name, kind, content, preferred, uploaded_at`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Kind, &d.Content, &d.Preferred, &d.UploadedAt)
	return d, err
}

func (s *SQLiteStores) GetPreferredResume(ctx context.Context, userID int64) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE user_id = ? AND kind = ? AND preferred = 1 LIMIT 1`,
		userID, DocResume)
	d, err := scanDocument(row)
	if err == nil {
		return d, nil
	}
	if err != sql.ErrNoRows {
		return d, fmt.Errorf("query preferred resume: %w", err)
	}

	// No preferred flag set: fall back to the most recent upload.
	row = s.db.QueryRowContext(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE user_id = ? AND kind = ? ORDER BY uploaded_at DESC LIMIT 1`,
		userID, DocResume)
	d, err = scanDocument(row)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if err != nil {
		return d, fmt.Errorf("query latest resume: %w", err)
	}
	return d, nil
}

func (s *SQLiteStores) SaveDocument(ctx context.Context, userID int64, kind, name, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (user_id, name, kind, content, preferred, uploaded_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		userID, name, kind, content, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStores) ListDocuments(ctx context.Context, userID int64) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE user_id = ? ORDER BY uploaded_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLiteStores) SetPreferredResume(ctx context.Context, userID, docID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET preferred = 0 WHERE user_id = ? AND kind = ?`,
		userID, DocResume); err != nil {
		return fmt.Errorf("clear preferred: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET preferred = 1 WHERE id = ? AND user_id = ? AND kind = ?`,
		docID, userID, DocResume)
	if err != nil {
		return fmt.Errorf("set preferred: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// GoalStore implementation

func (s *SQLiteStores) LatestGoals(ctx context.Context, userID int64) (string, error) {
	var goals string
	err := s.db.QueryRowContext(ctx, `
		SELECT goals FROM career_goals
		WHERE user_id = ? ORDER BY submitted_at DESC LIMIT 1`, userID).Scan(&goals)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query goals: %w", err)
	}
	return goals, nil
}

func (s *SQLiteStores) SaveGoals(ctx context.Context, userID int64, goals string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO career_goals (user_id, goals, submitted_at) VALUES (?, ?, ?)`,
		userID, goals, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert goals: %w", err)
	}
	return nil
}
