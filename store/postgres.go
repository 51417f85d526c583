package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hartwell/jobpilot/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStores implements JobStore, DocumentStore and GoalStore over a
// managed PostgreSQL instance.
type PostgresStores struct {
	db *sql.DB
}

// NewPostgresStores connects to PostgreSQL, verifies connectivity and runs
// migrations.
func NewPostgresStores(dsn string) (*Stores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runPostgresMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &PostgresStores{db: db}
	return &Stores{Jobs: s, Documents: s, Goals: s, closer: db}, nil
}

func runPostgresMigrations(db *sql.DB) error {
	data, err := migrations.Postgres.ReadFile("postgres/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// JobStore implementation

func (s *PostgresStores) GetJob(ctx context.Context, userID, jobID int64) (JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`, jobID, userID)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return j, ErrNotFound
	}
	if err != nil {
		return j, fmt.Errorf("query job: %w", err)
	}
	return j, nil
}

func (s *PostgresStores) ListJobs(ctx context.Context, userID int64) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY added_at DESC`, userID)
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

func (s *PostgresStores) CreateJob(ctx context.Context, job JobRecord) (int64, error) {
	if job.AddedAt.IsZero() {
		job.AddedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = "Not applied"
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO jobs (user_id, company_name, job_title, job_description,
			application_url, status, sentiment, notes, location, salary, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		job.UserID, job.CompanyName, job.JobTitle, job.JobDescription,
		job.ApplicationURL, job.Status, job.Sentiment, job.Notes, job.Location,
		job.Salary, job.AddedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

func (s *PostgresStores) UpdateJobStatus(ctx context.Context, userID, jobID int64, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = $1,
			applied_at = CASE WHEN $1 = 'Applied' THEN $2 ELSE applied_at END
		WHERE id = $3 AND user_id = $4`,
		status, time.Now().UTC(), jobID, userID,
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

func (s *PostgresStores) DeleteJob(ctx context.Context, userID, jobID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = $1 AND user_id = $2`, jobID, userID)
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

func (s *PostgresStores) GetPreferredResume(ctx context.Context, userID int64) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE user_id = $1 AND kind = $2 AND preferred LIMIT 1`,
		userID, DocResume)
	d, err := scanDocument(row)
	if err == nil {
		return d, nil
	}
	if err != sql.ErrNoRows {
		return d, fmt.Errorf("query preferred resume: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE user_id = $1 AND kind = $2 ORDER BY uploaded_at DESC LIMIT 1`,
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

func (s *PostgresStores) SaveDocument(ctx context.Context, userID int64, kind, name, content string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (user_id, name, kind, content, preferred, uploaded_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id`,
		userID, name, kind, content, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

func (s *PostgresStores) ListDocuments(ctx context.Context, userID int64) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE user_id = $1 ORDER BY uploaded_at DESC`, userID)
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

func (s *PostgresStores) SetPreferredResume(ctx context.Context, userID, docID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET preferred = FALSE WHERE user_id = $1 AND kind = $2`,
		userID, DocResume); err != nil {
		return fmt.Errorf("clear preferred: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET preferred = TRUE WHERE id = $1 AND user_id = $2 AND kind = $3`,
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

func (s *PostgresStores) LatestGoals(ctx context.Context, userID int64) (string, error) {
	var goals string
	err := s.db.QueryRowContext(ctx, `
		SELECT goals FROM career_goals
		WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT 1`, userID).Scan(&goals)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query goals: %w", err)
	}
	return goals, nil
}

func (s *PostgresStores) SaveGoals(ctx context.Context, userID int64, goals string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO career_goals (user_id, goals, submitted_at) VALUES ($1, $2, $3)`,
		userID, goals, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert goals: %w", err)
	}
	return nil
}
