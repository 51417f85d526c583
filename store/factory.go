package store

import (
	"fmt"
	"strings"
)

// NewStores creates job, document and goal stores based on the DSN.
// - Empty DSN: SQLite at data/jobpilot.db
// - postgres:// or postgresql://: PostgreSQL
// - Anything else: SQLite at the specified path
func NewStores(dsn string) (*Stores, error) {
	if dsn == "" {
		return NewSQLiteStores("data/jobpilot.db")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		s, err := NewPostgresStores(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}

	return NewSQLiteStores(dsn)
}
