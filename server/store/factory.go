package store

import (
	"fmt"
	"strings"
)

// NewRunStore creates a run store based on the DSN.
// - "memory": in-process, lost on restart
// - postgres:// or postgresql://: PostgreSQL
// - Empty or anything else: SQLite at the given path (default data/docquery.db)
func NewRunStore(dsn string) (RunStore, error) {
	switch {
	case dsn == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	default:
		return NewSQLiteStore(dsn)
	}
}
