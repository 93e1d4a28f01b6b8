package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docquery/docquery/server/store/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed run store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "data/docquery.db"
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

	return &SQLiteStore{db: db}, nil
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

func (s *SQLiteStore) Add(ctx context.Context, r RunInfo) error {
	questions, err := json.Marshal(r.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, document_url, question_count, answered_count, fallback_count,
			total_elapsed_ms, status, detail, timestamp, questions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.DocumentURL, r.QuestionCount, r.AnsweredCount, r.FallbackCount,
		r.TotalElapsedMs, r.Status, r.Detail, r.Timestamp, string(questions),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, document_url, question_count, answered_count, fallback_count,
			   total_elapsed_ms, status, detail, timestamp, questions
		FROM runs WHERE run_id = ?`, id)
	return scanRun(row)
}

func (s *SQLiteStore) List(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, document_url, question_count, answered_count, fallback_count,
			   total_elapsed_ms, status, detail, timestamp, questions
		FROM runs ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id)
	return err
}

func (s *SQLiteStore) Summary(ctx context.Context) (MetricsSummary, error) {
	var sum MetricsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			   COALESCE(SUM(question_count), 0),
			   COALESCE(SUM(answered_count), 0),
			   COALESCE(SUM(fallback_count), 0),
			   COALESCE(AVG(total_elapsed_ms), 0)
		FROM runs`).Scan(
		&sum.TotalRuns, &sum.TotalQuestions, &sum.TotalAnswered,
		&sum.TotalFallbacks, &sum.AvgLatencyMs,
	)
	if err != nil {
		return sum, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunInfo, error) {
	var r RunInfo
	var questionsJSON string

	err := row.Scan(
		&r.RunID, &r.DocumentURL, &r.QuestionCount, &r.AnsweredCount, &r.FallbackCount,
		&r.TotalElapsedMs, &r.Status, &r.Detail, &r.Timestamp, &questionsJSON,
	)
	if err == sql.ErrNoRows {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("scan run: %w", err)
	}

	if questionsJSON != "" {
		if err := json.Unmarshal([]byte(questionsJSON), &r.Questions); err != nil {
			return r, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return r, nil
}
