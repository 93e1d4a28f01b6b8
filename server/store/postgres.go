package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docquery/docquery/server/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements RunStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to Postgres and runs migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
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

	return &PostgresStore{db: db}, nil
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

func (s *PostgresStore) Add(ctx context.Context, r RunInfo) error {
	questions, err := json.Marshal(r.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, document_url, question_count, answered_count, fallback_count,
			total_elapsed_ms, status, detail, timestamp, questions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			document_url = EXCLUDED.document_url,
			question_count = EXCLUDED.question_count,
			answered_count = EXCLUDED.answered_count,
			fallback_count = EXCLUDED.fallback_count,
			total_elapsed_ms = EXCLUDED.total_elapsed_ms,
			status = EXCLUDED.status,
			detail = EXCLUDED.detail,
			timestamp = EXCLUDED.timestamp,
			questions = EXCLUDED.questions`,
		r.RunID, r.DocumentURL, r.QuestionCount, r.AnsweredCount, r.FallbackCount,
		r.TotalElapsedMs, r.Status, r.Detail, r.Timestamp, string(questions),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, document_url, question_count, answered_count, fallback_count,
			   total_elapsed_ms, status, detail, timestamp, questions
		FROM runs WHERE run_id = $1`, id)
	return scanRun(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]RunInfo, error) {
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

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = $1`, id)
	return err
}

func (s *PostgresStore) Summary(ctx context.Context) (MetricsSummary, error) {
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
