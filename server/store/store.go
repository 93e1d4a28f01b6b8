// Package store persists the run history: one record per answered document
// request.
package store

import (
	"context"
	"errors"

	"github.com/docquery/docquery/monitor"
)

// ErrNotFound is returned when a run record does not exist.
var ErrNotFound = errors.New("not found")

// RunInfo is the durable record of one document run.
type RunInfo struct {
	RunID          string                    `json:"run_id"`
	DocumentURL    string                    `json:"document_url"`
	QuestionCount  int                       `json:"question_count"`
	AnsweredCount  int                       `json:"answered_count"`
	FallbackCount  int                       `json:"fallback_count"`
	TotalElapsedMs int64                     `json:"total_elapsed_ms"`
	Status         string                    `json:"status"` // success | error
	Detail         string                    `json:"detail,omitempty"`
	Timestamp      int64                     `json:"timestamp"`
	Questions      []monitor.QuestionMetrics `json:"questions,omitempty"`
}

// MetricsSummary aggregates the run history.
type MetricsSummary struct {
	TotalRuns      int     `json:"total_runs"`
	TotalQuestions int     `json:"total_questions"`
	TotalAnswered  int     `json:"total_answered"`
	TotalFallbacks int     `json:"total_fallbacks"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
}

// RunStore defines run history persistence.
type RunStore interface {
	Add(ctx context.Context, r RunInfo) error
	Get(ctx context.Context, id string) (RunInfo, error)
	List(ctx context.Context) ([]RunInfo, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (MetricsSummary, error)
	Close() error
}
