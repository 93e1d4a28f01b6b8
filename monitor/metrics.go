// Package monitor collects per-run answering metrics.
package monitor

import "time"

// QuestionMetrics records one question's retrieval-and-answer unit.
type QuestionMetrics struct {
	Index        int           `json:"index"`
	Retrieval    time.Duration `json:"retrieval_ns"`
	Generation   time.Duration `json:"generation_ns"`
	ContextCount int           `json:"context_count"`
	Fallback     bool          `json:"fallback"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

// RunMetrics aggregates one document run.
type RunMetrics struct {
	Questions []QuestionMetrics `json:"questions"`
	Answered  int               `json:"answered"`
	Fallbacks int               `json:"fallbacks"`
	Elapsed   time.Duration     `json:"elapsed_ns"`
}
