package server

import "github.com/docquery/docquery/server/store"

// RunRequest is the body of POST /api/v1/hackrx/run.
type RunRequest struct {
	Documents string   `json:"documents"` // URL of the document blob
	Questions []string `json:"questions"`
}

// RunResponse carries the answers, answers[i] matching questions[i].
type RunResponse struct {
	Answers []string `json:"answers"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Re-export store types used in responses
type (
	RunInfo        = store.RunInfo
	MetricsSummary = store.MetricsSummary
)

type RunListResponse struct {
	Runs []RunInfo `json:"runs"`
}
