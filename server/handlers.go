package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docquery/docquery/core"
	"github.com/docquery/docquery/monitor"
	"github.com/docquery/docquery/rag"
	"github.com/docquery/docquery/server/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "API is running smoothly!"})
}

// handleRun processes one document and answers its questions. The session is
// created per request, so concurrent runs never share index state.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Documents == "" {
		writeError(w, http.StatusBadRequest, "Field 'documents' must be a document URL")
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "Field 'questions' must contain at least one question")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	runID := uuid.NewString()
	start := time.Now()
	log.Printf("[run %s] document=%s questions=%d", runID, req.Documents, len(req.Questions))

	collector := monitor.NewInMemoryCollector()
	answers, err := s.runDocument(ctx, req, collector)
	elapsed := time.Since(start)

	if err != nil {
		status, detail := errorStatus(err)
		s.recordRun(runID, req, collector.Flush(), elapsed, "error", detail)
		log.Printf("[run %s] failed after %s: %v", runID, elapsed, err)
		writeError(w, status, detail)
		return
	}

	s.recordRun(runID, req, collector.Flush(), elapsed, "success", "")
	log.Printf("[run %s] answered %d questions in %s", runID, len(answers), elapsed)
	writeJSON(w, http.StatusOK, RunResponse{Answers: answers})
}

func (s *Server) runDocument(ctx context.Context, req RunRequest, collector monitor.Collector) ([]string, error) {
	text, err := s.extractor.Text(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	index, err := s.newIndex()
	if err != nil {
		return nil, err
	}

	session := rag.NewSession(index, s.embedder, s.sessionOpts)
	defer session.Close()

	if err := session.Ingest(ctx, text); err != nil {
		return nil, err
	}

	answerer := rag.NewAnswerer(s.generator, s.policy, collector)
	return answerer.Answer(ctx, session, req.Questions)
}

// errorStatus maps the error taxonomy onto HTTP statuses: ingestion problems
// are the caller's (400), generation problems are upstream (502), the rest is
// internal (500).
func errorStatus(err error) (int, string) {
	var ingest *core.IngestError
	switch {
	case errors.As(err, &ingest):
		switch ingest.Op {
		case "download", "extract":
			return http.StatusBadRequest, "Could not download or extract text from the provided document URL. " +
				"Ensure it's a valid PDF, DOCX, or email link."
		case "chunk":
			return http.StatusBadRequest, "Could not split the document text into chunks."
		}
		return http.StatusBadGateway, "Document ingestion failed: " + ingest.Op
	case errors.Is(err, core.ErrGeneration):
		return http.StatusBadGateway, "Answer generation failed."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out."
	}
	return http.StatusInternalServerError, "Internal server error."
}

func (s *Server) recordRun(runID string, req RunRequest, metrics monitor.RunMetrics, elapsed time.Duration, status, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.runs.Add(ctx, store.RunInfo{
		RunID:          runID,
		DocumentURL:    req.Documents,
		QuestionCount:  len(req.Questions),
		AnsweredCount:  metrics.Answered,
		FallbackCount:  metrics.Fallbacks,
		TotalElapsedMs: elapsed.Milliseconds(),
		Status:         status,
		Detail:         detail,
		Timestamp:      time.Now().UnixMilli(),
		Questions:      metrics.Questions,
	})
	if err != nil {
		log.Printf("[store] failed to record run %s: %v", runID, err)
	}
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.runs.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.runs.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
