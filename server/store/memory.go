package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps run history in process memory. Useful for tests and for
// deployments that do not want a database.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]RunInfo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]RunInfo)}
}

func (s *MemoryStore) Add(ctx context.Context, r RunInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.RunID] = r
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return RunInfo{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]RunInfo, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp > runs[j].Timestamp })
	return runs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) Summary(ctx context.Context) (MetricsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum MetricsSummary
	var totalMs int64
	for _, r := range s.runs {
		sum.TotalRuns++
		sum.TotalQuestions += r.QuestionCount
		sum.TotalAnswered += r.AnsweredCount
		sum.TotalFallbacks += r.FallbackCount
		totalMs += r.TotalElapsedMs
	}
	if sum.TotalRuns > 0 {
		sum.AvgLatencyMs = float64(totalMs) / float64(sum.TotalRuns)
	}
	return sum, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
