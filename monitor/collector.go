package monitor

import (
	"sort"
	"sync"
	"time"
)

// Collector receives question metrics from concurrently running units.
type Collector interface {
	Record(m QuestionMetrics)
	Flush() RunMetrics
}

// InMemoryCollector is the default Collector, scoped to a single run.
type InMemoryCollector struct {
	mu        sync.Mutex
	questions []QuestionMetrics
	startTime time.Time
}

func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{startTime: time.Now()}
}

func (c *InMemoryCollector) Record(m QuestionMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.questions = append(c.questions, m)
}

// Flush returns the aggregated run, with questions in input order regardless
// of completion order.
func (c *InMemoryCollector) Flush() RunMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	questions := make([]QuestionMetrics, len(c.questions))
	copy(questions, c.questions)
	sort.Slice(questions, func(i, j int) bool { return questions[i].Index < questions[j].Index })

	run := RunMetrics{
		Questions: questions,
		Elapsed:   time.Since(c.startTime),
	}
	for _, q := range questions {
		if q.Success {
			run.Answered++
		}
		if q.Fallback {
			run.Fallbacks++
		}
	}
	return run
}

// NoOpCollector discards everything.
type NoOpCollector struct{}

func (NoOpCollector) Record(m QuestionMetrics) {}

func (NoOpCollector) Flush() RunMetrics { return RunMetrics{} }
