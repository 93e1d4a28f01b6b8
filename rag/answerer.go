package rag

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docquery/docquery/core"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/monitor"
)

// Policy controls how a batch reacts to a single question's failure.
type Policy int

const (
	// FailFast aborts the whole batch on the first failed unit; no partial
	// answer list is returned.
	FailFast Policy = iota

	// CollectPartial substitutes PartialFailureAnswer at the failed position
	// and completes the rest of the batch.
	CollectPartial
)

// PartialFailureAnswer marks a failed position under CollectPartial.
const PartialFailureAnswer = "Error: failed to generate an answer for this question."

// FallbackAnswer is the in-band answer for a question with no relevant
// content. Absence of content is never an error.
func FallbackAnswer(question string) string {
	return fmt.Sprintf("Information for '%s' not found in document.", question)
}

// Answerer fans out one concurrent unit per question against an ingested
// session and gathers the answers in input order.
type Answerer struct {
	generator llm.Generator
	policy    Policy
	collector monitor.Collector
}

// NewAnswerer creates an Answerer. A nil collector discards metrics.
func NewAnswerer(generator llm.Generator, policy Policy, collector monitor.Collector) *Answerer {
	if collector == nil {
		collector = monitor.NoOpCollector{}
	}
	return &Answerer{generator: generator, policy: policy, collector: collector}
}

// Answer runs retrieve+generate for every question concurrently, after the
// session's ingest barrier has passed. answers[i] always corresponds to
// questions[i]. Under FailFast the group context is cancelled on the first
// failure and the error is returned; under CollectPartial failed positions
// carry PartialFailureAnswer. Cancelling ctx cancels all in-flight units.
func (a *Answerer) Answer(ctx context.Context, session *Session, questions []string) ([]string, error) {
	answers := make([]string, len(questions))

	g, ctx := errgroup.WithContext(ctx)
	for i, question := range questions {
		g.Go(func() error {
			answer, err := a.answerOne(ctx, session, i, question)
			if err != nil {
				if a.policy == CollectPartial {
					answers[i] = PartialFailureAnswer
					return nil
				}
				return err
			}
			answers[i] = answer
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *Answerer) answerOne(ctx context.Context, session *Session, index int, question string) (string, error) {
	m := monitor.QuestionMetrics{Index: index}
	defer func() { a.collector.Record(m) }()

	start := time.Now()
	contexts, err := session.Retrieve(ctx, question, session.TopK())
	m.Retrieval = time.Since(start)
	if err != nil {
		m.Error = err.Error()
		return "", fmt.Errorf("retrieve for question %d: %w", index, err)
	}
	m.ContextCount = len(contexts)

	if len(contexts) == 0 {
		m.Fallback = true
		m.Success = true
		return FallbackAnswer(question), nil
	}

	start = time.Now()
	answer, err := a.generator.Generate(ctx, question, contexts)
	m.Generation = time.Since(start)
	if err != nil {
		m.Error = err.Error()
		return "", fmt.Errorf("%w: question %d: %v", core.ErrGeneration, index, err)
	}
	m.Success = true
	return answer, nil
}
