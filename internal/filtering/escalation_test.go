package filtering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/job"
)

type stubClassifier struct {
	mu      sync.Mutex
	results map[string]*ai.Relevance
	err     error
	calls   int
}

func (s *stubClassifier) Classify(_ context.Context, title, _, _ string) (*ai.Relevance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[title], nil
}

func TestEscalatorCheckPassesThrough(t *testing.T) {
	stub := &stubClassifier{results: map[string]*ai.Relevance{
		"Platform Engineer": {Relevant: false, Reason: "frontend role in disguise", Confidence: 90},
	}}
	escalator := NewEscalator(stub, zap.NewNop())

	result := escalator.Check(context.Background(), &job.Posting{Title: "Platform Engineer"})

	if result.Relevant {
		t.Fatalf("expected oracle verdict to pass through")
	}
	if result.Confidence != 90 {
		t.Fatalf("expected confidence 90, got %v", result.Confidence)
	}
}

func TestEscalatorCheckKeepsOnFailure(t *testing.T) {
	stub := &stubClassifier{err: errors.New("quota exceeded")}
	escalator := NewEscalator(stub, zap.NewNop())

	result := escalator.Check(context.Background(), &job.Posting{Title: "Platform Engineer"})

	if !result.Relevant {
		t.Fatalf("oracle failure must keep the job")
	}
	if result.Confidence != 50 {
		t.Fatalf("expected fallback confidence 50, got %v", result.Confidence)
	}
	if result.Reason == "" {
		t.Fatalf("expected fallback reason to be populated")
	}
}

func TestEscalatorCheckKeepsOnNilResult(t *testing.T) {
	// A classifier returning neither result nor error still resolves to keep.
	stub := &stubClassifier{results: map[string]*ai.Relevance{}}
	escalator := NewEscalator(stub, zap.NewNop())

	result := escalator.Check(context.Background(), &job.Posting{Title: "Unknown"})

	if !result.Relevant || result.Confidence != 50 {
		t.Fatalf("expected conservative keep, got %+v", result)
	}
}

func TestEscalatorCheckBatchAlignsResults(t *testing.T) {
	results := make(map[string]*ai.Relevance)
	postings := make([]*job.Posting, 0, 12)
	for i := 0; i < 12; i++ {
		title := fmt.Sprintf("Job %d", i)
		relevant := i%2 == 0
		results[title] = &ai.Relevance{Relevant: relevant, Confidence: float64(i)}
		postings = append(postings, &job.Posting{Title: title})
	}

	stub := &stubClassifier{results: results}
	escalator := NewEscalator(stub, zap.NewNop())
	escalator.batchPause = 0

	got, err := escalator.CheckBatch(context.Background(), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != len(postings) {
		t.Fatalf("expected %d results, got %d", len(postings), len(got))
	}

	for i, result := range got {
		if result.Confidence != float64(i) {
			t.Fatalf("result %d does not align with its posting: %+v", i, result)
		}
	}

	if stub.calls != len(postings) {
		t.Fatalf("expected %d classifier calls, got %d", len(postings), stub.calls)
	}
}

func TestEscalatorCheckBatchCancelled(t *testing.T) {
	stub := &stubClassifier{results: map[string]*ai.Relevance{}}
	escalator := NewEscalator(stub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	postings := []*job.Posting{{Title: "A"}, {Title: "B"}}

	if _, err := escalator.CheckBatch(ctx, postings); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEscalatorCheckBatchEmpty(t *testing.T) {
	escalator := NewEscalator(&stubClassifier{}, zap.NewNop())

	got, err := escalator.CheckBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}
