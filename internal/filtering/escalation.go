package filtering

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/job"
	"github.com/jobsieve/jobsieve/internal/utils"
)

const (
	defaultBatchSize  = 5
	defaultBatchPause = 500 * time.Millisecond
)

// Escalator asks the relevance oracle about ambiguous postings. Any oracle
// failure resolves to a conservative keep: an ambiguous job is never
// silently dropped because of infrastructure problems.
type Escalator struct {
	classifier ai.RelevanceClassifier
	logger     *zap.Logger
	batchSize  int
	batchPause time.Duration
}

func NewEscalator(classifier ai.RelevanceClassifier, logger *zap.Logger) *Escalator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Escalator{
		classifier: classifier,
		logger:     logger,
		batchSize:  defaultBatchSize,
		batchPause: defaultBatchPause,
	}
}

// Check classifies a single posting. It never returns an error: oracle
// failures degrade to {relevant: true, confidence: 50}.
func (e *Escalator) Check(ctx context.Context, p *job.Posting) *ai.Relevance {
	result, err := e.classifier.Classify(ctx, p.Title, p.Description, p.Company)
	if err != nil || result == nil {
		e.logger.Warn("relevance check failed, keeping job by default",
			zap.String("job_title", p.Title),
			zap.Error(err),
		)
		return &ai.Relevance{
			Relevant:   true,
			Reason:     "relevance check failed, kept by default",
			Confidence: 50,
		}
	}

	e.logger.Debug("relevance check completed",
		zap.String("job_title", p.Title),
		zap.Bool("relevant", result.Relevant),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}

// CheckBatch classifies postings in fixed-size groups to respect oracle
// rate limits. Calls within a group run in parallel and are unordered
// relative to each other; groups run strictly sequentially with a short
// pause in between. Results align with the input slice. The only error
// returned is context cancellation.
func (e *Escalator) CheckBatch(ctx context.Context, postings []*job.Posting) ([]*ai.Relevance, error) {
	results := make([]*ai.Relevance, len(postings))

	for start := 0; start < len(postings); start += e.batchSize {
		end := start + e.batchSize
		if end > len(postings) {
			end = len(postings)
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			group.Go(func() error {
				results[i] = e.Check(groupCtx, postings[i])
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if end < len(postings) {
			if err := utils.WaitFor(ctx, e.batchPause); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}
