// Package pipeline drives postings through the filter funnel and the
// scoring cycle, accumulating per-run statistics.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/filtering"
	"github.com/jobsieve/jobsieve/internal/job"
	"github.com/jobsieve/jobsieve/internal/logger"
	"github.com/jobsieve/jobsieve/internal/rules"
	"github.com/jobsieve/jobsieve/internal/scoring"
)

// Runner filters one posting at a time: deterministic gate, then ambiguity
// detection, then AI escalation for ambiguous postings when enabled.
type Runner struct {
	rules     *rules.RuleSet
	gate      *filtering.Gate
	detector  *filtering.Detector
	escalator *filtering.Escalator
	useAI     bool
	logger    *zap.Logger
	stats     Stats
}

// NewRunner builds a Runner. escalator may be nil when AI-assisted
// filtering is disabled; useAI is forced off in that case.
func NewRunner(r *rules.RuleSet, escalator *filtering.Escalator, useAI bool, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	gate := filtering.NewGate(r)
	return &Runner{
		rules:     r,
		gate:      gate,
		detector:  filtering.NewDetector(r, gate),
		escalator: escalator,
		useAI:     useAI && escalator != nil,
		logger:    log,
	}
}

// Filter runs the full filter funnel for one posting and returns its
// outcome. Counters are updated for every stage the posting reached.
func (r *Runner) Filter(ctx context.Context, p *job.Posting) filtering.Outcome {
	r.stats.Total++

	outcome := r.gate.Evaluate(p)
	r.countGateStages(outcome.Code)

	fields := logger.JobFields(p.Platform, p.Link, p.Title)

	if !outcome.Kept() {
		r.logger.Debug("job rejected",
			append(fields, zap.String("outcome", string(outcome.Code)), zap.String("reason", outcome.Reason))...,
		)
		return outcome
	}

	if r.useAI {
		if ambiguous, heuristics := r.detector.Detect(p); ambiguous {
			r.stats.Ambiguous++
			r.logger.Info("ambiguous job, escalating to relevance oracle",
				append(fields, zap.Strings("heuristics", heuristics))...,
			)

			relevance := r.escalator.Check(ctx, p)
			if relevance.Relevant {
				r.stats.AIKept++
				r.stats.Final++
				r.logger.Info("job kept by relevance oracle",
					append(fields, zap.Float64("confidence", relevance.Confidence), zap.String("reason", relevance.Reason))...,
				)
				return filtering.Outcome{
					Code:       filtering.KeptAIApproved,
					Reason:     relevance.Reason,
					Confidence: relevance.Confidence,
				}
			}

			r.stats.AIRejected++
			r.logger.Info("job rejected by relevance oracle",
				append(fields, zap.Float64("confidence", relevance.Confidence), zap.String("reason", relevance.Reason))...,
			)
			return filtering.Outcome{
				Code:       filtering.RejectedAIRejected,
				Reason:     relevance.Reason,
				Confidence: relevance.Confidence,
			}
		}
	}

	r.stats.Final++
	return outcome
}

// countGateStages derives the per-stage counters from the gate outcome:
// the stages run in a fixed order, so the rejection code tells how far the
// posting got.
func (r *Runner) countGateStages(code filtering.Code) {
	switch code {
	case filtering.RejectedTitle:
	case filtering.RejectedKeywords:
		r.stats.PassedTitle++
	case filtering.RejectedExcluded:
		r.stats.PassedTitle++
		r.stats.PassedKeywords++
	case filtering.RejectedSalary:
		r.stats.PassedTitle++
		r.stats.PassedKeywords++
		r.stats.PassedExclude++
	default:
		r.stats.PassedTitle++
		r.stats.PassedKeywords++
		r.stats.PassedExclude++
		r.stats.PassedSalary++
	}
}

// PreScore computes the heuristic telemetry scores for a posting.
func (r *Runner) PreScore(p *job.Posting) scoring.PreFilterScore {
	return scoring.PreScore(p, r.rules)
}

// Keywords returns the matched technical and preferred keywords for
// reporting rows.
func (r *Runner) Keywords(p *job.Posting) []string {
	return r.gate.ExtractKeywords(p.Description)
}

// Stats returns a read-only snapshot of the funnel counters.
func (r *Runner) Stats() Stats {
	return r.stats
}

// Reset clears the counters at the start of a run.
func (r *Runner) Reset() {
	r.stats = Stats{}
}

// CountError increments the error counter for a job-level failure that was
// isolated from the rest of the batch.
func (r *Runner) CountError() {
	r.stats.Errors++
}

// AddScraped records ingestion counters from the scraping phase.
func (r *Runner) AddScraped(scraped, inserted, duplicates int) {
	r.stats.Scraped += scraped
	r.stats.Inserted += inserted
	r.stats.Duplicates += duplicates
}

// CountScored records one successful full-scoring call.
func (r *Runner) CountScored() {
	r.stats.Scored++
}

// Summary renders the cycle summary line.
func (s Stats) Summary() string {
	return fmt.Sprintf("scraped=%d inserted=%d duplicates=%d filtered_in=%d ambiguous=%d ai_kept=%d ai_rejected=%d scored=%d errors=%d filter_rate=%s",
		s.Scraped, s.Inserted, s.Duplicates, s.Final, s.Ambiguous, s.AIKept, s.AIRejected, s.Scored, s.Errors, s.FilterRateString())
}
