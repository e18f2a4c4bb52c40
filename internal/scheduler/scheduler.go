// Package scheduler wires the cron job that runs full pipeline cycles.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/pipeline"
)

const defaultSpec = "0 */4 * * *"

// Scheduler wraps robfig/cron around the orchestrator.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *pipeline.Orchestrator
	spec         string
	logger       *zap.Logger
}

// New creates a Scheduler with the given cron spec, defaulting to every
// four hours.
func New(orchestrator *pipeline.Orchestrator, spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = defaultSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:         cron.New(),
		orchestrator: orchestrator,
		spec:         spec,
		logger:       logger,
	}
}

// Start registers the cycle job, runs one cycle immediately so the feed is
// populated without waiting for the first tick, and blocks until the
// context is cancelled. In-flight cycles finish before Start returns.
func (s *Scheduler) Start(ctx context.Context) error {
	runCycle := func() {
		if _, err := s.orchestrator.Run(ctx); err != nil {
			s.logger.Error("cycle failed", zap.Error(err))
		}
	}

	if _, err := s.cron.AddFunc(s.spec, runCycle); err != nil {
		return fmt.Errorf("register cron job %q: %w", s.spec, err)
	}

	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	runCycle()
	s.cron.Start()

	<-ctx.Done()

	s.logger.Info("scheduler stopping", zap.String("reason", "context cancelled"))
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	return ctx.Err()
}
