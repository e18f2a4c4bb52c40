package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/filtering"
	"github.com/jobsieve/jobsieve/internal/job"
	"github.com/jobsieve/jobsieve/internal/scoring"
	"github.com/jobsieve/jobsieve/internal/sheets"
	"github.com/jobsieve/jobsieve/internal/source"
	"github.com/jobsieve/jobsieve/internal/store"
	"github.com/jobsieve/jobsieve/internal/utils"
)

const (
	defaultScoreLimit = 100
	defaultScorePause = time.Second
)

// JobStore is the subset of the jobs repository the orchestrator drives.
type JobStore interface {
	Insert(ctx context.Context, p *job.Posting) (bool, int64, error)
	SetOutcome(ctx context.Context, jobID int64, outcome filtering.Outcome) error
	Unscored(ctx context.Context, candidateID string, limit int) ([]*store.StoredJob, error)
}

// SeenStore remembers job links across cycles.
type SeenStore interface {
	Seen(ctx context.Context, link string) (bool, error)
	MarkSeen(ctx context.Context, link string) error
}

// Deps are the collaborators the orchestrator drives.
type Deps struct {
	Registry *source.Registry
	Runner   *Runner
	Jobs     JobStore
	Scores   *store.ScoresRepo
	Apps     *store.ApplicationsRepo
	Seen     SeenStore
	Scorer   ai.Scorer
	Policy   *scoring.Policy
	Mirror   *sheets.Mirror
	Logger   *zap.Logger
}

// Config tunes one orchestrated cycle.
type Config struct {
	CandidateID string
	Resume      json.RawMessage
	Platforms   []string
	Params      source.Params
	SourcePause time.Duration
	ScorePause  time.Duration
	ScoreLimit  int
}

// Orchestrator runs the full cycle: scrape, filter, persist, score, decide,
// mirror. Jobs are processed one at a time; a single job's failure is
// isolated and counted, never aborting the batch.
type Orchestrator struct {
	deps     Deps
	cfg      Config
	postings job.Postings
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Policy == nil {
		deps.Policy = scoring.DefaultPolicy()
	}
	if cfg.ScoreLimit <= 0 {
		cfg.ScoreLimit = defaultScoreLimit
	}
	if cfg.ScorePause <= 0 {
		cfg.ScorePause = defaultScorePause
	}
	if cfg.CandidateID == "" {
		cfg.CandidateID = "default"
	}
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Run executes one full cycle and returns the funnel snapshot.
func (o *Orchestrator) Run(ctx context.Context) (Stats, error) {
	runID := uuid.NewString()
	log := o.deps.Logger.With(zap.String("run_id", runID))

	o.deps.Runner.Reset()
	o.postings = job.Postings{}

	log.Info("starting cycle")

	if err := o.runScraping(ctx, log); err != nil {
		return o.deps.Runner.Stats(), err
	}

	if err := o.runScoring(ctx, log); err != nil {
		return o.deps.Runner.Stats(), err
	}

	stats := o.deps.Runner.Stats()
	log.Info("cycle complete", zap.String("summary", stats.Summary()))

	return stats, nil
}

// runScraping scrapes each enabled platform, filters every posting and
// persists it with its outcome.
func (o *Orchestrator) runScraping(ctx context.Context, log *zap.Logger) error {
	for _, platform := range o.cfg.Platforms {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, ok := o.deps.Registry.Get(platform)
		if !ok {
			log.Warn("unknown platform in configuration", zap.String("platform", platform))
			continue
		}

		raws, err := src.Scrape(ctx, o.cfg.Params)
		if err != nil {
			if errors.Is(err, source.ErrNotImplemented) {
				log.Info("skipping platform without scraper", zap.String("platform", platform))
			} else {
				log.Error("scraping failed", zap.String("platform", platform), zap.Error(err))
				o.deps.Runner.CountError()
			}
			continue
		}

		inserted, duplicates := o.ingest(ctx, log, src, raws)
		o.deps.Runner.AddScraped(len(raws), inserted, duplicates)

		log.Info("platform scraped",
			zap.String("platform", platform),
			zap.Int("scraped", len(raws)),
			zap.Int("inserted", inserted),
			zap.Int("duplicates", duplicates),
		)

		if o.cfg.SourcePause > 0 {
			if err := utils.WaitFor(ctx, o.cfg.SourcePause); err != nil {
				return err
			}
		}
	}

	log.Info("current list of postings", zap.Int("count", o.postings.Len()))

	return nil
}

// Postings returns the distinct postings normalized during the last Run.
// The run command dumps them to a file when debug logging is on.
func (o *Orchestrator) Postings() *job.Postings {
	return &o.postings
}

// ingest normalizes, filters and persists raw records one by one.
func (o *Orchestrator) ingest(ctx context.Context, log *zap.Logger, src source.Source, raws []source.RawJob) (inserted, duplicates int) {
	for _, raw := range raws {
		if ctx.Err() != nil {
			return inserted, duplicates
		}

		posting, err := src.Normalize(raw)
		if err != nil {
			log.Warn("skipping malformed record", zap.String("platform", src.Platform()), zap.Error(err))
			o.deps.Runner.CountError()
			continue
		}

		if o.postings.FindByLink(posting.Link) != nil {
			duplicates++
			continue
		}

		if seen, err := o.seenBefore(ctx, log, posting.Link); err == nil && seen {
			duplicates++
			continue
		}

		o.postings.Append(posting)

		outcome := o.deps.Runner.Filter(ctx, posting)

		created, jobID, err := o.deps.Jobs.Insert(ctx, posting)
		if err != nil {
			// The link stays unmarked so the posting is retried next cycle.
			log.Error("persisting job failed", zap.String("job_link", posting.Link), zap.Error(err))
			o.deps.Runner.CountError()
			continue
		}
		if !created {
			duplicates++
			o.markSeen(ctx, log, posting.Link)
			continue
		}
		inserted++

		if err := o.deps.Jobs.SetOutcome(ctx, jobID, outcome); err != nil {
			log.Error("persisting outcome failed", zap.Int64("job_id", jobID), zap.Error(err))
			o.deps.Runner.CountError()
		}

		o.markSeen(ctx, log, posting.Link)
	}

	return inserted, duplicates
}

func (o *Orchestrator) seenBefore(ctx context.Context, log *zap.Logger, link string) (bool, error) {
	if o.deps.Seen == nil {
		return false, nil
	}

	seen, err := o.deps.Seen.Seen(ctx, link)
	if err != nil {
		log.Debug("seen cache unavailable", zap.Error(err))
		return false, err
	}
	return seen, nil
}

func (o *Orchestrator) markSeen(ctx context.Context, log *zap.Logger, link string) {
	if o.deps.Seen == nil {
		return
	}

	if err := o.deps.Seen.MarkSeen(ctx, link); err != nil {
		log.Debug("seen cache unavailable", zap.Error(err))
	}
}

// runScoring scores unscored kept jobs sequentially, pausing after each
// oracle call. Scoring failures leave the job unscored for a later cycle.
func (o *Orchestrator) runScoring(ctx context.Context, log *zap.Logger) error {
	if o.deps.Scorer == nil || len(o.cfg.Resume) == 0 {
		log.Info("skipping scoring", zap.String("reason", "scorer or resume not configured"))
		return nil
	}

	unscored, err := o.deps.Jobs.Unscored(ctx, o.cfg.CandidateID, o.cfg.ScoreLimit)
	if err != nil {
		return err
	}

	if len(unscored) == 0 {
		log.Info("no unscored jobs")
		return nil
	}

	log.Info("scoring jobs", zap.Int("count", len(unscored)))

	var mirrorRows []sheets.DecisionRow

	for _, stored := range unscored {
		if err := ctx.Err(); err != nil {
			break
		}

		row, err := o.scoreOne(ctx, log, stored)
		if err != nil {
			var scoreErr *ai.ScoreError
			if errors.As(err, &scoreErr) {
				log.Error("scoring failed, job left unscored",
					zap.Int64("job_id", stored.ID),
					zap.Error(scoreErr),
				)
			} else {
				log.Error("persisting score failed", zap.Int64("job_id", stored.ID), zap.Error(err))
			}
			o.deps.Runner.CountError()
			continue
		}

		mirrorRows = append(mirrorRows, row)
		o.deps.Runner.CountScored()

		if err := utils.WaitFor(ctx, o.cfg.ScorePause); err != nil {
			break
		}
	}

	if o.deps.Mirror != nil && len(mirrorRows) > 0 {
		if err := o.deps.Mirror.AppendDecisions(ctx, mirrorRows); err != nil {
			log.Warn("spreadsheet mirror failed", zap.Error(err))
		}
	}

	return nil
}

func (o *Orchestrator) scoreOne(ctx context.Context, log *zap.Logger, stored *store.StoredJob) (sheets.DecisionRow, error) {
	posting := &stored.Posting

	full, err := o.deps.Scorer.Score(ctx, o.cfg.Resume, posting.Description)
	if err != nil {
		return sheets.DecisionRow{}, err
	}

	pre := o.deps.Runner.PreScore(posting)
	decision := o.deps.Policy.Decide(full, scoring.IsSeniorTitle(posting.Title))

	if err := o.deps.Scores.Upsert(ctx, stored.ID, o.cfg.CandidateID, full, pre); err != nil {
		return sheets.DecisionRow{}, err
	}
	if err := o.deps.Apps.Create(ctx, stored.ID, o.cfg.CandidateID, decision); err != nil {
		return sheets.DecisionRow{}, err
	}

	log.Info("job scored",
		zap.Int64("job_id", stored.ID),
		zap.String("decision", string(decision)),
		zap.Float64("skill_match", full.SkillMatch),
		zap.Float64("role_stretch", full.RoleStretch),
		zap.Float64("risk_reward", full.RiskReward),
		zap.Int("pre_overall", pre.Overall),
	)

	return sheets.DecisionRow{
		Platform:   posting.Platform,
		Title:      posting.Title,
		Company:    posting.Company,
		Link:       posting.Link,
		Decision:   string(decision),
		SkillMatch: full.SkillMatch,
		Reason:     full.Reason,
	}, nil
}
