package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/ai/gemini"
	"github.com/jobsieve/jobsieve/internal/filtering"
	"github.com/jobsieve/jobsieve/internal/logger"
	"github.com/jobsieve/jobsieve/internal/pipeline"
	"github.com/jobsieve/jobsieve/internal/rules"
	"github.com/jobsieve/jobsieve/internal/secrets"
	"github.com/jobsieve/jobsieve/internal/sheets"
	"github.com/jobsieve/jobsieve/internal/source"
	"github.com/jobsieve/jobsieve/internal/store"
)

const defaultSeenTTL = 7 * 24 * time.Hour

// buildOrchestrator wires up every collaborator from the config. The
// returned cleanup closes the postgres pool and the redis client.
func buildOrchestrator(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Orchestrator, func(), error) {
	if config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	if config.Candidate == nil || config.Candidate.ResumeFile == "" {
		return nil, nil, fmt.Errorf("resume file is required under candidate.resume-file to score postings")
	}

	resume, err := os.ReadFile(config.Candidate.ResumeFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading resume file: %w", err)
	}

	if !json.Valid(resume) {
		return nil, nil, fmt.Errorf("resume file %s is not valid json", config.Candidate.ResumeFile)
	}

	ruleSet := config.Rules
	if ruleSet == nil {
		logger.Info("no rules section in config, using built-in defaults")
		ruleSet = rules.Default()
	}

	if err := ruleSet.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating rules: %w", err)
	}

	if config.Database == nil || config.Database.URL == "" {
		return nil, nil, fmt.Errorf("database url is required (set database.url or DATABASE_URL)")
	}

	pool, err := store.NewPool(ctx, config.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	cleanup := func() { pool.Close() }

	if err := store.EnsureSchema(ctx, pool); err != nil {
		cleanup()
		return nil, nil, err
	}

	var seen *store.SeenCache
	if config.Redis != nil && config.Redis.URL != "" {
		rdb, err := store.NewRedisClient(ctx, config.Redis.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}

		ttl := config.Redis.SeenTTL
		if ttl <= 0 {
			ttl = defaultSeenTTL
		}

		seen = store.NewSeenCache(rdb, ttl)
		prev := cleanup
		cleanup = func() {
			_ = rdb.Close()
			prev()
		}
	}

	escalator, scorer, err := prepareAI(ctx, config.AI, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	useAI := config.AI != nil && config.AI.Enabled && config.AI.FilterEnabled
	runner := pipeline.NewRunner(ruleSet, escalator, useAI, logger)

	var mirror *sheets.Mirror
	if config.Sheets != nil && config.Sheets.Enabled {
		mirror, err = sheets.New(ctx, config.Sheets.CredentialsFile, config.Sheets.SpreadsheetID, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("building sheets mirror: %w", err)
		}
	}

	deps := pipeline.Deps{
		Registry: source.DefaultRegistry(),
		Runner:   runner,
		Jobs:     store.NewJobsRepo(pool),
		Scores:   store.NewScoresRepo(pool),
		Apps:     store.NewApplicationsRepo(pool),
		Seen:     seen,
		Scorer:   scorer,
		Mirror:   mirror,
		Logger:   logger,
	}

	cfg := pipeline.Config{
		CandidateID: config.Candidate.ID,
		Resume:      json.RawMessage(resume),
	}

	if config.Sources != nil {
		cfg.Platforms = config.Sources.Enabled
		cfg.Params = config.Sources.Search
		cfg.SourcePause = config.Sources.Pause
	}

	return pipeline.NewOrchestrator(deps, cfg), cleanup, nil
}

// prepareAI builds the relevance escalator and the full scorer on top of a
// shared generator. Both come back nil when the ai section is disabled; the
// pipeline degrades to heuristics only.
func prepareAI(ctx context.Context, config *AIConfig, log *zap.Logger) (*filtering.Escalator, ai.Scorer, error) {
	if config == nil || !config.Enabled {
		return nil, nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	if config.Gemini == nil {
		return nil, nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model)
	if err != nil {
		return nil, nil, err
	}

	aiLogger := logger.WithFields(log, logger.AIFields("gemini", generator.Model())...)

	var escalator *filtering.Escalator
	if config.FilterEnabled {
		classifier := gemini.NewClassifier(generator, aiLogger, config.Timeout, config.Gemini.MaxLogLength)
		escalator = filtering.NewEscalator(classifier, aiLogger)
	}

	scorer := gemini.NewScorer(generator, aiLogger, config.Timeout, config.Gemini.MaxLogLength)

	return escalator, scorer, nil
}
