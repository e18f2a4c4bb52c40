// Package store persists postings, scores and application decisions in
// Postgres, with a Redis cache for cheap seen-link checks.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects to Postgres and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the tables the pipeline needs if they do not exist
// yet. Idempotent, safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id BIGSERIAL PRIMARY KEY,
			platform TEXT NOT NULL,
			job_title TEXT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			job_link TEXT NOT NULL UNIQUE,
			location TEXT NOT NULL DEFAULT 'Remote',
			job_description TEXT NOT NULL DEFAULT '',
			salary_min BIGINT,
			salary_currency TEXT,
			experience_min DOUBLE PRECISION,
			experience_max DOUBLE PRECISION,
			filter_outcome TEXT,
			filter_reason TEXT,
			filter_confidence DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			job_id BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			candidate_id TEXT NOT NULL,
			skill_match_score DOUBLE PRECISION NOT NULL,
			role_stretch_score DOUBLE PRECISION NOT NULL,
			risk_reward_score DOUBLE PRECISION NOT NULL,
			missing_skills TEXT[],
			ai_recommendation TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			pre_title_match INTEGER NOT NULL,
			pre_keyword_density INTEGER NOT NULL,
			pre_salary_match INTEGER NOT NULL,
			pre_experience_match INTEGER NOT NULL,
			pre_overall INTEGER NOT NULL,
			scored_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (job_id, candidate_id)
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id BIGSERIAL PRIMARY KEY,
			job_id BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			candidate_id TEXT NOT NULL,
			decision TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (job_id, candidate_id)
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_filter_outcome_idx ON jobs (filter_outcome)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
