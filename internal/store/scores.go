package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/scoring"
)

// ScoresRepo persists full AI scores and their heuristic pre-scores, keyed
// by (job, candidate). Re-scoring overwrites the previous row.
type ScoresRepo struct {
	pool *pgxpool.Pool
}

func NewScoresRepo(pool *pgxpool.Pool) *ScoresRepo {
	return &ScoresRepo{pool: pool}
}

func (r *ScoresRepo) Upsert(ctx context.Context, jobID int64, candidateID string, full *ai.FullScore, pre scoring.PreFilterScore) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scores (job_id, candidate_id,
		                     skill_match_score, role_stretch_score, risk_reward_score,
		                     missing_skills, ai_recommendation, reason,
		                     pre_title_match, pre_keyword_density, pre_salary_match,
		                     pre_experience_match, pre_overall)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (job_id, candidate_id) DO UPDATE SET
		   skill_match_score = EXCLUDED.skill_match_score,
		   role_stretch_score = EXCLUDED.role_stretch_score,
		   risk_reward_score = EXCLUDED.risk_reward_score,
		   missing_skills = EXCLUDED.missing_skills,
		   ai_recommendation = EXCLUDED.ai_recommendation,
		   reason = EXCLUDED.reason,
		   pre_title_match = EXCLUDED.pre_title_match,
		   pre_keyword_density = EXCLUDED.pre_keyword_density,
		   pre_salary_match = EXCLUDED.pre_salary_match,
		   pre_experience_match = EXCLUDED.pre_experience_match,
		   pre_overall = EXCLUDED.pre_overall`,
		jobID, candidateID,
		full.SkillMatch, full.RoleStretch, full.RiskReward,
		full.MissingSkills, full.ApplyRecommendation, full.Reason,
		pre.TitleMatch, pre.KeywordDensity, pre.SalaryMatch,
		pre.ExperienceMatch, pre.Overall,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}
