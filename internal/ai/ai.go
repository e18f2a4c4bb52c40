// Package ai defines the ports to the external AI oracles. The pipeline
// depends only on these interfaces; provider implementations live in
// subpackages.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// Relevance is the relevance-classification oracle's verdict for one job.
// Confidence is expressed as 0-100.
type Relevance struct {
	Relevant   bool    `json:"relevant"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// RelevanceClassifier answers the quick question "is this job relevant for
// the candidate profile". It is invoked only for ambiguous jobs.
type RelevanceClassifier interface {
	Classify(ctx context.Context, title, description, company string) (*Relevance, error)
}

// FullScore is the multi-axis evaluation of a job against a resume. All axis
// scores are 0-100. It is recomputed and overwritten on re-scoring.
type FullScore struct {
	SkillMatch          float64  `json:"skill_match"`
	RoleStretch         float64  `json:"role_stretch"`
	RiskReward          float64  `json:"risk_reward"`
	MissingSkills       []string `json:"missing_skills"`
	ApplyRecommendation string   `json:"apply_recommendation"`
	Reason              string   `json:"reason"`
}

// Scorer produces a FullScore for a (resume, job description) pair. The
// resume payload is passed through opaquely.
type Scorer interface {
	Score(ctx context.Context, resume json.RawMessage, description string) (*FullScore, error)
}

// ScoreError is a classified full-scoring failure. Unlike relevance checks,
// a numeric score cannot be safely defaulted, so the error propagates and
// the job stays unscored until a later cycle.
type ScoreError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ScoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[ai:%s] %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[ai:%s] %s", e.Provider, e.Message)
}

func (e *ScoreError) Unwrap() error { return e.Err }
