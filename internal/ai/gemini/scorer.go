package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/utils"
)

//go:embed scorer_prompt.md
var scorerPrompt string

const providerName = "gemini"

// Scorer is the Gemini-backed full-scoring oracle. Failures surface as
// *ai.ScoreError so the caller can leave the job unscored instead of
// fabricating a decision.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	timeout   time.Duration
	maxLogLen int
}

func NewScorer(generator contentGenerator, logger *zap.Logger, timeout time.Duration, maxLogLength int) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		timeout:   timeout,
		maxLogLen: maxLogLength,
	}
}

// Score evaluates the resume against the full job description.
func (s *Scorer) Score(ctx context.Context, resume json.RawMessage, description string) (*ai.FullScore, error) {
	if len(resume) == 0 {
		return nil, &ai.ScoreError{Provider: providerName, Message: "resume payload is required"}
	}
	if strings.TrimSpace(description) == "" {
		return nil, &ai.ScoreError{Provider: providerName, Message: "job description is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := buildScorerPrompt(string(resume), description)

	s.logger.Debug("full scoring request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, &ai.ScoreError{Provider: providerName, Message: "scoring call failed", Err: err}
	}

	s.logger.Debug("full scoring response",
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	score, err := parseFullScore(raw)
	if err != nil {
		return nil, &ai.ScoreError{Provider: providerName, Message: "failed to parse scorer output", Err: err}
	}

	return score, nil
}

func buildScorerPrompt(resumeJSON, description string) string {
	prompt := strings.ReplaceAll(scorerPrompt, "{{RESUME_JSON}}", resumeJSON)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", description)
	return prompt
}

func parseFullScore(raw string) (*ai.FullScore, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, err
	}

	return &ai.FullScore{
		SkillMatch:          clampScore(coerceFloat(data["skill_match"])),
		RoleStretch:         clampScore(coerceFloat(data["role_stretch"])),
		RiskReward:          clampScore(coerceFloat(data["risk_reward"])),
		MissingSkills:       coerceStringSlice(data["missing_skills"]),
		ApplyRecommendation: coerceString(data["apply_recommendation"]),
		Reason:              coerceString(data["reason"]),
	}, nil
}
