package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/ai"
)

var testResume = json.RawMessage(`{"skills": ["kubernetes", "terraform"]}`)

func TestScorerScore(t *testing.T) {
	stub := &stubGenerator{response: `{
		"skill_match": 78,
		"role_stretch": 66,
		"risk_reward": 55,
		"missing_skills": ["istio", "golang"],
		"apply_recommendation": "yes",
		"reason": "strong infra overlap"
	}`}
	scorer := NewScorer(stub, zap.NewNop(), 0, 0)

	score, err := scorer.Score(context.Background(), testResume, "kubernetes platform role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.SkillMatch != 78 || score.RoleStretch != 66 || score.RiskReward != 55 {
		t.Fatalf("unexpected scores: %+v", score)
	}
	if len(score.MissingSkills) != 2 || score.MissingSkills[0] != "istio" {
		t.Fatalf("unexpected missing skills: %v", score.MissingSkills)
	}
	if score.ApplyRecommendation != "yes" {
		t.Fatalf("unexpected recommendation: %q", score.ApplyRecommendation)
	}

	if !strings.Contains(stub.lastPrompt, `"kubernetes"`) {
		t.Fatalf("expected resume json in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "kubernetes platform role") {
		t.Fatalf("expected job description in prompt")
	}
}

func TestScorerRequiresInputs(t *testing.T) {
	scorer := NewScorer(&stubGenerator{}, zap.NewNop(), 0, 0)

	var serr *ai.ScoreError

	_, err := scorer.Score(context.Background(), nil, "description")
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScoreError for missing resume, got %v", err)
	}

	_, err = scorer.Score(context.Background(), testResume, "   ")
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScoreError for empty description, got %v", err)
	}
}

func TestScorerWrapsGeneratorFailure(t *testing.T) {
	cause := errors.New("deadline exceeded")
	scorer := NewScorer(&stubGenerator{err: cause}, zap.NewNop(), 0, 0)

	_, err := scorer.Score(context.Background(), testResume, "description")

	var serr *ai.ScoreError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScoreError, got %v", err)
	}
	if serr.Provider != "gemini" {
		t.Fatalf("expected provider gemini, got %q", serr.Provider)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause to be wrapped")
	}
}

func TestScorerWrapsParseFailure(t *testing.T) {
	scorer := NewScorer(&stubGenerator{response: "not json"}, zap.NewNop(), 0, 0)

	_, err := scorer.Score(context.Background(), testResume, "description")

	var serr *ai.ScoreError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScoreError, got %v", err)
	}
}

func TestScorerClampsScores(t *testing.T) {
	stub := &stubGenerator{response: `{"skill_match": 140, "role_stretch": -5, "risk_reward": "oops"}`}
	scorer := NewScorer(stub, zap.NewNop(), 0, 0)

	score, err := scorer.Score(context.Background(), testResume, "description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.SkillMatch != 100 {
		t.Fatalf("expected skill match clamped to 100, got %v", score.SkillMatch)
	}
	if score.RoleStretch != 0 {
		t.Fatalf("expected role stretch clamped to 0, got %v", score.RoleStretch)
	}
	if score.RiskReward != 0 {
		t.Fatalf("expected unparseable risk reward mapped to 0, got %v", score.RiskReward)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tc := range cases {
		if got := extractJSON(tc.raw); got != tc.want {
			t.Fatalf("%s: extractJSON = %q, want %q", tc.name, got, tc.want)
		}
	}
}
