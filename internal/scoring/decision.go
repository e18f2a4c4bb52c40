package scoring

import (
	"strings"

	"github.com/jobsieve/jobsieve/internal/ai"
)

// seniorTitleTerms mark postings aimed at senior candidates. Used only by
// the skip rule; the exclude filter normally rejects these much earlier.
var seniorTitleTerms = []string{
	"senior", "staff", "principal", "lead", "architect",
	"head of", "director", "vp", "chief",
}

// IsSeniorTitle reports whether the title targets a senior role.
func IsSeniorTitle(title string) bool {
	titleLower := strings.ToLower(title)
	for _, term := range seniorTitleTerms {
		if strings.Contains(titleLower, term) {
			return true
		}
	}
	return false
}

// Action is the terminal decision for a scored job.
type Action string

const (
	AutoApply   Action = "auto_apply"
	HumanReview Action = "human_review"
	Skip        Action = "skip"
)

// Threshold is one auto-apply predicate. A zero field is unset; the set
// fields determine which comparison the predicate makes.
type Threshold struct {
	SkillMatch  float64 `mapstructure:"skill-match"`
	RoleStretch float64 `mapstructure:"role-stretch"`
	RiskReward  float64 `mapstructure:"risk-reward"`
}

// Policy is the ordered decision rule applied to a FullScore. AutoApply
// predicates are checked in order and the first satisfied one wins.
type Policy struct {
	AutoApply        []Threshold `mapstructure:"auto-apply"`
	ReviewSkillMatch float64     `mapstructure:"review-skill-match"`
	SkipSkillMatch   float64     `mapstructure:"skip-skill-match"`
}

// DefaultPolicy returns the aggressive-bias thresholds used in production.
func DefaultPolicy() *Policy {
	return &Policy{
		AutoApply: []Threshold{
			{SkillMatch: 70, RoleStretch: 65},
			{SkillMatch: 75},
			{RiskReward: 70},
		},
		ReviewSkillMatch: 60,
		SkipSkillMatch:   50,
	}
}

// ShouldAutoApply reports whether any auto-apply predicate is satisfied by
// the given score.
func (p *Policy) ShouldAutoApply(scores *ai.FullScore) bool {
	for _, t := range p.AutoApply {
		switch {
		case t.SkillMatch > 0 && t.RoleStretch > 0:
			if scores.SkillMatch >= t.SkillMatch && scores.RoleStretch >= t.RoleStretch {
				return true
			}
		case t.SkillMatch > 0:
			if scores.SkillMatch >= t.SkillMatch {
				return true
			}
		case t.RiskReward > 0:
			if scores.RiskReward >= t.RiskReward {
				return true
			}
		}
	}
	return false
}

// Decide maps a FullScore to the terminal action. seniorRole marks postings
// the caller knows to target senior candidates; combined with a weak skill
// match it downgrades the job to skip instead of review. Deciding twice on
// the same score always yields the same action.
func (p *Policy) Decide(scores *ai.FullScore, seniorRole bool) Action {
	if p.ShouldAutoApply(scores) {
		return AutoApply
	}

	if scores.SkillMatch >= p.ReviewSkillMatch {
		return HumanReview
	}

	if scores.SkillMatch < p.SkipSkillMatch && seniorRole {
		return Skip
	}

	return HumanReview
}
