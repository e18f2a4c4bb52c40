// Package rules holds the filter rule set consumed by the deterministic
// filter, the ambiguity detector and the heuristic scorer. A rule set is
// immutable for the duration of a run.
package rules

import (
	"errors"
	"fmt"
	"math"
)

// Weights are the scoring weights applied to the heuristic sub-scores.
// They are assumed to sum to roughly 1.0 but that is not enforced.
type Weights struct {
	TitleMatch      float64 `mapstructure:"title-match"`
	KeywordDensity  float64 `mapstructure:"keyword-density"`
	SalaryMatch     float64 `mapstructure:"salary-match"`
	CompanyQuality  float64 `mapstructure:"company-quality"`
	ExperienceMatch float64 `mapstructure:"experience-match"`
}

// SalaryThresholds are per-currency annual minimums plus the preferred
// ceilings at which the salary sub-score saturates.
type SalaryThresholds struct {
	Enabled         bool  `mapstructure:"enabled"`
	MinAnnualINR    int64 `mapstructure:"min-annual-inr"`
	MinAnnualUSD    int64 `mapstructure:"min-annual-usd"`
	PreferredMinINR int64 `mapstructure:"preferred-min-inr"`
	PreferredMinUSD int64 `mapstructure:"preferred-min-usd"`
}

// ExperienceLevel describes the candidate's experience band. Target is the
// candidate's actual years of experience used by the scorer.
type ExperienceLevel struct {
	Min    float64 `mapstructure:"min"`
	Max    float64 `mapstructure:"max"`
	Target float64 `mapstructure:"target"`
}

// RuleSet is the full filter configuration for one candidate profile.
type RuleSet struct {
	TargetRoles       []string `mapstructure:"target-roles"`
	TechnicalKeywords []string `mapstructure:"technical-keywords"`
	LevelKeywords     []string `mapstructure:"level-keywords"`
	ExcludeKeywords   []string `mapstructure:"exclude-keywords"`
	PreferredKeywords []string `mapstructure:"preferred-keywords"`

	Salary     SalaryThresholds `mapstructure:"salary"`
	Experience ExperienceLevel  `mapstructure:"experience"`
	Weights    Weights          `mapstructure:"weights"`
}

// Default returns the production rule set for the PE2 DevOps profile.
func Default() *RuleSet {
	return &RuleSet{
		TargetRoles: []string{
			"Platform Engineer",
			"Platform Engineering",
			"Cloud Engineer",
			"Cloud Infrastructure Engineer",
			"DevOps Engineer",
			"SRE",
			"Site Reliability Engineer",
			"Infrastructure Engineer",
			"DevOps Platform Engineer",
		},
		TechnicalKeywords: []string{
			"kubernetes", "k8s", "docker", "containers",
			"aws", "azure", "gcp", "cloud",
			"terraform", "infrastructure as code", "iac",
			"ci/cd", "jenkins", "gitlab", "github actions",
			"monitoring", "prometheus", "grafana",
		},
		LevelKeywords: []string{
			"mid-level", "mid level", "pe2", "pe-2", "l4", "ic2", "ic3",
			"2-4 years", "2-3 years", "1-4 years",
			"junior-to-mid", "associate",
		},
		ExcludeKeywords: []string{
			"senior", "staff", "principal", "lead", "architect", "head of",
			"director", "vp", "chief", "manager", "engineering manager",
			"5+ years", "6+ years", "7+ years", "10+ years",
			"l5", "l6", "ic4", "ic5",

			"data engineer", "data scientist", "ml engineer", "ai engineer",
			"frontend", "front-end", "react", "angular", "vue",
			"mobile", "ios", "android", "flutter",
			"qa", "test", "manual testing",

			"intern", "internship", "trainee", "fresher",
			"contract", "freelance", "part-time", "consultant",
		},
		PreferredKeywords: []string{
			"startup", "well-funded", "series a", "series b", "series c",
			"fast-growing", "high-growth",
			"equity", "esop", "stock options",
			"flexible hours", "remote-first",
			"platform team", "infrastructure team", "sre team",
			"microservices", "kubernetes", "service mesh", "istio",
			"observability", "distributed systems",
		},
		Salary: SalaryThresholds{
			Enabled:         true,
			MinAnnualINR:    1_200_000,
			MinAnnualUSD:    70_000,
			PreferredMinINR: 1_800_000,
			PreferredMinUSD: 120_000,
		},
		Experience: ExperienceLevel{
			Min:    1,
			Max:    4,
			Target: 1.5,
		},
		Weights: Weights{
			TitleMatch:      0.3,
			KeywordDensity:  0.25,
			SalaryMatch:     0.15,
			CompanyQuality:  0.15,
			ExperienceMatch: 0.15,
		},
	}
}

// Validate checks the rule-set shape at load time so a malformed
// configuration fails fast instead of producing silently wrong scores.
func (r *RuleSet) Validate() error {
	if r == nil {
		return errors.New("rule set is required")
	}
	if len(r.TargetRoles) == 0 {
		return errors.New("at least one target role is required")
	}
	if len(r.TechnicalKeywords) == 0 {
		return errors.New("at least one technical keyword is required")
	}

	weights := map[string]float64{
		"title-match":      r.Weights.TitleMatch,
		"keyword-density":  r.Weights.KeywordDensity,
		"salary-match":     r.Weights.SalaryMatch,
		"company-quality":  r.Weights.CompanyQuality,
		"experience-match": r.Weights.ExperienceMatch,
	}

	sum := 0.0
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight %s is not a finite number", name)
		}
		if w < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
		sum += w
	}
	if sum == 0 {
		return errors.New("scoring weights must not all be zero")
	}

	if r.Salary.Enabled {
		if r.Salary.MinAnnualINR <= 0 || r.Salary.MinAnnualUSD <= 0 {
			return errors.New("salary thresholds must be positive when salary filtering is enabled")
		}
		if r.Salary.PreferredMinINR < r.Salary.MinAnnualINR {
			return errors.New("preferred INR salary must not be below the minimum")
		}
		if r.Salary.PreferredMinUSD < r.Salary.MinAnnualUSD {
			return errors.New("preferred USD salary must not be below the minimum")
		}
	}

	if r.Experience.Target <= 0 {
		return errors.New("experience target must be positive")
	}

	return nil
}

// WeightSum reports the total of all scoring weights. Callers may warn when
// it drifts far from 1.0; the original configuration never normalized it.
func (r *RuleSet) WeightSum() float64 {
	return r.Weights.TitleMatch +
		r.Weights.KeywordDensity +
		r.Weights.SalaryMatch +
		r.Weights.CompanyQuality +
		r.Weights.ExperienceMatch
}
