// Package scoring implements the fast heuristic pre-scores and the final
// apply decision rule. Pre-scores are advisory telemetry and ambiguity
// input, never a filter gate.
package scoring

import (
	"math"
	"strings"

	"github.com/jobsieve/jobsieve/internal/job"
	"github.com/jobsieve/jobsieve/internal/rules"
)

// PreFilterScore holds the four heuristic sub-scores and their weighted
// composite, each 0-100.
type PreFilterScore struct {
	TitleMatch      int `json:"title_match_score"`
	KeywordDensity  int `json:"keyword_density_score"`
	SalaryMatch     int `json:"salary_match_score"`
	ExperienceMatch int `json:"experience_match_score"`
	Overall         int `json:"overall_score"`
}

// PreScore computes all sub-scores for a posting and the weighted overall
// score, rounded to the nearest integer.
func PreScore(p *job.Posting, r *rules.RuleSet) PreFilterScore {
	s := PreFilterScore{
		TitleMatch:      TitleMatchScore(p.Title, r),
		KeywordDensity:  KeywordDensityScore(p.Description, r),
		SalaryMatch:     SalaryScore(p.Salary, r),
		ExperienceMatch: ExperienceScore(p.Experience, r),
	}

	w := r.Weights
	s.Overall = int(math.Round(
		float64(s.TitleMatch)*w.TitleMatch +
			float64(s.KeywordDensity)*w.KeywordDensity +
			float64(s.SalaryMatch)*w.SalaryMatch +
			float64(s.ExperienceMatch)*w.ExperienceMatch,
	))

	return s
}

// TitleMatchScore scores how well the title matches the target roles: 100
// for an exact case-insensitive match, otherwise the best positional score
// 85-5i for a substring match, earlier-listed roles scoring higher.
func TitleMatchScore(title string, r *rules.RuleSet) int {
	if title == "" {
		return 0
	}

	titleLower := strings.ToLower(title)
	score := 0

	for i, role := range r.TargetRoles {
		roleLower := strings.ToLower(role)
		if titleLower == roleLower {
			score = 100
		} else if strings.Contains(titleLower, roleLower) {
			if positional := 85 - i*5; positional > score {
				score = positional
			}
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// KeywordDensityScore is matchCount / len(technical) * 100, counting each
// technical keyword found once and each preferred keyword found as a 0.5
// bonus, clamped to 100 after rounding.
func KeywordDensityScore(description string, r *rules.RuleSet) int {
	if description == "" {
		return 0
	}

	text := strings.ToLower(description)
	matchCount := 0.0

	for _, keyword := range r.TechnicalKeywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			matchCount++
		}
	}
	for _, keyword := range r.PreferredKeywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			matchCount += 0.5
		}
	}

	density := matchCount / float64(len(r.TechnicalKeywords)) * 100
	score := int(math.Round(density))
	if score > 100 {
		score = 100
	}
	return score
}

// SalaryScore is 0 below the currency minimum, 100 at or above the preferred
// ceiling, linear in between, and a neutral 50 when no salary is present or
// the currency is unknown.
func SalaryScore(s *job.Salary, r *rules.RuleSet) int {
	if s == nil || s.Amount == 0 {
		return 50
	}

	t := r.Salary

	switch strings.ToUpper(s.Currency) {
	case "INR":
		return interpolateSalary(s.Amount, t.MinAnnualINR, t.PreferredMinINR)
	case "USD":
		return interpolateSalary(s.Amount, t.MinAnnualUSD, t.PreferredMinUSD)
	default:
		return 50
	}
}

func interpolateSalary(amount, min, preferred int64) int {
	if amount < min {
		return 0
	}
	if amount >= preferred {
		return 100
	}

	span := float64(preferred - min)
	position := float64(amount - min)
	return int(math.Round(position / span * 100))
}

// ExperienceScore matches the posting's required experience range against
// the candidate target. Hard mismatches (min > 4 or max < 1) score 0, a
// containing range scores 100, a near miss within half a year scores 85.
func ExperienceScore(e *job.Experience, r *rules.RuleSet) int {
	if e == nil || (e.Min == nil && e.Max == nil) {
		return 70
	}

	target := r.Experience.Target

	if e.Min != nil && *e.Min > 4 {
		return 0
	}
	if e.Max != nil && *e.Max < 1 {
		return 0
	}

	if e.Min != nil && e.Max != nil {
		if target >= *e.Min && target <= *e.Max {
			return 100
		}
		if target >= *e.Min-0.5 && target <= *e.Max+0.5 {
			return 85
		}
	}

	if e.Min != nil && e.Max == nil {
		if *e.Min <= 2 {
			return 90
		}
		if *e.Min <= 3 {
			return 70
		}
	}

	return 60
}
