package scoring

import (
	"testing"

	"github.com/jobsieve/jobsieve/internal/job"
	"github.com/jobsieve/jobsieve/internal/rules"
)

func floatPtr(f float64) *float64 { return &f }

func TestTitleMatchScore(t *testing.T) {
	t.Parallel()

	r := rules.Default()

	cases := []struct {
		title string
		want  int
	}{
		{"Platform Engineer", 100},     // exact match
		{"platform engineer", 100},     // case-insensitive exact match
		{"Sr Platform Engineer", 85},   // substring of role 0
		{"Lead Cloud Engineer", 75},    // substring of role 2
		{"Our DevOps Engineer", 65},    // substring of role 4
		{"Backend Developer", 0},       // no match
		{"", 0},                        // empty title
	}

	for _, tc := range cases {
		if got := TitleMatchScore(tc.title, r); got != tc.want {
			t.Fatalf("TitleMatchScore(%q) = %d, want %d", tc.title, got, tc.want)
		}
	}
}

func TestTitleMatchScoreTakesBestRole(t *testing.T) {
	// A title matching several roles as substring scores by the
	// earliest-listed one.
	r := rules.Default()

	// The title contains both "Platform Engineer" (index 0) and
	// "DevOps Platform Engineer" (index 8). Index 0 wins with 85.
	if got := TitleMatchScore("Senior DevOps Platform Engineer", r); got != 85 {
		t.Fatalf("expected best positional score 85, got %d", got)
	}
}

func TestKeywordDensityScore(t *testing.T) {
	t.Parallel()

	r := rules.Default()

	cases := []struct {
		name        string
		description string
		want        int
	}{
		{"empty description", "", 0},
		{"no keywords", "a lovely team", 0},
		// 1 technical match out of 18 keywords: 1/18*100 = 5.56 -> 6.
		{"single technical keyword", "docker required", 6},
		// "kubernetes" counts as technical (1) and preferred (+0.5):
		// 1.5/18*100 = 8.33 -> 8.
		{"overlapping preferred keyword", "kubernetes required", 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := KeywordDensityScore(tc.description, r); got != tc.want {
				t.Fatalf("KeywordDensityScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestKeywordDensityScoreMonotonic(t *testing.T) {
	r := rules.Default()

	sparse := KeywordDensityScore("docker", r)
	rich := KeywordDensityScore("docker aws terraform jenkins prometheus", r)

	if rich <= sparse {
		t.Fatalf("expected more keywords to score higher: sparse=%d rich=%d", sparse, rich)
	}
}

func TestKeywordDensityScoreClamped(t *testing.T) {
	// Every technical keyword plus many preferred ones pushes density past
	// 100 before clamping.
	r := rules.Default()

	all := "kubernetes k8s docker containers aws azure gcp cloud terraform " +
		"infrastructure as code iac ci/cd jenkins gitlab github actions " +
		"monitoring prometheus grafana startup equity microservices " +
		"observability distributed systems service mesh istio"

	if got := KeywordDensityScore(all, r); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
}

func TestSalaryScore(t *testing.T) {
	t.Parallel()

	r := rules.Default()

	cases := []struct {
		name   string
		salary *job.Salary
		want   int
	}{
		{"no salary", nil, 50},
		{"zero amount", &job.Salary{Amount: 0, Currency: "INR"}, 50},
		{"unknown currency", &job.Salary{Amount: 1, Currency: "EUR"}, 50},
		{"below INR minimum", &job.Salary{Amount: 1_000_000, Currency: "INR"}, 0},
		{"at INR minimum", &job.Salary{Amount: 1_200_000, Currency: "INR"}, 0},
		{"INR midpoint", &job.Salary{Amount: 1_500_000, Currency: "INR"}, 50},
		{"at INR preferred", &job.Salary{Amount: 1_800_000, Currency: "INR"}, 100},
		{"above INR preferred", &job.Salary{Amount: 5_000_000, Currency: "INR"}, 100},
		{"USD midpoint", &job.Salary{Amount: 95_000, Currency: "USD"}, 50},
		{"lowercase currency", &job.Salary{Amount: 120_000, Currency: "usd"}, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := SalaryScore(tc.salary, r); got != tc.want {
				t.Fatalf("SalaryScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestExperienceScore(t *testing.T) {
	t.Parallel()

	r := rules.Default() // target 1.5 years

	cases := []struct {
		name string
		exp  *job.Experience
		want int
	}{
		{"unspecified", nil, 70},
		{"both bounds nil", &job.Experience{}, 70},
		{"demands too senior", &job.Experience{Min: floatPtr(5)}, 0},
		{"caps below entry", &job.Experience{Min: floatPtr(0), Max: floatPtr(0.5)}, 0},
		{"target inside range", &job.Experience{Min: floatPtr(1), Max: floatPtr(3)}, 100},
		{"near miss within half year", &job.Experience{Min: floatPtr(2), Max: floatPtr(4)}, 85},
		{"min only low", &job.Experience{Min: floatPtr(2)}, 90},
		{"min only three", &job.Experience{Min: floatPtr(3)}, 70},
		{"min only four", &job.Experience{Min: floatPtr(4)}, 60},
		{"max only", &job.Experience{Max: floatPtr(2)}, 60},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ExperienceScore(tc.exp, r); got != tc.want {
				t.Fatalf("ExperienceScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPreScoreComposite(t *testing.T) {
	r := rules.Default()

	p := &job.Posting{
		Title:       "Platform Engineer",
		Description: "kubernetes required",
		Salary:      &job.Salary{Amount: 1_800_000, Currency: "INR"},
		Experience:  &job.Experience{Min: floatPtr(1), Max: floatPtr(3)},
	}

	s := PreScore(p, r)

	if s.TitleMatch != 100 || s.KeywordDensity != 8 || s.SalaryMatch != 100 || s.ExperienceMatch != 100 {
		t.Fatalf("unexpected sub-scores: %+v", s)
	}

	// 100*0.3 + 8*0.25 + 100*0.15 + 100*0.15 = 62.
	if s.Overall != 62 {
		t.Fatalf("expected overall 62, got %d", s.Overall)
	}
}
