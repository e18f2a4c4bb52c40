package pipeline

import "fmt"

// Stats are the per-run funnel counters. They are reset at the start of a
// run, mutated only by the single pipeline-driving flow, and read-only
// afterwards via Snapshot.
type Stats struct {
	Total          int `json:"total"`
	PassedTitle    int `json:"passed_title_filter"`
	PassedKeywords int `json:"passed_keyword_filter"`
	PassedExclude  int `json:"passed_exclude_filter"`
	PassedSalary   int `json:"passed_salary_filter"`
	Ambiguous      int `json:"ambiguous"`
	AIKept         int `json:"ai_kept"`
	AIRejected     int `json:"ai_rejected"`
	Final          int `json:"final"`

	Scraped    int `json:"jobs_scraped"`
	Inserted   int `json:"jobs_inserted"`
	Duplicates int `json:"jobs_duplicate"`
	Scored     int `json:"jobs_scored"`
	Errors     int `json:"errors"`
}

// FilterRate is the percentage of seen jobs that survived filtering.
func (s Stats) FilterRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Final) / float64(s.Total) * 100
}

// FilterRateString renders the rate the way the funnel report shows it.
func (s Stats) FilterRateString() string {
	return fmt.Sprintf("%.1f%%", s.FilterRate())
}
