// Package filtering implements the deterministic relevance gate, the
// ambiguity detector and the AI escalation step. All keyword checks are
// plain case-insensitive substring containment.
package filtering

// Code identifies the terminal state of one posting in the filter funnel.
type Code string

const (
	RejectedTitle      Code = "rejected_title"
	RejectedKeywords   Code = "rejected_keywords"
	RejectedExcluded   Code = "rejected_excluded"
	RejectedSalary     Code = "rejected_salary"
	KeptPassedFilters  Code = "kept_passed_filters"
	KeptAIApproved     Code = "kept_ai_approved"
	RejectedAIRejected Code = "rejected_ai_rejected"
)

// Outcome is the result of filtering one posting. Confidence is populated
// only for AI-derived outcomes (0-100).
type Outcome struct {
	Code       Code
	Reason     string
	Confidence float64
}

// Kept reports whether the posting survived filtering.
func (o Outcome) Kept() bool {
	return o.Code == KeptPassedFilters || o.Code == KeptAIApproved
}

// FromAI reports whether the outcome was produced by the relevance oracle.
func (o Outcome) FromAI() bool {
	return o.Code == KeptAIApproved || o.Code == RejectedAIRejected
}
