package filtering

import (
	"strings"

	"github.com/jobsieve/jobsieve/internal/job"
	"github.com/jobsieve/jobsieve/internal/rules"
	"github.com/jobsieve/jobsieve/internal/scoring"
)

// genericTitleTerms are low-information title words. A short title built
// around one of them says little about the actual role.
var genericTitleTerms = []string{
	"engineer",
	"technical",
	"operations",
	"infrastructure",
	"platform",
}

// mixedSignalExcludePrefix is how many exclude keywords the mixed-signal
// heuristic inspects. Deliberately narrower than the full exclude filter.
const mixedSignalExcludePrefix = 5

// Detector classifies postings that already passed the deterministic gate
// as ambiguous when their relevance signal is weak or mixed. Ambiguous
// postings are escalated to the relevance oracle.
type Detector struct {
	rules *rules.RuleSet
	gate  *Gate
}

func NewDetector(r *rules.RuleSet, gate *Gate) *Detector {
	return &Detector{rules: r, gate: gate}
}

// IsAmbiguous reports whether any ambiguity heuristic fires for the posting.
func (d *Detector) IsAmbiguous(p *job.Posting) bool {
	ambiguous, _ := d.Detect(p)
	return ambiguous
}

// Detect evaluates all four heuristics and returns the names of those that
// fired, for funnel logging.
func (d *Detector) Detect(p *job.Posting) (bool, []string) {
	var fired []string

	if d.hasOnlyGenericTitle(p.Title) {
		fired = append(fired, "generic_title")
	}
	if d.hasBorderlineKeywords(p.Description) {
		fired = append(fired, "borderline_keywords")
	}
	if d.titleGoodButDescriptionWeak(p) {
		fired = append(fired, "title_description_mismatch")
	}
	if d.hasMixedSignals(p.Description) {
		fired = append(fired, "mixed_signals")
	}

	return len(fired) > 0, fired
}

// hasOnlyGenericTitle fires for short titles (at most 3 tokens) built
// around a generic term.
func (d *Detector) hasOnlyGenericTitle(title string) bool {
	titleLower := strings.ToLower(title)
	if len(strings.Fields(titleLower)) > 3 {
		return false
	}

	for _, term := range genericTitleTerms {
		if strings.Contains(titleLower, term) {
			return true
		}
	}
	return false
}

// hasBorderlineKeywords fires when the description contains exactly 1 or 2
// technical keyword matches: enough to pass the hard filter, too sparse to
// be confident.
func (d *Detector) hasBorderlineKeywords(description string) bool {
	count := d.gate.TechnicalMatchCount(description)
	return count >= 1 && count <= 2
}

// titleGoodButDescriptionWeak fires on a strong title-match score with weak
// substantiating content in the description.
func (d *Detector) titleGoodButDescriptionWeak(p *job.Posting) bool {
	titleScore := scoring.TitleMatchScore(p.Title, d.rules)
	densityScore := scoring.KeywordDensityScore(p.Description, d.rules)
	return titleScore >= 70 && densityScore < 40
}

// hasMixedSignals fires when the description carries at least one preferred
// keyword alongside one of the first few exclude keywords.
func (d *Detector) hasMixedSignals(description string) bool {
	desc := strings.ToLower(description)

	hasPreferred := false
	for _, keyword := range d.rules.PreferredKeywords {
		if strings.Contains(desc, strings.ToLower(keyword)) {
			hasPreferred = true
			break
		}
	}
	if !hasPreferred {
		return false
	}

	prefix := d.rules.ExcludeKeywords
	if len(prefix) > mixedSignalExcludePrefix {
		prefix = prefix[:mixedSignalExcludePrefix]
	}
	for _, keyword := range prefix {
		if strings.Contains(desc, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
