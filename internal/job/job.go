package job

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Posting is a normalized job posting from any platform. Link is the
// deduplication key and must be a well-formed absolute URL.
type Posting struct {
	Platform    string      `json:"platform,omitempty"`
	Title       string      `json:"job_title"`
	Company     string      `json:"company,omitempty"`
	Link        string      `json:"job_link"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"job_description,omitempty"`
	Salary      *Salary     `json:"salary,omitempty"`
	Experience  *Experience `json:"experience,omitempty"`
}

// Salary is an annual figure as parsed from the posting.
type Salary struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Experience holds the required experience range in years. A nil bound
// means the posting does not specify it.
type Experience struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ValidationError reports a posting that failed structural validation.
// Such postings are skipped individually, never aborting a batch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Normalize trims whitespace on textual fields and defaults an empty
// location to "Remote".
func (p *Posting) Normalize() {
	p.Platform = strings.TrimSpace(p.Platform)
	p.Title = strings.TrimSpace(p.Title)
	p.Company = strings.TrimSpace(p.Company)
	p.Link = strings.TrimSpace(p.Link)
	p.Location = strings.TrimSpace(p.Location)
	p.Description = strings.TrimSpace(p.Description)

	if p.Location == "" {
		p.Location = "Remote"
	}
}

// Validate checks the mandatory fields after normalization: title and link
// must be non-empty, and link must be an absolute URL.
func (p *Posting) Validate() error {
	if p.Title == "" {
		return &ValidationError{Field: "job_title", Reason: "must not be empty"}
	}
	if p.Link == "" {
		return &ValidationError{Field: "job_link", Reason: "must not be empty"}
	}

	u, err := url.Parse(p.Link)
	if err != nil {
		return &ValidationError{Field: "job_link", Reason: fmt.Sprintf("malformed url: %v", err)}
	}
	if !u.IsAbs() || u.Host == "" {
		return &ValidationError{Field: "job_link", Reason: "url must be absolute"}
	}

	return nil
}

// Text returns the concatenated lowercase title and description. All keyword
// matching in the pipeline runs over this text.
func (p *Posting) Text() string {
	return strings.ToLower(p.Title + " " + p.Description)
}

type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) Append(items ...*Posting) {
	p.Items = append(p.Items, items...)
}

func (p *Postings) FindByLink(link string) *Posting {
	for _, posting := range p.Items {
		if posting.Link == link {
			return posting
		}
	}
	return nil
}

// DumpToTmpFile writes the postings as indented JSON to a temp file and
// returns its name.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
