// Package source defines the job source capability and its registry. Each
// platform implements Scrape (raw records) and Normalize (raw record to
// validated posting); the registry replaces the inheritance hierarchy the
// scrapers once had.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jobsieve/jobsieve/internal/job"
)

// ErrNotImplemented marks a platform that is declared but has no working
// scraper yet. The orchestrator skips such sources with a log line.
var ErrNotImplemented = errors.New("scraper not implemented")

// Params are the platform-independent search parameters.
type Params struct {
	Keywords   []string `mapstructure:"keywords"`
	Location   string   `mapstructure:"location"`
	Limit      int      `mapstructure:"limit"`
	MaxAgeDays int      `mapstructure:"max-age-days"`
}

// RawJob is one unnormalized record as scraped from a platform. Keys are
// platform-specific; Normalize resolves them through field aliases.
type RawJob map[string]string

// Source is the capability every job platform implements.
type Source interface {
	Platform() string
	Scrape(ctx context.Context, params Params) ([]RawJob, error)
	Normalize(raw RawJob) (*job.Posting, error)
}

// fieldAliases lists the accepted raw keys per canonical field, most
// specific first.
var fieldAliases = map[string][]string{
	"title":       {"title", "job_title", "position", "role"},
	"company":     {"company", "company_name", "employer"},
	"link":        {"link", "url", "job_link", "apply_url"},
	"location":    {"location", "remote", "city", "country"},
	"description": {"description", "job_description", "details", "summary"},
}

// ExtractField returns the first non-empty value among the aliases for the
// canonical field name.
func ExtractField(raw RawJob, field string) string {
	for _, key := range fieldAliases[field] {
		if value := strings.TrimSpace(raw[key]); value != "" {
			return value
		}
	}
	return ""
}

// Normalize converts a raw record into a validated Posting for the given
// platform. Optional salary and experience fields are parsed when present.
func Normalize(platform string, raw RawJob) (*job.Posting, error) {
	p := &job.Posting{
		Platform:    platform,
		Title:       ExtractField(raw, "title"),
		Company:     ExtractField(raw, "company"),
		Link:        ExtractField(raw, "link"),
		Location:    ExtractField(raw, "location"),
		Description: ExtractField(raw, "description"),
	}

	opt := decodeOptionalFields(raw)

	if opt.SalaryMin > 0 {
		currency := strings.TrimSpace(opt.SalaryCurrency)
		if currency == "" {
			currency = "INR"
		}
		p.Salary = &job.Salary{Amount: opt.SalaryMin, Currency: currency}
	}

	if opt.ExperienceMin != nil || opt.ExperienceMax != nil {
		p.Experience = &job.Experience{Min: opt.ExperienceMin, Max: opt.ExperienceMax}
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("normalize %s record: %w", platform, err)
	}

	return p, nil
}

// optionalFields are the numeric extras a scraper may emit alongside the
// textual fields. Nil pointers mean the posting did not specify the bound.
type optionalFields struct {
	SalaryMin      int64    `mapstructure:"salary_min"`
	SalaryCurrency string   `mapstructure:"salary_currency"`
	ExperienceMin  *float64 `mapstructure:"experience_min"`
	ExperienceMax  *float64 `mapstructure:"experience_max"`
}

func decodeOptionalFields(raw RawJob) optionalFields {
	var fields optionalFields

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fields,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fields
	}

	// Unparseable values stay unset; scraper output is best effort.
	_ = decoder.Decode(map[string]string(raw))

	return fields
}

// Registry maps platform names to sources.
type Registry struct {
	sources map[string]Source
	order   []string
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source, replacing any previous one for the same platform.
func (r *Registry) Register(s Source) {
	name := s.Platform()
	if _, exists := r.sources[name]; !exists {
		r.order = append(r.order, name)
	}
	r.sources[name] = s
}

func (r *Registry) Get(platform string) (Source, bool) {
	s, ok := r.sources[platform]
	return s, ok
}

// Platforms returns the registered platform names in registration order.
func (r *Registry) Platforms() []string {
	return append([]string(nil), r.order...)
}
