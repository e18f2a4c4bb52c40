package source

import (
	"context"
	"fmt"

	"github.com/jobsieve/jobsieve/internal/job"
)

// stub is a declared platform without a working scraper. Scraping requires
// per-site anti-bot work that is out of scope here; the platforms stay
// registered so configuration and reporting treat them uniformly.
type stub struct {
	platform string
}

// NewStub declares a platform whose scraper is not implemented.
func NewStub(platform string) Source {
	return &stub{platform: platform}
}

func (s *stub) Platform() string { return s.platform }

func (s *stub) Scrape(context.Context, Params) ([]RawJob, error) {
	return nil, fmt.Errorf("%s: %w", s.platform, ErrNotImplemented)
}

func (s *stub) Normalize(raw RawJob) (*job.Posting, error) {
	return Normalize(s.platform, raw)
}

// DefaultRegistry returns all known platforms: the working scrapers plus
// the declared stubs.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewRemoteOK(),
		NewRemotive(),
		NewWeWorkRemotely(),
		NewStub("linkedin"),
		NewStub("naukri"),
		NewStub("indeed"),
		NewStub("wellfound"),
		NewStub("himalayas"),
	)
}
