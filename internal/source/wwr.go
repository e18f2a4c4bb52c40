package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobsieve/jobsieve/internal/job"
)

const (
	wwrBaseURL     = "https://weworkremotely.com"
	wwrCategoryURL = wwrBaseURL + "/categories/remote-devops-sysadmin-jobs"
)

// WeWorkRemotely scrapes the devops/sysadmin category listing page. The
// listing carries no description, so Normalize produces title-only postings
// that the keyword filter evaluates on the title alone.
type WeWorkRemotely struct {
	client  *http.Client
	pageURL string
}

func NewWeWorkRemotely() *WeWorkRemotely {
	return &WeWorkRemotely{
		client:  &http.Client{Timeout: httpTimeout},
		pageURL: wwrCategoryURL,
	}
}

func (s *WeWorkRemotely) Platform() string { return "weworkremotely" }

func (s *WeWorkRemotely) Scrape(ctx context.Context, params Params) ([]RawJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weworkremotely returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse weworkremotely page: %w", err)
	}

	keywords := lowerAll(params.Keywords)

	var results []RawJob
	doc.Find("section.jobs li").Each(func(_ int, sel *goquery.Selection) {
		if params.Limit > 0 && len(results) >= params.Limit {
			return
		}

		anchor := sel.Find("a").First()
		href, ok := anchor.Attr("href")
		if !ok || !strings.Contains(href, "/remote-jobs/") {
			return
		}

		title := strings.TrimSpace(sel.Find("span.title").Text())
		company := strings.TrimSpace(sel.Find("span.company").First().Text())
		region := strings.TrimSpace(sel.Find("span.region").Text())

		if title == "" || !matchesAnyKeyword(title, keywords) {
			return
		}

		results = append(results, RawJob{
			"title":    title,
			"company":  company,
			"url":      wwrBaseURL + href,
			"location": region,
		})
	})

	return results, nil
}

func (s *WeWorkRemotely) Normalize(raw RawJob) (*job.Posting, error) {
	return Normalize(s.Platform(), raw)
}
