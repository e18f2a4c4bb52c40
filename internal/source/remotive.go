package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jobsieve/jobsieve/internal/job"
)

const remotiveAPIURL = "https://remotive.com/api/remote-jobs"

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	URL         string `json:"url"`
	Location    string `json:"candidate_required_location"`
	Description string `json:"description"`
	PublishedAt string `json:"publication_date"`
}

// Remotive scrapes the remotive.com public API, one request per keyword.
type Remotive struct {
	client  *http.Client
	baseURL string
}

func NewRemotive() *Remotive {
	return &Remotive{
		client:  &http.Client{Timeout: httpTimeout},
		baseURL: remotiveAPIURL,
	}
}

func (s *Remotive) Platform() string { return "remotive" }

func (s *Remotive) Scrape(ctx context.Context, params Params) ([]RawJob, error) {
	var results []RawJob
	seen := make(map[string]bool)

	keywords := params.Keywords
	if len(keywords) == 0 {
		keywords = []string{""}
	}

	for _, keyword := range keywords {
		batch, err := s.search(ctx, keyword, params)
		if err != nil {
			return results, fmt.Errorf("remotive search %q: %w", keyword, err)
		}

		for _, raw := range batch {
			link := raw["url"]
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			results = append(results, raw)

			if params.Limit > 0 && len(results) >= params.Limit {
				return results, nil
			}
		}
	}

	return results, nil
}

func (s *Remotive) search(ctx context.Context, keyword string, params Params) ([]RawJob, error) {
	q := url.Values{}
	if keyword != "" {
		q.Set("search", keyword)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	reqURL := s.baseURL
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remotive returned %s", resp.Status)
	}

	var apiResp remotiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode remotive response: %w", err)
	}

	var cutoff time.Time
	if params.MaxAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -params.MaxAgeDays)
	}

	results := make([]RawJob, 0, len(apiResp.Jobs))
	for _, j := range apiResp.Jobs {
		if !cutoff.IsZero() {
			if published, err := time.Parse("2006-01-02T15:04:05", j.PublishedAt); err == nil && published.Before(cutoff) {
				continue
			}
		}

		results = append(results, RawJob{
			"title":       j.Title,
			"company":     j.CompanyName,
			"url":         j.URL,
			"location":    j.Location,
			"description": j.Description,
		})
	}

	return results, nil
}

func (s *Remotive) Normalize(raw RawJob) (*job.Posting, error) {
	return Normalize(s.Platform(), raw)
}
