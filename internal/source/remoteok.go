package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jobsieve/jobsieve/internal/job"
)

const (
	remoteokAPIURL = "https://remoteok.com/api"

	// RemoteOK rejects requests without a browser-looking User-Agent.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

	httpTimeout = 30 * time.Second
)

type remoteokJob struct {
	ID          string   `json:"id"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Epoch       int64    `json:"epoch"`
}

// RemoteOK scrapes the remoteok.com JSON API.
type RemoteOK struct {
	client  *http.Client
	baseURL string
}

func NewRemoteOK() *RemoteOK {
	return &RemoteOK{
		client:  &http.Client{Timeout: httpTimeout},
		baseURL: remoteokAPIURL,
	}
}

func (s *RemoteOK) Platform() string { return "remoteok" }

func (s *RemoteOK) Scrape(ctx context.Context, params Params) ([]RawJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remoteok returned %s", resp.Status)
	}

	// The first array element is a legal notice with no ID; it is skipped
	// below along with any other incomplete entries.
	var jobs []remoteokJob
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("decode remoteok response: %w", err)
	}

	keywords := lowerAll(params.Keywords)

	var cutoff time.Time
	if params.MaxAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -params.MaxAgeDays)
	}

	var results []RawJob
	for _, j := range jobs {
		if j.ID == "" || j.Position == "" {
			continue
		}
		if !cutoff.IsZero() && time.Unix(j.Epoch, 0).Before(cutoff) {
			continue
		}
		if !matchesAnyKeyword(j.Position+" "+strings.Join(j.Tags, " "), keywords) {
			continue
		}

		results = append(results, RawJob{
			"title":       j.Position,
			"company":     j.Company,
			"url":         j.URL,
			"location":    j.Location,
			"description": j.Description + " " + strings.Join(j.Tags, " "),
		})

		if params.Limit > 0 && len(results) >= params.Limit {
			break
		}
	}

	return results, nil
}

func (s *RemoteOK) Normalize(raw RawJob) (*job.Posting, error) {
	return Normalize(s.Platform(), raw)
}

func lowerAll(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			result = append(result, k)
		}
	}
	return result
}

// matchesAnyKeyword reports whether any keyword appears in text. An empty
// keyword list matches everything.
func matchesAnyKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
