package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func remoteokServer(t *testing.T, payload string) *RemoteOK {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a User-Agent header")
		}
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(server.Close)

	s := NewRemoteOK()
	s.baseURL = server.URL
	return s
}

func TestRemoteOKScrape(t *testing.T) {
	now := time.Now().Unix()
	payload := fmt.Sprintf(`[
		{"legal": "notice without id"},
		{"id": "1", "position": "DevOps Engineer", "company": "Acme",
		 "url": "https://remoteok.com/jobs/1", "location": "Worldwide",
		 "tags": ["kubernetes", "aws"], "description": "Run clusters.", "epoch": %d},
		{"id": "2", "position": "Graphic Designer", "company": "Acme",
		 "url": "https://remoteok.com/jobs/2", "tags": ["design"], "epoch": %d},
		{"id": "3", "position": "Platform Engineer", "company": "Beta",
		 "url": "https://remoteok.com/jobs/3", "tags": ["devops"], "epoch": %d}
	]`, now, now, now)

	s := remoteokServer(t, payload)

	raws, err := s.Scrape(context.Background(), Params{Keywords: []string{"devops", "platform"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(raws) != 2 {
		t.Fatalf("expected 2 matching jobs, got %d: %v", len(raws), raws)
	}

	if raws[0]["title"] != "DevOps Engineer" {
		t.Fatalf("unexpected first job: %v", raws[0])
	}
	if raws[0]["description"] != "Run clusters. kubernetes aws" {
		t.Fatalf("expected tags folded into the description, got %q", raws[0]["description"])
	}

	posting, err := s.Normalize(raws[0])
	if err != nil {
		t.Fatalf("unexpected normalize error: %v", err)
	}
	if posting.Platform != "remoteok" || posting.Link != "https://remoteok.com/jobs/1" {
		t.Fatalf("unexpected posting: %+v", posting)
	}
}

func TestRemoteOKScrapeHonorsLimit(t *testing.T) {
	now := time.Now().Unix()
	payload := fmt.Sprintf(`[
		{"id": "1", "position": "DevOps Engineer", "url": "https://remoteok.com/jobs/1", "epoch": %d},
		{"id": "2", "position": "DevOps Lead", "url": "https://remoteok.com/jobs/2", "epoch": %d}
	]`, now, now)

	s := remoteokServer(t, payload)

	raws, err := s.Scrape(context.Background(), Params{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("expected limit to cap results at 1, got %d", len(raws))
	}
}

func TestRemoteOKScrapeFiltersByAge(t *testing.T) {
	old := time.Now().AddDate(0, 0, -30).Unix()
	payload := fmt.Sprintf(`[
		{"id": "1", "position": "DevOps Engineer", "url": "https://remoteok.com/jobs/1", "epoch": %d}
	]`, old)

	s := remoteokServer(t, payload)

	raws, err := s.Scrape(context.Background(), Params{MaxAgeDays: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raws) != 0 {
		t.Fatalf("expected stale jobs to be dropped, got %d", len(raws))
	}
}

func TestRemoteOKScrapeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	s := NewRemoteOK()
	s.baseURL = server.URL

	if _, err := s.Scrape(context.Background(), Params{}); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}
