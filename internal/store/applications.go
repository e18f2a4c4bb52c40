package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobsieve/jobsieve/internal/scoring"
)

// ReviewItem is one job waiting in the human-review queue.
type ReviewItem struct {
	ApplicationID int64
	JobTitle      string
	Company       string
	Link          string
	SkillMatch    float64
	Reason        string
}

// ApplicationsRepo persists the terminal decision per (job, candidate).
type ApplicationsRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationsRepo(pool *pgxpool.Pool) *ApplicationsRepo {
	return &ApplicationsRepo{pool: pool}
}

// Create records the decision for a scored job. Recomputing the decision
// for the same score overwrites with the same value, so the write is
// idempotent.
func (r *ApplicationsRepo) Create(ctx context.Context, jobID int64, candidateID string, decision scoring.Action) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO applications (job_id, candidate_id, decision, status)
		 VALUES ($1, $2, $3, 'pending')
		 ON CONFLICT (job_id, candidate_id) DO UPDATE SET
		   decision = EXCLUDED.decision`,
		jobID, candidateID, string(decision),
	)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// PendingReview lists jobs routed to human review that have not been acted
// on yet, strongest skill match first.
func (r *ApplicationsRepo) PendingReview(ctx context.Context, candidateID string, limit int) ([]*ReviewItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, j.job_title, j.company, j.job_link, s.skill_match_score, s.reason
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN scores s ON s.job_id = a.job_id AND s.candidate_id = a.candidate_id
		 WHERE a.candidate_id = $1 AND a.decision = $2 AND a.status = 'pending'
		 ORDER BY s.skill_match_score DESC
		 LIMIT $3`,
		candidateID, string(scoring.HumanReview), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending reviews: %w", err)
	}
	defer rows.Close()

	var items []*ReviewItem
	for rows.Next() {
		var item ReviewItem
		if err := rows.Scan(&item.ApplicationID, &item.JobTitle, &item.Company, &item.Link,
			&item.SkillMatch, &item.Reason); err != nil {
			return nil, fmt.Errorf("scan review item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// SetStatus updates an application's status (e.g. applied, skipped).
func (r *ApplicationsRepo) SetStatus(ctx context.Context, applicationID int64, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE applications SET status = $2 WHERE id = $1`,
		applicationID, status,
	)
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	return nil
}
