package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobsieve/jobsieve/internal/filtering"
	"github.com/jobsieve/jobsieve/internal/job"
)

// StoredJob is a posting with its database identity.
type StoredJob struct {
	ID      int64
	Posting job.Posting
}

// JobsRepo persists postings. job_link is unique; inserting a duplicate
// link is a no-op.
type JobsRepo struct {
	pool *pgxpool.Pool
}

func NewJobsRepo(pool *pgxpool.Pool) *JobsRepo {
	return &JobsRepo{pool: pool}
}

// Insert stores a posting, reporting whether a new row was created. The
// returned id is zero for duplicates.
func (r *JobsRepo) Insert(ctx context.Context, p *job.Posting) (bool, int64, error) {
	var salaryAmount *int64
	var salaryCurrency *string
	if p.Salary != nil {
		salaryAmount = &p.Salary.Amount
		salaryCurrency = &p.Salary.Currency
	}

	var expMin, expMax *float64
	if p.Experience != nil {
		expMin = p.Experience.Min
		expMax = p.Experience.Max
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO jobs (platform, job_title, company, job_link, location, job_description,
		                   salary_min, salary_currency, experience_min, experience_max)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (job_link) DO NOTHING
		 RETURNING id`,
		p.Platform, p.Title, p.Company, p.Link, p.Location, p.Description,
		salaryAmount, salaryCurrency, expMin, expMax,
	).Scan(&id)

	if err == pgx.ErrNoRows {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("insert job: %w", err)
	}

	return true, id, nil
}

// SetOutcome records the filter outcome for a job.
func (r *JobsRepo) SetOutcome(ctx context.Context, jobID int64, outcome filtering.Outcome) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs
		 SET filter_outcome = $2, filter_reason = $3, filter_confidence = $4
		 WHERE id = $1`,
		jobID, string(outcome.Code), outcome.Reason, outcome.Confidence,
	)
	if err != nil {
		return fmt.Errorf("set job outcome: %w", err)
	}
	return nil
}

// Unscored returns kept jobs without a score for the candidate, oldest
// first. The caller uses this to avoid re-invoking the scoring oracle for
// already-scored jobs.
func (r *JobsRepo) Unscored(ctx context.Context, candidateID string, limit int) ([]*StoredJob, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT j.id, j.platform, j.job_title, j.company, j.job_link, j.location, j.job_description,
		        j.salary_min, j.salary_currency, j.experience_min, j.experience_max
		 FROM jobs j
		 WHERE j.filter_outcome IN ($2, $3)
		   AND NOT EXISTS (
		     SELECT 1 FROM scores s WHERE s.job_id = j.id AND s.candidate_id = $1
		   )
		 ORDER BY j.id
		 LIMIT $4`,
		candidateID, string(filtering.KeptPassedFilters), string(filtering.KeptAIApproved), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query unscored jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*StoredJob
	for rows.Next() {
		var stored StoredJob
		var salaryAmount *int64
		var salaryCurrency *string
		var expMin, expMax *float64

		if err := rows.Scan(
			&stored.ID,
			&stored.Posting.Platform,
			&stored.Posting.Title,
			&stored.Posting.Company,
			&stored.Posting.Link,
			&stored.Posting.Location,
			&stored.Posting.Description,
			&salaryAmount, &salaryCurrency, &expMin, &expMax,
		); err != nil {
			return nil, fmt.Errorf("scan unscored job: %w", err)
		}

		if salaryAmount != nil {
			currency := ""
			if salaryCurrency != nil {
				currency = *salaryCurrency
			}
			stored.Posting.Salary = &job.Salary{Amount: *salaryAmount, Currency: currency}
		}
		if expMin != nil || expMax != nil {
			stored.Posting.Experience = &job.Experience{Min: expMin, Max: expMax}
		}

		jobs = append(jobs, &stored)
	}

	return jobs, rows.Err()
}
