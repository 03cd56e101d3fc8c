package repository

import (
	"context"

	"job-navigator/internal/database"
	"job-navigator/internal/domain/job"
)

type CrawlLogRepository interface {
	Save(ctx context.Context, l job.CrawlLog) (int64, error)
}

type PostgresCrawlLogRepository struct {
	db database.DB
}

func NewPostgresCrawlLogRepository(db database.DB) *PostgresCrawlLogRepository {
	return &PostgresCrawlLogRepository{db: db}
}

func (r *PostgresCrawlLogRepository) Save(ctx context.Context, l job.CrawlLog) (int64, error) {
	var companyID *int64
	if l.CompanyID != 0 {
		companyID = &l.CompanyID
	}
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO crawl_logs (company_id, target, status, jobs_found, jobs_created, jobs_skipped,
			error_message, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		 RETURNING id`,
		companyID, l.Target, string(l.Status), l.JobsFound, l.JobsCreated, l.JobsSkipped,
		l.ErrorMessage, l.StartedAt, l.FinishedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
