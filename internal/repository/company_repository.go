package repository

import (
	"context"
	"time"

	"job-navigator/internal/database"
	"job-navigator/internal/domain/job"
)

type CompanyRepository interface {
	FindAll(ctx context.Context) ([]job.Company, error)
	FindWithActiveJobs(ctx context.Context) ([]job.Company, error)
	FindByName(ctx context.Context, name string) (job.Company, bool, error)
	Save(ctx context.Context, c job.Company) (job.Company, error)
}

type PostgresCompanyRepository struct {
	db database.DB
}

func NewPostgresCompanyRepository(db database.DB) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

const companySelect = `SELECT c.id, c.name, COALESCE(c.name_en, ''), COALESCE(c.career_page_url, ''),
		COALESCE(c.logo_url, ''), c.created_at, c.updated_at
	 FROM companies c`

func scanCompany(row scanner) (job.Company, error) {
	var c job.Company
	err := row.Scan(&c.ID, &c.Name, &c.NameEn, &c.CareerPageURL, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresCompanyRepository) FindAll(ctx context.Context) ([]job.Company, error) {
	return r.list(ctx, companySelect+` ORDER BY c.name ASC`)
}

// FindWithActiveJobs returns companies that have at least one active posting.
func (r *PostgresCompanyRepository) FindWithActiveJobs(ctx context.Context) ([]job.Company, error) {
	return r.list(ctx, companySelect+`
	 WHERE EXISTS (SELECT 1 FROM job_postings jp WHERE jp.company_id = c.id AND jp.is_active = TRUE)
	 ORDER BY c.name ASC`)
}

func (r *PostgresCompanyRepository) FindByName(ctx context.Context, name string) (job.Company, bool, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, companySelect+` WHERE c.name = $1`, name))
	if err != nil {
		if isNoRows(err) {
			return job.Company{}, false, nil
		}
		return job.Company{}, false, err
	}
	return c, true, nil
}

// Save inserts the company or, when the name already exists, returns the
// stored row. Concurrent ingestions of the same company converge on one id.
func (r *PostgresCompanyRepository) Save(ctx context.Context, c job.Company) (job.Company, error) {
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx,
		`INSERT INTO companies (name, name_en, career_page_url, logo_url, created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $5)
		 ON CONFLICT (name) DO UPDATE SET updated_at = companies.updated_at
		 RETURNING id, name, COALESCE(name_en, ''), COALESCE(career_page_url, ''),
			COALESCE(logo_url, ''), created_at, updated_at`,
		c.Name, c.NameEn, c.CareerPageURL, c.LogoURL, now,
	)
	return scanCompany(row)
}

func (r *PostgresCompanyRepository) list(ctx context.Context, query string, args ...any) ([]job.Company, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
