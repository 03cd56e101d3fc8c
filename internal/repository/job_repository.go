package repository

import (
	"context"
	"time"

	"job-navigator/internal/database"
	"job-navigator/internal/domain/job"
)

// JobRepository is the catalog store the search engine reads snapshots from.
type JobRepository interface {
	LoadActiveJobs(ctx context.Context) ([]job.Job, error)
	LoadJobByID(ctx context.Context, id int64) (job.Job, error)
	LoadJobBySourceURL(ctx context.Context, sourceURL string) (job.Job, bool, error)
	SaveJob(ctx context.Context, j job.Job) (int64, error)
}

// JobCountRepository exposes grouped counts over active postings.
type JobCountRepository interface {
	CountActiveJobsByCompany(ctx context.Context) (map[int64]int, error)
	CountActiveJobsByTechStack(ctx context.Context) (map[int64]int, error)
	CountActiveJobsByExperienceCategory(ctx context.Context) (map[job.ExperienceCategory]int, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobSelect = `SELECT jp.id, jp.title, jp.description,
		COALESCE(jp.requirements, ''), COALESCE(jp.preferred, ''),
		COALESCE(jp.job_type, ''), COALESCE(jp.experience_requirement, ''),
		COALESCE(jp.experience_category, ''), COALESCE(jp.location, ''),
		jp.source_url, jp.posted_at, jp.expires_at, jp.is_active,
		jp.crawled_at, jp.created_at, jp.updated_at,
		c.id, c.name, COALESCE(c.name_en, ''), COALESCE(c.career_page_url, ''),
		COALESCE(c.logo_url, ''), c.created_at, c.updated_at
	 FROM job_postings jp
	 JOIN companies c ON c.id = jp.company_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (job.Job, error) {
	var (
		j                 job.Job
		jobType, category string
	)
	err := row.Scan(
		&j.ID, &j.Title, &j.Description,
		&j.Requirements, &j.Preferred,
		&jobType, &j.ExperienceRequirement,
		&category, &j.Location,
		&j.SourceURL, &j.PostedAt, &j.ExpiresAt, &j.Active,
		&j.CrawledAt, &j.CreatedAt, &j.UpdatedAt,
		&j.Company.ID, &j.Company.Name, &j.Company.NameEn, &j.Company.CareerPageURL,
		&j.Company.LogoURL, &j.Company.CreatedAt, &j.Company.UpdatedAt,
	)
	if err != nil {
		return job.Job{}, err
	}
	j.JobType = job.JobType(jobType)
	j.ExperienceCategory = job.ExperienceCategory(category)
	return j, nil
}

// LoadActiveJobs returns every active posting with its tech stacks attached,
// newest first.
func (r *PostgresJobRepository) LoadActiveJobs(ctx context.Context) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, jobSelect+`
	 WHERE jp.is_active = TRUE
	 ORDER BY jp.posted_at DESC NULLS LAST, jp.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTechStacks(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) LoadJobByID(ctx context.Context, id int64) (job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE jp.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, err
	}
	list := []job.Job{j}
	if err := r.attachTechStacks(ctx, list); err != nil {
		return job.Job{}, err
	}
	return list[0], nil
}

func (r *PostgresJobRepository) LoadJobBySourceURL(ctx context.Context, sourceURL string) (job.Job, bool, error) {
	j, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE jp.source_url = $1`, sourceURL))
	if err != nil {
		if isNoRows(err) {
			return job.Job{}, false, nil
		}
		return job.Job{}, false, err
	}
	list := []job.Job{j}
	if err := r.attachTechStacks(ctx, list); err != nil {
		return job.Job{}, false, err
	}
	return list[0], true, nil
}

func (r *PostgresJobRepository) attachTechStacks(ctx context.Context, jobs []job.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	index := make(map[int64]int, len(jobs))
	ids := make([]int64, 0, len(jobs))
	for i, j := range jobs {
		index[j.ID] = i
		ids = append(ids, j.ID)
	}

	rows, err := r.db.Query(ctx,
		`SELECT jts.job_posting_id, jts.is_required, ts.id, ts.name, ts.category
		 FROM job_tech_stacks jts
		 JOIN tech_stacks ts ON ts.id = jts.tech_stack_id
		 WHERE jts.job_posting_id = ANY($1)
		 ORDER BY jts.job_posting_id, ts.name`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jobID    int64
			required bool
			ts       job.TechStack
			category string
		)
		if err := rows.Scan(&jobID, &required, &ts.ID, &ts.Name, &category); err != nil {
			return err
		}
		ts.Category = job.TechStackCategory(category)

		i, ok := index[jobID]
		if !ok {
			continue
		}
		if required {
			jobs[i].RequiredTechStacks = append(jobs[i].RequiredTechStacks, ts)
		} else {
			jobs[i].PreferredTechStacks = append(jobs[i].PreferredTechStacks, ts)
		}
	}
	return rows.Err()
}

// SaveJob inserts a new posting, or updates an existing one by id, together
// with its tech stack links in one transaction. The company and every tech
// stack must already be persisted.
func (r *PostgresJobRepository) SaveJob(ctx context.Context, j job.Job) (int64, error) {
	if j.Company.ID == 0 {
		return 0, integrityFault("company %q is not persisted", j.Company.Name)
	}
	for _, list := range [][]job.TechStack{j.RequiredTechStacks, j.PreferredTechStacks} {
		for _, ts := range list {
			if ts.ID == 0 {
				return 0, integrityFault("tech stack %q is not persisted", ts.Name)
			}
		}
	}

	id := j.ID
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		now := time.Now().UTC()
		if id == 0 {
			row := tx.QueryRow(ctx,
				`INSERT INTO job_postings (company_id, title, description, requirements, preferred,
					job_type, experience_requirement, experience_category, location, source_url,
					posted_at, expires_at, is_active, crawled_at, created_at, updated_at)
				 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
					NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13, $14, $15, $15)
				 RETURNING id`,
				j.Company.ID, j.Title, j.Description, j.Requirements, j.Preferred,
				string(j.JobType), j.ExperienceRequirement, string(j.ExperienceCategory), j.Location, j.SourceURL,
				j.PostedAt, j.ExpiresAt, j.Active, nonZero(j.CrawledAt, now), now,
			)
			if err := row.Scan(&id); err != nil {
				return err
			}
		} else {
			n, err := tx.Exec(ctx,
				`UPDATE job_postings SET company_id = $2, title = $3, description = $4,
					requirements = NULLIF($5, ''), preferred = NULLIF($6, ''), job_type = NULLIF($7, ''),
					experience_requirement = NULLIF($8, ''), experience_category = NULLIF($9, ''),
					location = NULLIF($10, ''), source_url = $11, posted_at = $12, expires_at = $13,
					is_active = $14, updated_at = $15
				 WHERE id = $1`,
				id, j.Company.ID, j.Title, j.Description, j.Requirements, j.Preferred,
				string(j.JobType), j.ExperienceRequirement, string(j.ExperienceCategory),
				j.Location, j.SourceURL, j.PostedAt, j.ExpiresAt, j.Active, now,
			)
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrJobNotFound
			}
			if _, err := tx.Exec(ctx, `DELETE FROM job_tech_stacks WHERE job_posting_id = $1`, id); err != nil {
				return err
			}
		}

		for _, link := range []struct {
			stacks   []job.TechStack
			required bool
		}{
			{j.RequiredTechStacks, true},
			{j.PreferredTechStacks, false},
		} {
			for _, ts := range link.stacks {
				if _, err := tx.Exec(ctx,
					`INSERT INTO job_tech_stacks (job_posting_id, tech_stack_id, is_required)
					 VALUES ($1, $2, $3)
					 ON CONFLICT DO NOTHING`,
					id, ts.ID, link.required,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateSourceURL
		}
		return 0, err
	}
	return id, nil
}

func (r *PostgresJobRepository) CountActiveJobsByCompany(ctx context.Context) (map[int64]int, error) {
	return r.countByID(ctx,
		`SELECT company_id, COUNT(*)
		 FROM job_postings
		 WHERE is_active = TRUE
		 GROUP BY company_id`)
}

// CountActiveJobsByTechStack counts each posting once per stack even when the
// stack is linked as both required and preferred.
func (r *PostgresJobRepository) CountActiveJobsByTechStack(ctx context.Context) (map[int64]int, error) {
	return r.countByID(ctx,
		`SELECT jts.tech_stack_id, COUNT(DISTINCT jp.id)
		 FROM job_tech_stacks jts
		 JOIN job_postings jp ON jp.id = jts.job_posting_id
		 WHERE jp.is_active = TRUE
		 GROUP BY jts.tech_stack_id`)
}

func (r *PostgresJobRepository) CountActiveJobsByExperienceCategory(ctx context.Context) (map[job.ExperienceCategory]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT COALESCE(experience_category, 'ANY'), COUNT(*)
		 FROM job_postings
		 WHERE is_active = TRUE
		 GROUP BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[job.ExperienceCategory]int, len(job.ExperienceCategories))
	for _, c := range job.ExperienceCategories {
		out[c] = 0
	}
	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, err
		}
		c := job.ExperienceCategory(raw)
		if c.Rank() < 0 {
			return nil, integrityFault("unknown experience category %q in store", raw)
		}
		out[c] += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) countByID(ctx context.Context, query string) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]int{}
	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nonZero(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}
