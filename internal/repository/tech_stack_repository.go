package repository

import (
	"context"

	"job-navigator/internal/database"
	"job-navigator/internal/domain/job"
)

type TechStackRepository interface {
	FindAll(ctx context.Context) ([]job.TechStack, error)
	FindByCategory(ctx context.Context, category job.TechStackCategory) ([]job.TechStack, error)
	FindByIDs(ctx context.Context, ids []int64) ([]job.TechStack, error)
	FindByName(ctx context.Context, name string) (job.TechStack, bool, error)
	Save(ctx context.Context, t job.TechStack) (job.TechStack, error)
}

type PostgresTechStackRepository struct {
	db database.DB
}

func NewPostgresTechStackRepository(db database.DB) *PostgresTechStackRepository {
	return &PostgresTechStackRepository{db: db}
}

func (r *PostgresTechStackRepository) FindAll(ctx context.Context) ([]job.TechStack, error) {
	return r.list(ctx, `SELECT id, name, category FROM tech_stacks ORDER BY category ASC, name ASC`)
}

func (r *PostgresTechStackRepository) FindByCategory(ctx context.Context, category job.TechStackCategory) ([]job.TechStack, error) {
	return r.list(ctx,
		`SELECT id, name, category FROM tech_stacks WHERE category = $1 ORDER BY name ASC`,
		string(category),
	)
}

func (r *PostgresTechStackRepository) FindByIDs(ctx context.Context, ids []int64) ([]job.TechStack, error) {
	if len(ids) == 0 {
		return []job.TechStack{}, nil
	}
	return r.list(ctx,
		`SELECT id, name, category FROM tech_stacks WHERE id = ANY($1) ORDER BY id ASC`,
		ids,
	)
}

// FindByName matches case-insensitively. When the name exists under several
// categories the oldest row wins.
func (r *PostgresTechStackRepository) FindByName(ctx context.Context, name string) (job.TechStack, bool, error) {
	var (
		t        job.TechStack
		category string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, category FROM tech_stacks WHERE lower(name) = lower($1) ORDER BY id ASC LIMIT 1`,
		name,
	).Scan(&t.ID, &t.Name, &category)
	if err != nil {
		if isNoRows(err) {
			return job.TechStack{}, false, nil
		}
		return job.TechStack{}, false, err
	}
	t.Category = job.TechStackCategory(category)
	return t, true, nil
}

func (r *PostgresTechStackRepository) Save(ctx context.Context, t job.TechStack) (job.TechStack, error) {
	var (
		out      job.TechStack
		category string
	)
	err := r.db.QueryRow(ctx,
		`INSERT INTO tech_stacks (name, category)
		 VALUES ($1, $2)
		 ON CONFLICT (name, category) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, category`,
		t.Name, string(t.Category),
	).Scan(&out.ID, &out.Name, &category)
	if err != nil {
		return job.TechStack{}, err
	}
	out.Category = job.TechStackCategory(category)
	return out, nil
}

func (r *PostgresTechStackRepository) list(ctx context.Context, query string, args ...any) ([]job.TechStack, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.TechStack, 0)
	for rows.Next() {
		var (
			t        job.TechStack
			category string
		)
		if err := rows.Scan(&t.ID, &t.Name, &category); err != nil {
			return nil, err
		}
		t.Category = job.TechStackCategory(category)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
