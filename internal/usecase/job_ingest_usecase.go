package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/logger"
	"job-navigator/internal/repository"

	"go.uber.org/zap"
)

// SaveJobCommand is one crawled posting. ExperienceLevel is the deprecated
// encoding and only applies when ExperienceCategory is empty.
type SaveJobCommand struct {
	Title                   string
	Description             string
	Requirements            string
	Preferred               string
	Location                string
	JobType                 string
	ExperienceLevel         string
	ExperienceCategory      string
	ExperienceRequirement   string
	SourceURL               string
	CompanyName             string
	CompanyWebsite          string
	TechStackNames          []string
	PreferredTechStackNames []string
	PostedAt                *time.Time
	ExpiresAt               *time.Time
}

type JobIngestUsecase interface {
	SaveJob(ctx context.Context, cmd SaveJobCommand) (int64, error)
	SaveBatch(ctx context.Context, cmds []SaveJobCommand) ([]int64, error)
}

// CatalogNotifier is told when new postings become visible.
type CatalogNotifier interface {
	NotifyJobsUpdated(jobIDs []int64)
}

type JobIngest struct {
	jobs       repository.JobRepository
	companies  repository.CompanyRepository
	techStacks repository.TechStackRepository
	cache      SearchCache
	notifier   CatalogNotifier
	logger     *zap.Logger
}

func NewJobIngestUsecase(
	jobs repository.JobRepository,
	companies repository.CompanyRepository,
	techStacks repository.TechStackRepository,
	cache SearchCache,
	notifier CatalogNotifier,
	log *zap.Logger,
) *JobIngest {
	return &JobIngest{
		jobs:       jobs,
		companies:  companies,
		techStacks: techStacks,
		cache:      cache,
		notifier:   notifier,
		logger:     logger.OrNop(log),
	}
}

func (u *JobIngest) SaveJob(ctx context.Context, cmd SaveJobCommand) (int64, error) {
	id, err := u.saveOne(ctx, cmd)
	if err != nil {
		return 0, err
	}
	u.published(ctx, []int64{id})
	return id, nil
}

// SaveBatch saves commands in order and stops at the first failure. Postings
// saved before the failure stay saved and their ids are returned with the
// error.
func (u *JobIngest) SaveBatch(ctx context.Context, cmds []SaveJobCommand) ([]int64, error) {
	ids := make([]int64, 0, len(cmds))
	for i, cmd := range cmds {
		id, err := u.saveOne(ctx, cmd)
		if err != nil {
			u.published(ctx, ids)
			return ids, fmt.Errorf("item %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	u.published(ctx, ids)
	return ids, nil
}

func (u *JobIngest) saveOne(ctx context.Context, cmd SaveJobCommand) (int64, error) {
	draft, err := u.draft(cmd)
	if err != nil {
		return 0, err
	}

	_, exists, err := u.jobs.LoadJobBySourceURL(ctx, draft.SourceURL)
	if err != nil {
		return 0, u.internal("load job by source url", err)
	}
	if exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateJob, draft.SourceURL)
	}

	company, err := u.company(ctx, cmd)
	if err != nil {
		return 0, err
	}
	draft.Company = company

	for _, name := range cmd.TechStackNames {
		ts, ok, err := u.techStack(ctx, name)
		if err != nil {
			return 0, err
		}
		if ok {
			draft = draft.AddRequiredTechStack(ts)
		}
	}
	for _, name := range cmd.PreferredTechStackNames {
		ts, ok, err := u.techStack(ctx, name)
		if err != nil {
			return 0, err
		}
		if ok {
			draft = draft.AddPreferredTechStack(ts)
		}
	}

	id, err := u.jobs.SaveJob(ctx, draft)
	if err != nil {
		if errors.Is(err, ErrDuplicateJob) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateJob, draft.SourceURL)
		}
		return 0, u.internal("save job", err)
	}

	u.logger.Info("job saved",
		zap.Int64("job_id", id),
		zap.String("company", company.Name),
		zap.String("source_url", draft.SourceURL),
	)
	return id, nil
}

// draft validates the command before anything is written.
func (u *JobIngest) draft(cmd SaveJobCommand) (job.Job, error) {
	companyName := strings.TrimSpace(cmd.CompanyName)
	j, err := job.NewJob(job.Company{Name: companyName}, strings.TrimSpace(cmd.Title), cmd.Description, strings.TrimSpace(cmd.SourceURL))
	if err != nil {
		return job.Job{}, err
	}
	jobType, err := job.ParseJobType(cmd.JobType)
	if err != nil {
		return job.Job{}, err
	}
	category, err := job.ResolveExperienceCategory(cmd.ExperienceCategory, cmd.ExperienceLevel)
	if err != nil {
		return job.Job{}, err
	}
	if cmd.PostedAt != nil && cmd.ExpiresAt != nil && cmd.ExpiresAt.Before(*cmd.PostedAt) {
		return job.Job{}, fmt.Errorf("%w: expires_at is before posted_at", ErrInvalidInput)
	}
	for _, list := range [][]string{cmd.TechStackNames, cmd.PreferredTechStackNames} {
		for _, name := range list {
			if strings.TrimSpace(name) == "" {
				continue
			}
			if _, err := job.NewTechStack(name, job.TechOther); err != nil {
				return job.Job{}, err
			}
		}
	}

	return j.WithDetails(job.Details{
		Requirements:          cmd.Requirements,
		Preferred:             cmd.Preferred,
		JobType:               jobType,
		ExperienceRequirement: strings.TrimSpace(cmd.ExperienceRequirement),
		ExperienceCategory:    category,
		Location:              strings.TrimSpace(cmd.Location),
		PostedAt:              cmd.PostedAt,
		ExpiresAt:             cmd.ExpiresAt,
	}), nil
}

func (u *JobIngest) company(ctx context.Context, cmd SaveJobCommand) (job.Company, error) {
	name := strings.TrimSpace(cmd.CompanyName)
	c, ok, err := u.companies.FindByName(ctx, name)
	if err != nil {
		return job.Company{}, u.internal("find company", err)
	}
	if ok {
		return c, nil
	}

	c, err = job.NewCompany(name, "", strings.TrimSpace(cmd.CompanyWebsite), "")
	if err != nil {
		return job.Company{}, err
	}
	saved, err := u.companies.Save(ctx, c)
	if err != nil {
		return job.Company{}, u.internal("save company", err)
	}
	u.logger.Info("company created", zap.Int64("company_id", saved.ID), zap.String("name", saved.Name))
	return saved, nil
}

// techStack looks a stack up by name and creates it under OTHER when absent.
// Blank names are skipped.
func (u *JobIngest) techStack(ctx context.Context, name string) (job.TechStack, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return job.TechStack{}, false, nil
	}
	ts, ok, err := u.techStacks.FindByName(ctx, name)
	if err != nil {
		return job.TechStack{}, false, u.internal("find tech stack", err)
	}
	if ok {
		return ts, true, nil
	}

	ts, err = job.NewTechStack(name, job.TechOther)
	if err != nil {
		return job.TechStack{}, false, err
	}
	saved, err := u.techStacks.Save(ctx, ts)
	if err != nil {
		return job.TechStack{}, false, u.internal("save tech stack", err)
	}
	if saved.ID == 0 {
		return job.TechStack{}, false, u.internal("save tech stack",
			fmt.Errorf("%w: tech stack %q saved without id", job.ErrInconsistentReference, name))
	}
	return saved, true, nil
}

// published evicts cached reads and tells listeners about new postings.
func (u *JobIngest) published(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	if u.cache != nil {
		if err := u.cache.EvictAll(ctx); err != nil {
			u.logger.Warn("cache eviction failed", zap.Error(err))
		}
	}
	if u.notifier != nil {
		u.notifier.NotifyJobsUpdated(ids)
	}
}

func (u *JobIngest) internal(op string, err error) error {
	u.logger.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
