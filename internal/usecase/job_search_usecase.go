package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/domain/matching"
	"job-navigator/internal/logger"
	"job-navigator/internal/repository"
	"job-navigator/internal/search"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type SearchResult = search.Page[job.Job]

type RankParams struct {
	TechStackIDs []int64
	MinScore     *float64
	// Limit caps the returned results; 0 returns all of them.
	Limit int
}

type RankResult struct {
	Results       []matching.Result
	TotalMatched  int
	MissingSkills []matching.MissingSkill
}

type JobSearchUsecase interface {
	Search(ctx context.Context, q search.Query) (SearchResult, error)
	GetDetail(ctx context.Context, id int64) (job.Job, error)
	Match(ctx context.Context, id int64, techStackIDs []int64) (matching.Result, error)
	Rank(ctx context.Context, p RankParams) (RankResult, error)
	FacetCounts(ctx context.Context) (search.FacetCounts, error)
	EvictCache(ctx context.Context) error
}

type JobSearchOptions struct {
	JobTTL               time.Duration
	SearchTTL            time.Duration
	FacetCountsFromStore bool
	Now                  func() time.Time
}

// JobSearch answers read queries against one snapshot of the active catalog
// per request. Concurrent snapshot loads are collapsed into one store query.
type JobSearch struct {
	jobs       repository.JobRepository
	counts     repository.JobCountRepository
	techStacks repository.TechStackRepository
	cache      SearchCache
	opts       JobSearchOptions
	logger     *zap.Logger

	loads singleflight.Group
}

func NewJobSearchUsecase(
	jobs repository.JobRepository,
	counts repository.JobCountRepository,
	techStacks repository.TechStackRepository,
	cache SearchCache,
	opts JobSearchOptions,
	log *zap.Logger,
) *JobSearch {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &JobSearch{
		jobs:       jobs,
		counts:     counts,
		techStacks: techStacks,
		cache:      cache,
		opts:       opts,
		logger:     logger.OrNop(log),
	}
}

func (u *JobSearch) Search(ctx context.Context, q search.Query) (SearchResult, error) {
	if err := q.Validate(); err != nil {
		return SearchResult{}, err
	}

	key := SearchCacheKey(q)
	if u.cache != nil {
		var cached SearchResult
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			u.logger.Debug("search cache hit", zap.String("key", key))
			return cached, nil
		}
		u.logger.Debug("search cache miss", zap.String("key", key))
	}

	all, err := u.snapshot(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	filtered := search.Filter(all, q)
	search.Sort(filtered, q.SortBy, q.SortDirection)
	page := search.Paginate(filtered, q.Page, q.Size)

	u.logger.Debug("search completed",
		zap.Int("snapshot", len(all)),
		zap.Int("matched", page.TotalElements),
		zap.Int("page", q.Page),
	)

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, page, u.opts.SearchTTL)
	}
	return page, nil
}

func (u *JobSearch) GetDetail(ctx context.Context, id int64) (job.Job, error) {
	if id <= 0 {
		return job.Job{}, fmt.Errorf("%w: id %d", ErrJobNotFound, id)
	}

	key := JobCacheKey(id)
	if u.cache != nil {
		var cached job.Job
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	j, err := u.jobs.LoadJobByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return job.Job{}, fmt.Errorf("%w: id %d", ErrJobNotFound, id)
		}
		return job.Job{}, u.internal("load job", err)
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, j, u.opts.JobTTL)
	}
	return j, nil
}

// Match explains how one job lines up with the given tech stacks.
func (u *JobSearch) Match(ctx context.Context, id int64, techStackIDs []int64) (matching.Result, error) {
	skills, err := u.resolveSkills(ctx, techStackIDs)
	if err != nil {
		return matching.Result{}, err
	}
	j, err := u.GetDetail(ctx, id)
	if err != nil {
		return matching.Result{}, err
	}
	return matching.Explain(j, skills), nil
}

// Rank scores every open posting in the snapshot against the given tech stacks.
func (u *JobSearch) Rank(ctx context.Context, p RankParams) (RankResult, error) {
	if p.Limit < 0 {
		return RankResult{}, fmt.Errorf("%w: limit must be non-negative", ErrInvalidQuery)
	}
	skills, err := u.resolveSkills(ctx, p.TechStackIDs)
	if err != nil {
		return RankResult{}, err
	}

	all, err := u.snapshot(ctx)
	if err != nil {
		return RankResult{}, err
	}

	results, err := matching.Rank(all, skills, matching.RankOptions{MinScore: p.MinScore, Now: u.opts.Now()})
	if err != nil {
		return RankResult{}, err
	}

	out := RankResult{
		TotalMatched:  len(results),
		MissingSkills: matching.MissingSkills(results),
	}
	if p.Limit > 0 && len(results) > p.Limit {
		results = results[:p.Limit]
	}
	out.Results = results
	return out, nil
}

// FacetCounts reports per-company, per-tech-stack and per-experience counts of
// active postings. Counts come from the store's grouped queries when enabled,
// otherwise from aggregating a snapshot; both count the same way.
func (u *JobSearch) FacetCounts(ctx context.Context) (search.FacetCounts, error) {
	if u.opts.FacetCountsFromStore && u.counts != nil {
		return u.storeFacetCounts(ctx)
	}

	all, err := u.snapshot(ctx)
	if err != nil {
		return search.FacetCounts{}, err
	}
	fc, err := search.Aggregate(all)
	if err != nil {
		return search.FacetCounts{}, u.internal("aggregate facets", err)
	}
	return fc, nil
}

func (u *JobSearch) storeFacetCounts(ctx context.Context) (search.FacetCounts, error) {
	byCompany, err := u.counts.CountActiveJobsByCompany(ctx)
	if err != nil {
		return search.FacetCounts{}, u.internal("count by company", err)
	}
	byTechStack, err := u.counts.CountActiveJobsByTechStack(ctx)
	if err != nil {
		return search.FacetCounts{}, u.internal("count by tech stack", err)
	}
	byCategory, err := u.counts.CountActiveJobsByExperienceCategory(ctx)
	if err != nil {
		return search.FacetCounts{}, u.internal("count by experience", err)
	}

	return search.FacetCounts{
		ByCompany:            byCompany,
		ByTechStack:          byTechStack,
		ByExperienceCategory: byCategory,
	}.ZeroFilled(), nil
}

// EvictCache drops every cached job detail and search page.
func (u *JobSearch) EvictCache(ctx context.Context) error {
	if u.cache == nil {
		return nil
	}
	if err := u.cache.EvictAll(ctx); err != nil {
		return u.internal("evict cache", err)
	}
	return nil
}

func (u *JobSearch) snapshot(ctx context.Context) ([]job.Job, error) {
	// The load is shared by every concurrent caller, so one caller giving up
	// must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := u.loads.Do("active-jobs", func() (any, error) {
		return u.jobs.LoadActiveJobs(loadCtx)
	})
	if err != nil {
		return nil, u.internal("load active jobs", err)
	}
	if shared {
		u.logger.Debug("snapshot load shared")
	}
	return v.([]job.Job), nil
}

// resolveSkills turns tech stack ids into a skill set. Unknown ids are a
// caller error, not an empty match.
func (u *JobSearch) resolveSkills(ctx context.Context, ids []int64) (matching.SkillSet, error) {
	if len(ids) == 0 {
		return matching.SkillSet{}, nil
	}
	stacks, err := u.techStacks.FindByIDs(ctx, ids)
	if err != nil {
		return nil, u.internal("load tech stacks", err)
	}
	found := make(map[int64]struct{}, len(stacks))
	for _, t := range stacks {
		found[t.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: unknown tech stack id %d", ErrInvalidQuery, id)
		}
	}
	return matching.NewSkillSet(stacks), nil
}

func (u *JobSearch) internal(op string, err error) error {
	u.logger.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
