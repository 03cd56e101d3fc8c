package usecase

import (
	"context"
	"fmt"
	"sort"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/logger"
	"job-navigator/internal/repository"
	"job-navigator/internal/search"

	"go.uber.org/zap"
)

const MaxPopularLimit = 100

type CompanyCount struct {
	Company job.Company
	Count   int
}

type TechStackCount struct {
	TechStack job.TechStack
	Count     int
}

type ExperienceCategoryCount struct {
	Category job.ExperienceCategory
	Count    int
}

type CatalogUsecase interface {
	Companies(ctx context.Context) ([]job.Company, error)
	ActiveCompanies(ctx context.Context) ([]job.Company, error)
	CompaniesWithCount(ctx context.Context) ([]CompanyCount, error)
	TechStacks(ctx context.Context) ([]job.TechStack, error)
	TechStacksByCategory(ctx context.Context) (map[job.TechStackCategory][]job.TechStack, error)
	PopularTechStacks(ctx context.Context, limit int) ([]TechStackCount, error)
	TechStacksWithCount(ctx context.Context) ([]TechStackCount, error)
	ExperienceCategoriesWithCount(ctx context.Context) ([]ExperienceCategoryCount, error)
}

type facetCounter interface {
	FacetCounts(ctx context.Context) (search.FacetCounts, error)
}

// Catalog serves the browse endpoints. Every count it reports goes through
// the same facet counter as the search engine.
type Catalog struct {
	companies  repository.CompanyRepository
	techStacks repository.TechStackRepository
	facets     facetCounter
	logger     *zap.Logger
}

func NewCatalogUsecase(companies repository.CompanyRepository, techStacks repository.TechStackRepository, facets facetCounter, log *zap.Logger) *Catalog {
	return &Catalog{companies: companies, techStacks: techStacks, facets: facets, logger: logger.OrNop(log)}
}

func (u *Catalog) Companies(ctx context.Context) ([]job.Company, error) {
	out, err := u.companies.FindAll(ctx)
	if err != nil {
		return nil, u.internal("list companies", err)
	}
	return out, nil
}

func (u *Catalog) ActiveCompanies(ctx context.Context) ([]job.Company, error) {
	out, err := u.companies.FindWithActiveJobs(ctx)
	if err != nil {
		return nil, u.internal("list active companies", err)
	}
	return out, nil
}

// CompaniesWithCount lists companies with at least one active posting, most
// postings first.
func (u *Catalog) CompaniesWithCount(ctx context.Context) ([]CompanyCount, error) {
	companies, err := u.companies.FindAll(ctx)
	if err != nil {
		return nil, u.internal("list companies", err)
	}
	fc, err := u.facets.FacetCounts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CompanyCount, 0, len(companies))
	for _, c := range companies {
		if n := fc.ByCompany[c.ID]; n > 0 {
			out = append(out, CompanyCount{Company: c, Count: n})
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		if out[i].Count != out[k].Count {
			return out[i].Count > out[k].Count
		}
		return out[i].Company.Name < out[k].Company.Name
	})
	return out, nil
}

func (u *Catalog) TechStacks(ctx context.Context) ([]job.TechStack, error) {
	out, err := u.techStacks.FindAll(ctx)
	if err != nil {
		return nil, u.internal("list tech stacks", err)
	}
	return out, nil
}

func (u *Catalog) TechStacksByCategory(ctx context.Context) (map[job.TechStackCategory][]job.TechStack, error) {
	all, err := u.TechStacks(ctx)
	if err != nil {
		return nil, err
	}
	out := map[job.TechStackCategory][]job.TechStack{}
	for _, t := range all {
		out[t.Category] = append(out[t.Category], t)
	}
	return out, nil
}

// PopularTechStacks returns the limit stacks with the most active postings.
func (u *Catalog) PopularTechStacks(ctx context.Context, limit int) ([]TechStackCount, error) {
	if limit < 1 || limit > MaxPopularLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxPopularLimit)
	}
	counted, err := u.TechStacksWithCount(ctx)
	if err != nil {
		return nil, err
	}
	if len(counted) > limit {
		counted = counted[:limit]
	}
	return counted, nil
}

// TechStacksWithCount lists stacks referenced by at least one active posting,
// most postings first. A count for a stack the store does not know about is an
// integrity fault.
func (u *Catalog) TechStacksWithCount(ctx context.Context) ([]TechStackCount, error) {
	stacks, err := u.techStacks.FindAll(ctx)
	if err != nil {
		return nil, u.internal("list tech stacks", err)
	}
	fc, err := u.facets.FacetCounts(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]job.TechStack, len(stacks))
	for _, t := range stacks {
		byID[t.ID] = t
	}

	out := make([]TechStackCount, 0, len(fc.ByTechStack))
	for id, n := range fc.ByTechStack {
		if n <= 0 {
			continue
		}
		t, ok := byID[id]
		if !ok {
			return nil, u.internal("count tech stacks",
				fmt.Errorf("%w: counted tech stack %d does not exist", job.ErrInconsistentReference, id))
		}
		out = append(out, TechStackCount{TechStack: t, Count: n})
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Count != out[k].Count {
			return out[i].Count > out[k].Count
		}
		if out[i].TechStack.Name != out[k].TechStack.Name {
			return out[i].TechStack.Name < out[k].TechStack.Name
		}
		return out[i].TechStack.ID < out[k].TechStack.ID
	})
	return out, nil
}

// ExperienceCategoriesWithCount lists every category in seniority order,
// including those without postings.
func (u *Catalog) ExperienceCategoriesWithCount(ctx context.Context) ([]ExperienceCategoryCount, error) {
	fc, err := u.facets.FacetCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ExperienceCategoryCount, 0, len(job.ExperienceCategories))
	for _, c := range job.ExperienceCategories {
		out = append(out, ExperienceCategoryCount{Category: c, Count: fc.ByExperienceCategory[c]})
	}
	return out, nil
}

func (u *Catalog) internal(op string, err error) error {
	u.logger.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
