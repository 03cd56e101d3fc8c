package dto

import (
	"sort"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/search"
	"job-navigator/internal/usecase"
)

type CompanyResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	NameEn        string `json:"name_en,omitempty"`
	CareerPageURL string `json:"career_page_url,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`
}

type CompanyWithCountResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NameEn   string `json:"name_en,omitempty"`
	JobCount int    `json:"job_count"`
}

type TechStackWithCountResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	JobCount int    `json:"job_count"`
}

type ExperienceCategoryWithCountResponse struct {
	Category    string `json:"category"`
	DisplayName string `json:"display_name"`
	JobCount    int    `json:"job_count"`
}

type FacetCountResponse struct {
	ID    int64 `json:"id"`
	Count int   `json:"count"`
}

type FacetCountsResponse struct {
	Companies            []FacetCountResponse                  `json:"companies"`
	TechStacks           []FacetCountResponse                  `json:"tech_stacks"`
	ExperienceCategories []ExperienceCategoryWithCountResponse `json:"experience_categories"`
}

func NewCompanies(in []job.Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(in))
	for _, c := range in {
		out = append(out, CompanyResponse{
			ID:            c.ID,
			Name:          c.Name,
			NameEn:        c.NameEn,
			CareerPageURL: c.CareerPageURL,
			LogoURL:       c.LogoURL,
		})
	}
	return out
}

func NewCompaniesWithCount(in []usecase.CompanyCount) []CompanyWithCountResponse {
	out := make([]CompanyWithCountResponse, 0, len(in))
	for _, it := range in {
		out = append(out, CompanyWithCountResponse{
			ID:       it.Company.ID,
			Name:     it.Company.Name,
			NameEn:   it.Company.NameEn,
			JobCount: it.Count,
		})
	}
	return out
}

func NewTechStacksWithCount(in []usecase.TechStackCount) []TechStackWithCountResponse {
	out := make([]TechStackWithCountResponse, 0, len(in))
	for _, it := range in {
		out = append(out, TechStackWithCountResponse{
			ID:       it.TechStack.ID,
			Name:     it.TechStack.Name,
			Category: string(it.TechStack.Category),
			JobCount: it.Count,
		})
	}
	return out
}

// NewTechStacksByCategory keys the groups by category code.
func NewTechStacksByCategory(in map[job.TechStackCategory][]job.TechStack) map[string][]TechStackResponse {
	out := make(map[string][]TechStackResponse, len(in))
	for c, stacks := range in {
		out[string(c)] = NewTechStacks(stacks)
	}
	return out
}

func NewExperienceCategoriesWithCount(in []usecase.ExperienceCategoryCount) []ExperienceCategoryWithCountResponse {
	out := make([]ExperienceCategoryWithCountResponse, 0, len(in))
	for _, it := range in {
		out = append(out, ExperienceCategoryWithCountResponse{
			Category:    string(it.Category),
			DisplayName: it.Category.DisplayName(),
			JobCount:    it.Count,
		})
	}
	return out
}

func NewFacetCounts(fc search.FacetCounts) FacetCountsResponse {
	categories := make([]ExperienceCategoryWithCountResponse, 0, len(job.ExperienceCategories))
	for _, c := range job.ExperienceCategories {
		categories = append(categories, ExperienceCategoryWithCountResponse{
			Category:    string(c),
			DisplayName: c.DisplayName(),
			JobCount:    fc.ByExperienceCategory[c],
		})
	}
	return FacetCountsResponse{
		Companies:            sortedCounts(fc.ByCompany),
		TechStacks:           sortedCounts(fc.ByTechStack),
		ExperienceCategories: categories,
	}
}

func sortedCounts(m map[int64]int) []FacetCountResponse {
	out := make([]FacetCountResponse, 0, len(m))
	for id, n := range m {
		out = append(out, FacetCountResponse{ID: id, Count: n})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}
