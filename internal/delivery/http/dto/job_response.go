package dto

import (
	"math"
	"time"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/domain/matching"
	"job-navigator/internal/usecase"
)

type JobItemResponse struct {
	ID          int64    `json:"id"`
	Company     string   `json:"company"`
	CompanyLogo string   `json:"company_logo"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience"`
	Location    string   `json:"location"`
	Deadline    string   `json:"deadline"`
	MatchScore  *int     `json:"match_score,omitempty"`
}

type JobSearchResponse struct {
	Content       []JobItemResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int               `json:"total_elements"`
	TotalPages    int               `json:"total_pages"`
	First         bool              `json:"first"`
	Last          bool              `json:"last"`
}

type TechStackResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	DisplayName string `json:"category_display_name"`
}

type JobDetailResponse struct {
	JobItemResponse
	CompanyID             int64               `json:"company_id"`
	CompanyLogoURL        string              `json:"company_logo_url,omitempty"`
	Requirements          string              `json:"requirements,omitempty"`
	Preferred             string              `json:"preferred,omitempty"`
	JobType               string              `json:"job_type,omitempty"`
	ExperienceCategory    string              `json:"experience_category"`
	ExperienceRequirement string              `json:"experience_requirement,omitempty"`
	SourceURL             string              `json:"source_url"`
	Active                bool                `json:"active"`
	PostedAt              string              `json:"posted_at,omitempty"`
	ExpiresAt             string              `json:"expires_at,omitempty"`
	RequiredTechStacks    []TechStackResponse `json:"required_tech_stacks"`
	PreferredTechStacks   []TechStackResponse `json:"preferred_tech_stacks"`
}

type MatchResponse struct {
	JobID                int64               `json:"job_id"`
	MatchScore           float64             `json:"match_score"`
	MatchPercent         int                 `json:"match_percent"`
	HasAllRequiredSkills bool                `json:"has_all_required_skills"`
	MatchedRequired      []TechStackResponse `json:"matched_required"`
	MatchedPreferred     []TechStackResponse `json:"matched_preferred"`
	MissingRequired      []TechStackResponse `json:"missing_required"`
	MissingPreferred     []TechStackResponse `json:"missing_preferred"`
}

type MissingSkillResponse struct {
	TechStackResponse
	JobCount int `json:"job_count"`
}

type RankResponse struct {
	Results       []MatchedJobResponse   `json:"results"`
	TotalMatched  int                    `json:"total_matched"`
	MissingSkills []MissingSkillResponse `json:"missing_skills"`
}

type MatchedJobResponse struct {
	Job   JobItemResponse `json:"job"`
	Match MatchResponse   `json:"match"`
}

// MatchPercent renders a 0..1 score as a rounded percentage.
func MatchPercent(score float64) int {
	return int(math.Round(score * 100))
}

func NewJobItem(j job.Job) JobItemResponse {
	return JobItemResponse{
		ID:          j.ID,
		Company:     j.Company.Name,
		CompanyLogo: j.Company.CompanyInitial(),
		Title:       j.Title,
		Description: j.Description,
		Skills:      j.SkillNames(),
		Experience:  j.ExperienceText(),
		Location:    j.Location,
		Deadline:    j.DeadlineText(),
	}
}

func NewJobSearch(p usecase.SearchResult) JobSearchResponse {
	content := make([]JobItemResponse, 0, len(p.Items))
	for _, j := range p.Items {
		content = append(content, NewJobItem(j))
	}
	return JobSearchResponse{
		Content:       content,
		Page:          p.CurrentPage,
		Size:          p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}

func NewJobDetail(j job.Job) JobDetailResponse {
	return JobDetailResponse{
		JobItemResponse:       NewJobItem(j),
		CompanyID:             j.Company.ID,
		CompanyLogoURL:        j.Company.LogoURL,
		Requirements:          j.Requirements,
		Preferred:             j.Preferred,
		JobType:               string(j.JobType),
		ExperienceCategory:    string(j.EffectiveExperienceCategory()),
		ExperienceRequirement: j.ExperienceRequirement,
		SourceURL:             j.SourceURL,
		Active:                j.Active,
		PostedAt:              formatTime(j.PostedAt),
		ExpiresAt:             formatTime(j.ExpiresAt),
		RequiredTechStacks:    NewTechStacks(j.RequiredTechStacks),
		PreferredTechStacks:   NewTechStacks(j.PreferredTechStacks),
	}
}

func NewTechStack(t job.TechStack) TechStackResponse {
	return TechStackResponse{
		ID:          t.ID,
		Name:        t.Name,
		Category:    string(t.Category),
		DisplayName: t.Category.DisplayName(),
	}
}

func NewTechStacks(in []job.TechStack) []TechStackResponse {
	out := make([]TechStackResponse, 0, len(in))
	for _, t := range in {
		out = append(out, NewTechStack(t))
	}
	return out
}

func NewMatch(r matching.Result) MatchResponse {
	return MatchResponse{
		JobID:                r.Job.ID,
		MatchScore:           r.MatchScore,
		MatchPercent:         MatchPercent(r.MatchScore),
		HasAllRequiredSkills: r.HasAllRequiredSkills(),
		MatchedRequired:      NewTechStacks(r.MatchedRequired),
		MatchedPreferred:     NewTechStacks(r.MatchedPreferred),
		MissingRequired:      NewTechStacks(r.MissingRequired),
		MissingPreferred:     NewTechStacks(r.MissingPreferred),
	}
}

func NewRank(r usecase.RankResult) RankResponse {
	results := make([]MatchedJobResponse, 0, len(r.Results))
	for _, it := range r.Results {
		item := NewJobItem(it.Job)
		pct := MatchPercent(it.MatchScore)
		item.MatchScore = &pct
		results = append(results, MatchedJobResponse{Job: item, Match: NewMatch(it)})
	}
	missing := make([]MissingSkillResponse, 0, len(r.MissingSkills))
	for _, m := range r.MissingSkills {
		missing = append(missing, MissingSkillResponse{TechStackResponse: NewTechStack(m.TechStack), JobCount: m.Count})
	}
	return RankResponse{Results: results, TotalMatched: r.TotalMatched, MissingSkills: missing}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
