package dto

import (
	"strings"
	"time"

	"job-navigator/internal/usecase"
)

// JobBatchRequest is one posting pushed by an external crawler.
type JobBatchRequest struct {
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Requirements          string     `json:"requirements"`
	Preferred             string     `json:"preferred"`
	Location              string     `json:"location"`
	JobType               string     `json:"job_type"`
	ExperienceLevel       string     `json:"experience_level"`
	ExperienceCategory    string     `json:"experience_category"`
	ExperienceRequirement string     `json:"experience_requirement"`
	SourceURL             string     `json:"source_url"`
	CompanyName           string     `json:"company_name"`
	CompanyWebsite        string     `json:"company_website"`
	TechStacks            []string   `json:"tech_stacks"`
	PreferredTechStacks   []string   `json:"preferred_tech_stacks"`
	PostedAt              *time.Time `json:"posted_at"`
	ExpiresAt             *time.Time `json:"expires_at"`
}

type JobBatchResponse struct {
	SavedCount int     `json:"saved_count"`
	JobIDs     []int64 `json:"job_ids"`
}

type RankRequest struct {
	TechStackIDs []int64  `json:"tech_stack_ids"`
	MinScore     *float64 `json:"min_score"`
	Limit        int      `json:"limit"`
}

func (r JobBatchRequest) Command() usecase.SaveJobCommand {
	return usecase.SaveJobCommand{
		Title:                   strings.TrimSpace(r.Title),
		Description:             r.Description,
		Requirements:            r.Requirements,
		Preferred:               r.Preferred,
		Location:                strings.TrimSpace(r.Location),
		JobType:                 r.JobType,
		ExperienceLevel:         r.ExperienceLevel,
		ExperienceCategory:      r.ExperienceCategory,
		ExperienceRequirement:   r.ExperienceRequirement,
		SourceURL:               strings.TrimSpace(r.SourceURL),
		CompanyName:             strings.TrimSpace(r.CompanyName),
		CompanyWebsite:          strings.TrimSpace(r.CompanyWebsite),
		TechStackNames:          r.TechStacks,
		PreferredTechStackNames: r.PreferredTechStacks,
		PostedAt:                r.PostedAt,
		ExpiresAt:               r.ExpiresAt,
	}
}
