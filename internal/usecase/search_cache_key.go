package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"job-navigator/internal/infrastructure/cache"
	"job-navigator/internal/search"
)

type searchCacheKeyInput struct {
	Keyword            string  `json:"keyword"`
	CompanyIDs         []int64 `json:"company_ids"`
	TechStackIDs       []int64 `json:"tech_stack_ids"`
	ExperienceCategory string  `json:"experience_category"`
	JobType            string  `json:"job_type"`
	Location           string  `json:"location"`
	IsActive           *bool   `json:"is_active"`
	Page               int     `json:"page"`
	Size               int     `json:"size"`
	SortBy             string  `json:"sort_by"`
	SortDirection      string  `json:"sort_direction"`
}

func sortedIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// SearchCacheKey hashes every query parameter, so two queries share a key only
// when they select and order the same page. Keyword matching is
// case-insensitive, so the keyword is lowercased; id lists are treated as sets.
func SearchCacheKey(q search.Query) string {
	in := searchCacheKeyInput{
		Keyword:            strings.ToLower(strings.TrimSpace(q.Keyword)),
		CompanyIDs:         sortedIDs(q.CompanyIDs),
		TechStackIDs:       sortedIDs(q.TechStackIDs),
		ExperienceCategory: string(q.ExperienceCategory),
		JobType:            string(q.JobType),
		Location:           q.Location,
		IsActive:           q.IsActive,
		Page:               q.Page,
		Size:               q.Size,
		SortBy:             q.SortBy,
		SortDirection:      q.SortDirection,
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return cache.SearchKeyPrefix + hex.EncodeToString(sum[:])
}

func JobCacheKey(id int64) string {
	return cache.JobKeyPrefix + strconv.FormatInt(id, 10)
}
