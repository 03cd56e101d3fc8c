package search

import (
	"fmt"
	"unicode/utf8"

	"job-navigator/internal/domain/job"
)

const (
	MaxPageSize      = 100
	MaxKeywordLength = 100

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Query is a validated-on-demand search request. Zero values of the facet
// fields mean "no constraint". Keyword length is validated as given; the
// filter ignores surrounding whitespace.
type Query struct {
	Keyword            string
	CompanyIDs         []int64
	TechStackIDs       []int64
	// ExperienceCategory matches a job's effective category, so ANY also
	// selects jobs whose category is unset.
	ExperienceCategory job.ExperienceCategory
	JobType            job.JobType
	Location           string
	IsActive           *bool
	Page               int
	Size               int
	SortBy             string
	SortDirection      string
}

func (q Query) Validate() error {
	if q.Page < 0 {
		return fmt.Errorf("%w: page must be non-negative", job.ErrInvalidQuery)
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d", job.ErrInvalidQuery, MaxPageSize)
	}
	if utf8.RuneCountInString(q.Keyword) > MaxKeywordLength {
		return fmt.Errorf("%w: keyword cannot exceed %d characters", job.ErrInvalidQuery, MaxKeywordLength)
	}
	if q.SortDirection != SortAsc && q.SortDirection != SortDesc {
		return fmt.Errorf("%w: sort direction must be ASC or DESC", job.ErrInvalidQuery)
	}
	return nil
}
