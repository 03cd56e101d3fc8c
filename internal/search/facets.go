package search

import (
	"fmt"

	"job-navigator/internal/domain/job"

	goerrors "github.com/go-errors/errors"
)

type FacetCounts struct {
	ByCompany            map[int64]int
	ByTechStack          map[int64]int
	ByExperienceCategory map[job.ExperienceCategory]int
}

// NewFacetCounts returns empty counts with every experience category present.
func NewFacetCounts() FacetCounts {
	fc := FacetCounts{
		ByCompany:            map[int64]int{},
		ByTechStack:          map[int64]int{},
		ByExperienceCategory: make(map[job.ExperienceCategory]int, len(job.ExperienceCategories)),
	}
	for _, c := range job.ExperienceCategories {
		fc.ByExperienceCategory[c] = 0
	}
	return fc
}

// Aggregate counts active jobs per company, per tech stack and per experience
// category. Inactive jobs are never counted and a job adds at most one to any
// tech stack even when the stack is both required and preferred.
func Aggregate(jobs []job.Job) (FacetCounts, error) {
	fc := NewFacetCounts()
	for i := range jobs {
		j := &jobs[i]
		if !j.Active {
			continue
		}
		ids := j.TechStackIDs()
		if _, ok := ids[0]; ok {
			err := fmt.Errorf("%w: job %q references a tech stack without id", job.ErrInconsistentReference, j.SourceURL)
			return FacetCounts{}, goerrors.Wrap(err, 0)
		}

		fc.ByCompany[j.Company.ID]++
		for id := range ids {
			fc.ByTechStack[id]++
		}
		fc.ByExperienceCategory[j.EffectiveExperienceCategory()]++
	}
	return fc, nil
}

// ZeroFilled fills missing experience categories with zero, so counts coming from
// a store keep the same shape as Aggregate output.
func (fc FacetCounts) ZeroFilled() FacetCounts {
	out := NewFacetCounts()
	for k, v := range fc.ByCompany {
		out.ByCompany[k] = v
	}
	for k, v := range fc.ByTechStack {
		out.ByTechStack[k] = v
	}
	for k, v := range fc.ByExperienceCategory {
		out.ByExperienceCategory[k] = v
	}
	return out
}
