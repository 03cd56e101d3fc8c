package search

import (
	"strings"

	"job-navigator/internal/domain/job"
)

// Filter returns the jobs matching every predicate set on q, in input order.
// The input slice and its elements are left untouched.
func Filter(jobs []job.Job, q Query) []job.Job {
	p := newPredicate(q)
	out := make([]job.Job, 0, len(jobs))
	for i := range jobs {
		if p.match(&jobs[i]) {
			out = append(out, jobs[i])
		}
	}
	return out
}

type predicate struct {
	keyword    string
	companies  map[int64]struct{}
	techStacks map[int64]struct{}
	experience job.ExperienceCategory
	active     *bool
}

func newPredicate(q Query) predicate {
	p := predicate{
		keyword:    strings.ToLower(strings.TrimSpace(q.Keyword)),
		experience: q.ExperienceCategory,
		active:     q.IsActive,
	}
	if len(q.CompanyIDs) > 0 {
		p.companies = toSet(q.CompanyIDs)
	}
	if len(q.TechStackIDs) > 0 {
		p.techStacks = toSet(q.TechStackIDs)
	}
	return p
}

func (p predicate) match(j *job.Job) bool {
	if p.keyword != "" {
		if !strings.Contains(strings.ToLower(j.Title), p.keyword) &&
			!strings.Contains(strings.ToLower(j.Description), p.keyword) {
			return false
		}
	}
	if p.companies != nil {
		if _, ok := p.companies[j.Company.ID]; !ok {
			return false
		}
	}
	if p.experience != "" && j.EffectiveExperienceCategory() != p.experience {
		return false
	}
	if p.techStacks != nil && !p.intersectsTechStacks(j) {
		return false
	}
	if p.active != nil && j.Active != *p.active {
		return false
	}
	return true
}

func (p predicate) intersectsTechStacks(j *job.Job) bool {
	for id := range j.TechStackIDs() {
		if _, ok := p.techStacks[id]; ok {
			return true
		}
	}
	return false
}

func toSet(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
