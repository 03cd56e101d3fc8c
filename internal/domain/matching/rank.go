package matching

import (
	"fmt"
	"sort"
	"time"

	"job-navigator/internal/domain/job"
)

type RankOptions struct {
	// MinScore drops results scoring below it. Must be within [0, 1].
	MinScore *float64
	Now      time.Time
}

// Rank scores every active, non-expired job and orders the results by score,
// highest first. Jobs with equal scores keep their input order.
func Rank(jobs []job.Job, skills SkillSet, opts RankOptions) ([]Result, error) {
	if opts.MinScore != nil && (*opts.MinScore < 0 || *opts.MinScore > 1) {
		return nil, fmt.Errorf("%w: minimum score must be between 0 and 1", job.ErrInvalidQuery)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]Result, 0, len(jobs))
	for _, j := range jobs {
		if !j.Active || j.IsExpired(now) {
			continue
		}
		r := Explain(j, skills)
		if opts.MinScore != nil && r.MatchScore < *opts.MinScore {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, k int) bool {
		return out[i].MatchScore > out[k].MatchScore
	})
	return out, nil
}

type MissingSkill struct {
	TechStack job.TechStack
	Count     int
}

// MissingSkills counts, across results, how many jobs list each skill as
// missing (required or preferred). Most frequent first, then by name.
func MissingSkills(results []Result) []MissingSkill {
	counts := map[job.TechStackKey]*MissingSkill{}
	order := make([]job.TechStackKey, 0)
	add := func(t job.TechStack) {
		k := t.Key()
		if it, ok := counts[k]; ok {
			it.Count++
			return
		}
		counts[k] = &MissingSkill{TechStack: t, Count: 1}
		order = append(order, k)
	}

	for _, r := range results {
		seen := map[job.TechStackKey]struct{}{}
		for _, list := range [][]job.TechStack{r.MissingRequired, r.MissingPreferred} {
			for _, t := range list {
				if _, ok := seen[t.Key()]; ok {
					continue
				}
				seen[t.Key()] = struct{}{}
				add(t)
			}
		}
	}

	out := make([]MissingSkill, 0, len(order))
	for _, k := range order {
		out = append(out, *counts[k])
	}
	sort.SliceStable(out, func(i, k int) bool {
		if out[i].Count != out[k].Count {
			return out[i].Count > out[k].Count
		}
		return out[i].TechStack.Name < out[k].TechStack.Name
	})
	return out
}
