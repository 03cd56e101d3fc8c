package matching

import (
	"job-navigator/internal/domain/job"
)

const (
	RequiredWeight  = 0.7
	PreferredWeight = 0.3
)

// Result explains how a job's tech stack demands line up with a skill set.
type Result struct {
	Job              job.Job
	MatchScore       float64
	MatchedRequired  []job.TechStack
	MatchedPreferred []job.TechStack
	MissingRequired  []job.TechStack
	MissingPreferred []job.TechStack
}

func (r Result) HasAllRequiredSkills() bool {
	return len(r.MissingRequired) == 0
}

func (r Result) TotalMatchedSkills() int {
	return len(r.MatchedRequired) + len(r.MatchedPreferred)
}

// SkillSet is a set of tech stacks keyed by name and category.
type SkillSet map[job.TechStackKey]struct{}

func NewSkillSet(stacks []job.TechStack) SkillSet {
	out := make(SkillSet, len(stacks))
	for _, t := range stacks {
		out[t.Key()] = struct{}{}
	}
	return out
}

func (s SkillSet) Has(t job.TechStack) bool {
	_, ok := s[t.Key()]
	return ok
}

// Score computes 0.7*requiredScore + 0.3*preferredScore. A job without
// required stacks has requiredScore 1, a job without preferred stacks has
// preferredScore 0, and an empty skill set always scores 0.
func Score(j job.Job, skills SkillSet) float64 {
	if len(skills) == 0 {
		return 0
	}

	required := dedupe(j.RequiredTechStacks)
	preferred := dedupe(j.PreferredTechStacks)

	requiredScore := 1.0
	if len(required) > 0 {
		requiredScore = float64(countIn(required, skills)) / float64(len(required))
	}
	preferredScore := 0.0
	if len(preferred) > 0 {
		preferredScore = float64(countIn(preferred, skills)) / float64(len(preferred))
	}

	score := RequiredWeight*requiredScore + PreferredWeight*preferredScore
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func Explain(j job.Job, skills SkillSet) Result {
	res := Result{
		Job:              j,
		MatchScore:       Score(j, skills),
		MatchedRequired:  make([]job.TechStack, 0),
		MatchedPreferred: make([]job.TechStack, 0),
		MissingRequired:  make([]job.TechStack, 0),
		MissingPreferred: make([]job.TechStack, 0),
	}

	for _, t := range dedupe(j.RequiredTechStacks) {
		if skills.Has(t) {
			res.MatchedRequired = append(res.MatchedRequired, t)
		} else {
			res.MissingRequired = append(res.MissingRequired, t)
		}
	}
	for _, t := range dedupe(j.PreferredTechStacks) {
		if skills.Has(t) {
			res.MatchedPreferred = append(res.MatchedPreferred, t)
		} else {
			res.MissingPreferred = append(res.MissingPreferred, t)
		}
	}
	return res
}

func countIn(stacks []job.TechStack, skills SkillSet) int {
	n := 0
	for _, t := range stacks {
		if skills.Has(t) {
			n++
		}
	}
	return n
}

func dedupe(stacks []job.TechStack) []job.TechStack {
	if len(stacks) < 2 {
		return stacks
	}
	seen := make(map[job.TechStackKey]struct{}, len(stacks))
	out := make([]job.TechStack, 0, len(stacks))
	for _, t := range stacks {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		out = append(out, t)
	}
	return out
}
