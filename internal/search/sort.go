package search

import (
	"sort"
	"strings"
	"time"

	"job-navigator/internal/domain/job"
)

const (
	SortByPostedAt  = "postedAt"
	SortByCreatedAt = "createdAt"
	SortByExpiresAt = "expiresAt"
	SortByTitle     = "title"
)

// Sort orders jobs by sortBy in place and reports whether it did anything.
// Unknown keys keep the store order. Missing timestamps go last in either
// direction; ties keep their relative order.
func Sort(jobs []job.Job, sortBy, direction string) bool {
	var cmp func(a, b *job.Job) int
	switch sortBy {
	case SortByPostedAt:
		cmp = func(a, b *job.Job) int { return compareTimePtr(a.PostedAt, b.PostedAt) }
	case SortByExpiresAt:
		cmp = func(a, b *job.Job) int { return compareTimePtr(a.ExpiresAt, b.ExpiresAt) }
	case SortByCreatedAt:
		cmp = func(a, b *job.Job) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByTitle:
		cmp = func(a, b *job.Job) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		return false
	}

	desc := direction == SortDesc
	sort.SliceStable(jobs, func(i, k int) bool {
		a, b := &jobs[i], &jobs[k]
		if n := nilLast(a, b, sortBy); n != 0 {
			return n < 0
		}
		c := cmp(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return true
}

// nilLast puts jobs without the sort timestamp after those with one.
func nilLast(a, b *job.Job, sortBy string) int {
	var ta, tb *time.Time
	switch sortBy {
	case SortByPostedAt:
		ta, tb = a.PostedAt, b.PostedAt
	case SortByExpiresAt:
		ta, tb = a.ExpiresAt, b.ExpiresAt
	default:
		return 0
	}
	switch {
	case ta == nil && tb != nil:
		return 1
	case ta != nil && tb == nil:
		return -1
	}
	return 0
}

func compareTimePtr(a, b *time.Time) int {
	if a == nil || b == nil {
		return 0
	}
	return a.Compare(*b)
}
