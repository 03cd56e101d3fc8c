package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/repository"
	"job-navigator/internal/search"
)

var fixtureNow = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func newSearch(repo *fakeJobRepo, cache SearchCache, counts *fakeCounts) *JobSearch {
	var c repository.JobCountRepository
	if counts != nil {
		c = counts
	}
	return NewJobSearchUsecase(
		repo,
		c,
		&fakeTechStacks{stacks: []job.TechStack{tsJava, tsSpring, tsKafka, tsGo}},
		cache,
		JobSearchOptions{
			JobTTL:               time.Hour,
			SearchTTL:            10 * time.Minute,
			FacetCountsFromStore: counts != nil,
			Now:                  func() time.Time { return fixtureNow },
		},
		nil,
	)
}

func activeQuery() search.Query {
	active := true
	return search.Query{IsActive: &active, Page: 0, Size: 20, SortBy: search.SortByPostedAt, SortDirection: search.SortDesc}
}

func TestJobSearch_Search_InvalidQuery(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	q := activeQuery()
	q.Size = 0
	_, err := uc.Search(context.Background(), q)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if repo.loads.Load() != 0 {
		t.Fatalf("store must not be read for an invalid query")
	}
}

func TestJobSearch_Search_FilterSortPaginate(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	q := activeQuery()
	q.Keyword = "JAVA"
	res, err := uc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.TotalElements != 2 || len(res.Items) != 2 {
		t.Fatalf("expected 2 matches, got total=%d items=%d", res.TotalElements, len(res.Items))
	}
	if res.Items[0].ID != 1 || res.Items[1].ID != 3 {
		t.Fatalf("expected newest first, got %d,%d", res.Items[0].ID, res.Items[1].ID)
	}
	if !res.First || !res.Last || res.TotalPages != 1 {
		t.Fatalf("unexpected page flags: %+v", res)
	}

	q.TechStackIDs = []int64{4}
	q.Keyword = ""
	res, err = uc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.TotalElements != 1 || res.Items[0].ID != 2 {
		t.Fatalf("expected only the Go posting, got %+v", res.Items)
	}
}

func TestJobSearch_Search_PageBeyondEnd(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	q := activeQuery()
	q.Size = 2
	q.Page = 5
	res, err := uc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Items) != 0 || res.TotalElements != 3 || res.TotalPages != 2 {
		t.Fatalf("unexpected page: %+v", res)
	}
}

func TestJobSearch_Search_CacheDoesNotChangeResults(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	cache := newMemCache()
	uc := newSearch(repo, cache, nil)

	q := activeQuery()
	first, err := uc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := uc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.loads.Load() != 1 || cache.hits != 1 {
		t.Fatalf("expected second search from cache, loads=%d hits=%d", repo.loads.Load(), cache.hits)
	}
	if first.TotalElements != second.TotalElements || len(first.Items) != len(second.Items) {
		t.Fatalf("cached result differs")
	}
	for i := range first.Items {
		if first.Items[i].ID != second.Items[i].ID || first.Items[i].SourceURL != second.Items[i].SourceURL {
			t.Fatalf("cached item %d differs", i)
		}
	}

	other := q
	other.Keyword = "platform"
	if SearchCacheKey(other) == SearchCacheKey(q) {
		t.Fatalf("different queries must not share a cache key")
	}
}

func TestJobSearch_Search_StoreFailure(t *testing.T) {
	repo := &fakeJobRepo{err: errors.New("connection refused")}
	uc := newSearch(repo, nil, nil)

	_, err := uc.Search(context.Background(), activeQuery())
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestJobSearch_Search_Concurrent(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			q := activeQuery()
			q.Size = 1
			q.Page = page % 3
			res, err := uc.Search(context.Background(), q)
			if err != nil {
				errs <- err
				return
			}
			if res.TotalElements != 3 {
				errs <- errors.New("unexpected total")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent search: %v", err)
	}
}

func TestJobSearch_Search_SharedLoadSurvivesCancelledCaller(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs(), gate: make(chan struct{})}
	uc := newSearch(repo, nil, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = uc.Search(firstCtx, activeQuery())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for repo.loads.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first load never started")
		}
		time.Sleep(time.Millisecond)
	}

	type outcome struct {
		res SearchResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := uc.Search(context.Background(), activeQuery())
		second <- outcome{res: res, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(repo.gate)

	select {
	case out := <-second:
		if out.err != nil {
			t.Fatalf("waiting caller failed: %v", out.err)
		}
		if out.res.TotalElements == 0 {
			t.Fatalf("expected results for waiting caller")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("waiting caller never returned")
	}
	<-firstDone
}

func TestJobSearch_GetDetail(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	cache := newMemCache()
	uc := newSearch(repo, cache, nil)

	_, err := uc.GetDetail(context.Background(), 404)
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if !errors.Is(err, job.ErrNotFound) {
		t.Fatalf("expected domain not found, got %v", err)
	}

	j, err := uc.GetDetail(context.Background(), 2)
	if err != nil || j.ID != 2 {
		t.Fatalf("unexpected detail: %+v err=%v", j, err)
	}
	if _, ok := cache.items[JobCacheKey(2)]; !ok {
		t.Fatalf("expected detail to be cached")
	}
}

func TestJobSearch_Match(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	res, err := uc.Match(context.Background(), 1, []int64{1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if math.Abs(res.MatchScore-0.35) > 1e-9 {
		t.Fatalf("expected 0.35, got %v", res.MatchScore)
	}
	if res.HasAllRequiredSkills() {
		t.Fatalf("Spring is still missing")
	}

	_, err = uc.Match(context.Background(), 1, []int64{99})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery for unknown tech stack, got %v", err)
	}
}

func TestJobSearch_Rank(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	res, err := uc.Rank(context.Background(), RankParams{TechStackIDs: []int64{1}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.TotalMatched != 2 || len(res.Results) != 2 {
		t.Fatalf("expected expired and inactive postings excluded, got %d", res.TotalMatched)
	}
	if res.Results[0].Job.ID != 1 || res.Results[1].Job.ID != 2 {
		t.Fatalf("unexpected order: %d,%d", res.Results[0].Job.ID, res.Results[1].Job.ID)
	}
	if len(res.MissingSkills) != 3 || res.MissingSkills[0].TechStack.Name != "Kafka" || res.MissingSkills[0].Count != 2 {
		t.Fatalf("unexpected missing skills: %+v", res.MissingSkills)
	}

	limited, err := uc.Rank(context.Background(), RankParams{TechStackIDs: []int64{1}, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(limited.Results) != 1 || limited.TotalMatched != 2 {
		t.Fatalf("unexpected limited rank: %+v", limited)
	}

	bad := 1.5
	if _, err := uc.Rank(context.Background(), RankParams{MinScore: &bad}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestJobSearch_FacetCounts_Snapshot(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	uc := newSearch(repo, nil, nil)

	fc, err := uc.FacetCounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if fc.ByCompany[1] != 2 || fc.ByCompany[2] != 1 {
		t.Fatalf("unexpected company counts: %v", fc.ByCompany)
	}
	if fc.ByTechStack[1] != 2 || fc.ByTechStack[3] != 2 || fc.ByTechStack[4] != 1 {
		t.Fatalf("unexpected tech stack counts: %v", fc.ByTechStack)
	}
	if fc.ByExperienceCategory[job.ExperienceAny] != 1 || fc.ByExperienceCategory[job.ExperienceLead] != 0 {
		t.Fatalf("unexpected category counts: %v", fc.ByExperienceCategory)
	}
	if len(fc.ByExperienceCategory) != len(job.ExperienceCategories) {
		t.Fatalf("every category must be present")
	}
}

func TestJobSearch_FacetCounts_Store(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	counts := &fakeCounts{
		byCompany:   map[int64]int{1: 2},
		byTechStack: map[int64]int{1: 1},
		byCategory:  map[job.ExperienceCategory]int{job.ExperienceMid: 2},
	}
	uc := newSearch(repo, nil, counts)

	fc, err := uc.FacetCounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if counts.calls != 1 || repo.loads.Load() != 0 {
		t.Fatalf("expected store counts without a snapshot load")
	}
	if fc.ByExperienceCategory[job.ExperienceMid] != 2 || len(fc.ByExperienceCategory) != len(job.ExperienceCategories) {
		t.Fatalf("unexpected category counts: %v", fc.ByExperienceCategory)
	}
}

func TestJobSearch_EvictCache(t *testing.T) {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	cache := newMemCache()
	uc := newSearch(repo, cache, nil)

	if _, err := uc.Search(context.Background(), activeQuery()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := uc.EvictCache(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(cache.items) != 0 || cache.evicted != 1 {
		t.Fatalf("expected empty cache after eviction")
	}
	if _, err := uc.Search(context.Background(), activeQuery()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.loads.Load() != 2 {
		t.Fatalf("expected store reload after eviction, got %d loads", repo.loads.Load())
	}

	if err := newSearch(repo, nil, nil).EvictCache(context.Background()); err != nil {
		t.Fatalf("eviction without cache must be a no-op, got %v", err)
	}
}
