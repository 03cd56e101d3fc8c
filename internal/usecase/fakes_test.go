package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/repository"
)

type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   []job.Job
	loads  atomic.Int32
	err    error
	nextID int64
	// gate, when set, holds LoadActiveJobs until it is closed or ctx ends.
	gate chan struct{}
}

func (f *fakeJobRepo) LoadActiveJobs(ctx context.Context) ([]job.Job, error) {
	f.loads.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]job.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		if j.Active {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) LoadJobByID(_ context.Context, id int64) (job.Job, error) {
	if f.err != nil {
		return job.Job{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return job.Job{}, repository.ErrJobNotFound
}

func (f *fakeJobRepo) LoadJobBySourceURL(_ context.Context, u string) (job.Job, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.SourceURL == u {
			return j, true, nil
		}
	}
	return job.Job{}, false, nil
}

func (f *fakeJobRepo) SaveJob(_ context.Context, j job.Job) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.jobs {
		if it.SourceURL == j.SourceURL {
			return 0, repository.ErrDuplicateSourceURL
		}
	}
	f.nextID++
	j.ID = 1000 + f.nextID
	f.jobs = append(f.jobs, j)
	return j.ID, nil
}

type fakeCounts struct {
	byCompany   map[int64]int
	byTechStack map[int64]int
	byCategory  map[job.ExperienceCategory]int
	calls       int
}

func (f *fakeCounts) CountActiveJobsByCompany(context.Context) (map[int64]int, error) {
	f.calls++
	return f.byCompany, nil
}

func (f *fakeCounts) CountActiveJobsByTechStack(context.Context) (map[int64]int, error) {
	return f.byTechStack, nil
}

func (f *fakeCounts) CountActiveJobsByExperienceCategory(context.Context) (map[job.ExperienceCategory]int, error) {
	return f.byCategory, nil
}

type fakeTechStacks struct {
	stacks []job.TechStack
	saved  int
}

func (f *fakeTechStacks) FindAll(context.Context) ([]job.TechStack, error) {
	return append([]job.TechStack(nil), f.stacks...), nil
}

func (f *fakeTechStacks) FindByCategory(_ context.Context, c job.TechStackCategory) ([]job.TechStack, error) {
	out := []job.TechStack{}
	for _, t := range f.stacks {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTechStacks) FindByIDs(_ context.Context, ids []int64) ([]job.TechStack, error) {
	out := []job.TechStack{}
	for _, id := range ids {
		for _, t := range f.stacks {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeTechStacks) FindByName(_ context.Context, name string) (job.TechStack, bool, error) {
	for _, t := range f.stacks {
		if strings.EqualFold(t.Name, name) {
			return t, true, nil
		}
	}
	return job.TechStack{}, false, nil
}

func (f *fakeTechStacks) Save(_ context.Context, t job.TechStack) (job.TechStack, error) {
	f.saved++
	t.ID = int64(100 + len(f.stacks))
	f.stacks = append(f.stacks, t)
	return t, nil
}

type fakeCompanies struct {
	companies []job.Company
	saved     int
}

func (f *fakeCompanies) FindAll(context.Context) ([]job.Company, error) {
	return append([]job.Company(nil), f.companies...), nil
}

func (f *fakeCompanies) FindWithActiveJobs(context.Context) ([]job.Company, error) {
	return nil, errors.New("not used")
}

func (f *fakeCompanies) FindByName(_ context.Context, name string) (job.Company, bool, error) {
	for _, c := range f.companies {
		if c.Name == name {
			return c, true, nil
		}
	}
	return job.Company{}, false, nil
}

func (f *fakeCompanies) Save(_ context.Context, c job.Company) (job.Company, error) {
	f.saved++
	c.ID = int64(10 + len(f.companies))
	f.companies = append(f.companies, c)
	return c, nil
}

type memCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	gets    int
	hits    int
	evicted int
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (m *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	b, ok := m.items[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(b, out)
}

func (m *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = b
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memCache) EvictAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = map[string][]byte{}
	m.evicted++
	return nil
}

type fakeNotifier struct {
	batches [][]int64
}

func (f *fakeNotifier) NotifyJobsUpdated(ids []int64) {
	f.batches = append(f.batches, append([]int64(nil), ids...))
}

var (
	acme   = job.Company{ID: 1, Name: "Acme"}
	globex = job.Company{ID: 2, Name: "Globex"}

	tsJava   = job.TechStack{ID: 1, Name: "Java", Category: job.TechLanguage}
	tsSpring = job.TechStack{ID: 2, Name: "Spring", Category: job.TechFramework}
	tsKafka  = job.TechStack{ID: 3, Name: "Kafka", Category: job.TechTool}
	tsGo     = job.TechStack{ID: 4, Name: "Go", Category: job.TechLanguage}
)

func ptrTime(t time.Time) *time.Time { return &t }

func fixtureJobs() []job.Job {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []job.Job{
		{
			ID: 1, Company: acme, Title: "Backend Engineer", Description: "Java services",
			SourceURL: "https://acme.io/1", Active: true, ExperienceCategory: job.ExperienceMid,
			PostedAt:           ptrTime(base.Add(72 * time.Hour)),
			RequiredTechStacks: []job.TechStack{tsJava, tsSpring}, PreferredTechStacks: []job.TechStack{tsKafka},
		},
		{
			ID: 2, Company: acme, Title: "Platform Engineer", Description: "Go and Kafka",
			SourceURL: "https://acme.io/2", Active: true, ExperienceCategory: job.ExperienceSenior,
			PostedAt:           ptrTime(base.Add(24 * time.Hour)),
			RequiredTechStacks: []job.TechStack{tsGo}, PreferredTechStacks: []job.TechStack{tsKafka},
		},
		{
			ID: 3, Company: globex, Title: "Java Developer", Description: "legacy",
			SourceURL: "https://globex.io/3", Active: true,
			PostedAt:           ptrTime(base.Add(48 * time.Hour)),
			ExpiresAt:          ptrTime(base.Add(-time.Hour)),
			RequiredTechStacks: []job.TechStack{tsJava},
		},
		{
			ID: 4, Company: globex, Title: "Retired role", Description: "java",
			SourceURL: "https://globex.io/4", Active: false,
			RequiredTechStacks: []job.TechStack{tsJava},
		},
	}
}
