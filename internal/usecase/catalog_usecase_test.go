package usecase

import (
	"context"
	"errors"
	"testing"

	"job-navigator/internal/domain/job"
)

func newCatalog(stacks []job.TechStack) *Catalog {
	repo := &fakeJobRepo{jobs: fixtureJobs()}
	search := newSearch(repo, nil, nil)
	return NewCatalogUsecase(
		&fakeCompanies{companies: []job.Company{acme, globex, {ID: 3, Name: "Hooli"}}},
		&fakeTechStacks{stacks: stacks},
		search,
		nil,
	)
}

func TestCatalog_CompaniesWithCount(t *testing.T) {
	uc := newCatalog([]job.TechStack{tsJava, tsSpring, tsKafka, tsGo})

	got, err := uc.CompaniesWithCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("companies without postings must be dropped, got %+v", got)
	}
	if got[0].Company.Name != "Acme" || got[0].Count != 2 || got[1].Count != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestCatalog_TechStacksWithCount(t *testing.T) {
	uc := newCatalog([]job.TechStack{tsJava, tsSpring, tsKafka, tsGo, {ID: 9, Name: "Rust", Category: job.TechLanguage}})

	got, err := uc.TechStacksWithCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 counted stacks, got %+v", got)
	}
	if got[0].TechStack.Name != "Java" || got[0].Count != 2 || got[1].TechStack.Name != "Kafka" {
		t.Fatalf("unexpected order: %+v", got)
	}

	top, err := uc.PopularTechStacks(context.Background(), 1)
	if err != nil || len(top) != 1 || top[0].TechStack != tsJava {
		t.Fatalf("unexpected popular: %+v err=%v", top, err)
	}
}

func TestCatalog_TechStacksWithCount_UnknownStack(t *testing.T) {
	uc := newCatalog([]job.TechStack{tsJava, tsSpring})

	_, err := uc.TechStacksWithCount(context.Background())
	if !errors.Is(err, job.ErrInconsistentReference) || !errors.Is(err, ErrInternal) {
		t.Fatalf("expected inconsistent reference fault, got %v", err)
	}
}

func TestCatalog_PopularTechStacks_Limit(t *testing.T) {
	uc := newCatalog(nil)
	for _, limit := range []int{0, -1, MaxPopularLimit + 1} {
		if _, err := uc.PopularTechStacks(context.Background(), limit); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("limit %d: expected ErrInvalidQuery, got %v", limit, err)
		}
	}
}

func TestCatalog_TechStacksByCategory(t *testing.T) {
	uc := newCatalog([]job.TechStack{tsJava, tsSpring, tsKafka, tsGo})

	got, err := uc.TechStacksByCategory(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got[job.TechLanguage]) != 2 || len(got[job.TechFramework]) != 1 || len(got[job.TechCloud]) != 0 {
		t.Fatalf("unexpected grouping: %+v", got)
	}
}

func TestCatalog_ExperienceCategoriesWithCount(t *testing.T) {
	uc := newCatalog(nil)

	got, err := uc.ExperienceCategoriesWithCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != len(job.ExperienceCategories) {
		t.Fatalf("expected every category, got %d", len(got))
	}
	total := 0
	for i, it := range got {
		if it.Category != job.ExperienceCategories[i] {
			t.Fatalf("unexpected order at %d: %s", i, it.Category)
		}
		total += it.Count
	}
	if total != 3 {
		t.Fatalf("category counts must sum to active postings, got %d", total)
	}
}
