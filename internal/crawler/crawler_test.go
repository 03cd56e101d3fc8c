package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"job-navigator/internal/config"
	"job-navigator/internal/domain/job"
	"job-navigator/internal/usecase"
)

type fakeIngester struct {
	mu    sync.Mutex
	seen  map[string]bool
	saved []usecase.SaveJobCommand
}

func (f *fakeIngester) SaveJob(_ context.Context, cmd usecase.SaveJobCommand) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[cmd.SourceURL] {
		return 0, fmt.Errorf("%w: %s", usecase.ErrDuplicateJob, cmd.SourceURL)
	}
	f.seen[cmd.SourceURL] = true
	f.saved = append(f.saved, cmd)
	return int64(len(f.saved)), nil
}

type fakeCrawlLogs struct {
	mu   sync.Mutex
	logs []job.CrawlLog
}

func (f *fakeCrawlLogs) Save(_ context.Context, l job.CrawlLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return int64(len(f.logs)), nil
}

func careerSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
			<a class="job" href="/jobs/1">Backend</a>
			<a class="job" href="/jobs/2">Platform</a>
			<a class="job" href="/jobs/1#apply">Backend again</a>
			<a class="job" href="/jobs/empty">No data</a>
			<a href="/about">About</a>
		</body></html>`)
	})
	mux.HandleFunc("/jobs/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><script type="application/ld+json">%s</script></head><body>job</body></html>`, postingJSON)
	})
	mux.HandleFunc("/jobs/2", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><script type="application/ld+json">
			{"@graph":[{"@type":"JobPosting","title":"Platform Engineer","skills":["Go"]}]}
		</script></head><body>job</body></html>`)
	})
	mux.HandleFunc("/jobs/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>nothing structured here</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestCrawler(in *fakeIngester, logs *fakeCrawlLogs) *Crawler {
	cfg := config.CrawlerConfig{Workers: 2, Timeout: 5 * time.Second, UserAgent: "test"}
	fixed := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return New(in, logs, nil, cfg, nil,
		WithFetchers(NewCollyFetcher(cfg.UserAgent, cfg.Timeout), nil),
		WithClock(func() time.Time { return fixed }),
	)
}

func TestCrawler_Run(t *testing.T) {
	srv := careerSite(t)
	in := &fakeIngester{seen: map[string]bool{srv.URL + "/jobs/2": true}}
	logs := &fakeCrawlLogs{}

	got, err := newTestCrawler(in, logs).Run(context.Background(), []Target{{
		CompanyName:  "Acme",
		ListURL:      srv.URL + "/careers",
		LinkSelector: "a.job",
	}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || len(logs.logs) != 1 {
		t.Fatalf("expected one crawl log, got %d/%d", len(got), len(logs.logs))
	}
	l := got[0]
	if l.Status != job.CrawlSuccess || l.JobsFound != 2 || l.JobsCreated != 1 || l.JobsSkipped != 1 {
		t.Fatalf("unexpected crawl log: %+v", l)
	}
	if l.Target != srv.URL+"/careers" || l.ID != 1 {
		t.Fatalf("unexpected log identity: %+v", l)
	}
	if len(in.saved) != 1 || in.saved[0].Title != "Backend Engineer" || in.saved[0].CompanyName != "Acme" {
		t.Fatalf("unexpected saved commands: %+v", in.saved)
	}
	if in.saved[0].SourceURL != srv.URL+"/jobs/1" {
		t.Fatalf("fragment links must collapse to one source url, got %q", in.saved[0].SourceURL)
	}
}

func TestCrawler_Run_ListFailure(t *testing.T) {
	srv := careerSite(t)
	logs := &fakeCrawlLogs{}

	got, err := newTestCrawler(&fakeIngester{seen: map[string]bool{}}, logs).Run(context.Background(), []Target{
		{CompanyName: "Acme", ListURL: srv.URL + "/missing"},
		{CompanyName: "", ListURL: srv.URL + "/careers"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("invalid targets must be skipped, got %d logs", len(got))
	}
	if got[0].Status != job.CrawlFailed || got[0].ErrorMessage == "" {
		t.Fatalf("expected failed log with message, got %+v", got[0])
	}
}

func TestCrawler_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := newTestCrawler(&fakeIngester{seen: map[string]bool{}}, &fakeCrawlLogs{}).Run(ctx, []Target{{CompanyName: "Acme", ListURL: "http://127.0.0.1:1/careers"}})
	if err == nil || len(got) != 0 {
		t.Fatalf("expected cancellation before any target, got %v %v", got, err)
	}
}

func TestLoadTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	body := `[{"company_name":"Acme","list_url":"https://acme.io/careers?page=%d","pages":3,"headless":true}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	tg := targets[0]
	if tg.LinkSelector != defaultLinkSelector || tg.CareerPageURL != tg.ListURL || !tg.Headless {
		t.Fatalf("unexpected defaults: %+v", tg)
	}
	urls := tg.listURLs()
	if len(urls) != 3 || urls[2] != "https://acme.io/careers?page=3" {
		t.Fatalf("unexpected list urls: %v", urls)
	}

	if err := os.WriteFile(path, []byte(`[{"list_url":"x"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTargets(path); err == nil {
		t.Fatalf("expected error for a target without company")
	}
}

func TestWorkerPool_RunsEveryTask(t *testing.T) {
	pool := NewWorkerPool(3, 10)
	results := pool.Run(context.Background())
	for i := 0; i < 10; i++ {
		pool.Submit(func(context.Context) Outcome { return Outcome{Found: i} })
	}
	pool.Close()

	total := 0
	n := 0
	for r := range results {
		total += r.Found
		n++
	}
	if n != 10 || total != 45 {
		t.Fatalf("expected all tasks to run, got n=%d total=%d", n, total)
	}
}
