package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-navigator/internal/config"
	"job-navigator/internal/domain/job"
	"job-navigator/internal/logger"
	"job-navigator/internal/repository"
	"job-navigator/internal/usecase"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Ingester is the part of the ingestion usecase the crawler needs.
type Ingester interface {
	SaveJob(ctx context.Context, cmd usecase.SaveJobCommand) (int64, error)
}

// Outcome is the result of crawling one detail page.
type Outcome struct {
	URL     string
	Found   int
	Created int
	Skipped int
	Err     error
}

// Crawler discovers postings on company career pages and feeds them through
// ingestion. Each target yields one crawl log row, whatever the outcome.
type Crawler struct {
	ingest    Ingester
	logs      repository.CrawlLogRepository
	companies repository.CompanyRepository
	static    Fetcher
	headless  Fetcher
	cfg       config.CrawlerConfig
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Crawler)

func WithFetchers(static, headless Fetcher) Option {
	return func(c *Crawler) {
		c.static = static
		c.headless = headless
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Crawler) { c.now = now }
}

func New(
	ingest Ingester,
	logs repository.CrawlLogRepository,
	companies repository.CompanyRepository,
	cfg config.CrawlerConfig,
	log *zap.Logger,
	opts ...Option,
) *Crawler {
	c := &Crawler{
		ingest:    ingest,
		logs:      logs,
		companies: companies,
		static:    NewCollyFetcher(cfg.UserAgent, cfg.Timeout),
		headless:  NewHeadlessFetcher(cfg.UserAgent, cfg.Timeout),
		cfg:       cfg,
		logger:    logger.OrNop(log),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run crawls targets one after another. Target failures are recorded in the
// crawl logs and do not stop the run; only a cancelled ctx does.
func (c *Crawler) Run(ctx context.Context, targets []Target) ([]job.CrawlLog, error) {
	out := make([]job.CrawlLog, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		t = t.withDefaults()
		if err := t.validate(); err != nil {
			c.logger.Warn("skipping invalid target", zap.Error(err))
			continue
		}
		out = append(out, c.crawlTarget(ctx, t))
	}
	return out, nil
}

func (c *Crawler) crawlTarget(ctx context.Context, t Target) job.CrawlLog {
	log := job.CrawlLog{Target: t.ListURL, StartedAt: c.now().UTC()}
	fetcher := c.fetcher(t)
	lg := c.logger.With(zap.String("company", t.CompanyName), zap.Bool("headless", t.Headless || c.cfg.Headless))

	var errs error
	detailURLs := []string{}
	seen := map[string]struct{}{}
	for _, listURL := range t.listURLs() {
		doc, err := fetcher.Fetch(ctx, listURL)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("list %s: %w", listURL, err))
			continue
		}
		for _, u := range links(doc, listURL, t.LinkSelector) {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			detailURLs = append(detailURLs, u)
		}
	}
	lg.Info("crawl listing done", zap.Int("links", len(detailURLs)))

	pool := NewWorkerPool(c.cfg.Workers, len(detailURLs))
	pool.SetInterval(c.cfg.RateLimit)
	results := pool.Run(ctx)
	for _, u := range detailURLs {
		pool.Submit(func(ctx context.Context) Outcome {
			return c.crawlDetail(ctx, fetcher, t, u)
		})
	}
	pool.Close()

	for res := range results {
		log.JobsFound += res.Found
		log.JobsCreated += res.Created
		log.JobsSkipped += res.Skipped
		if res.Err != nil {
			errs = multierr.Append(errs, res.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}

	log = log.Finish(errs, c.now().UTC())
	log.CompanyID = c.companyID(ctx, t.CompanyName)
	if c.logs != nil {
		id, err := c.logs.Save(context.WithoutCancel(ctx), log)
		if err != nil {
			lg.Error("save crawl log failed", zap.Error(err))
		}
		log.ID = id
	}

	lg.Info("crawl target done",
		zap.String("status", string(log.Status)),
		zap.Int("found", log.JobsFound),
		zap.Int("created", log.JobsCreated),
		zap.Int("skipped", log.JobsSkipped),
		zap.Error(errs),
	)
	return log
}

// crawlDetail ingests every posting on one detail page. Postings already in
// the catalog count as skipped, not as failures.
func (c *Crawler) crawlDetail(ctx context.Context, fetcher Fetcher, t Target, pageURL string) Outcome {
	res := Outcome{URL: pageURL}
	doc, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		res.Err = fmt.Errorf("detail %s: %w", pageURL, err)
		return res
	}

	for _, block := range jsonLDBlocks(doc) {
		postings, err := ParsePostings(block)
		if err != nil {
			res.Err = multierr.Append(res.Err, fmt.Errorf("detail %s: %w", pageURL, err))
			continue
		}
		for _, p := range postings {
			res.Found++
			_, err := c.ingest.SaveJob(ctx, p.Command(t, pageURL))
			switch {
			case err == nil:
				res.Created++
			case errors.Is(err, usecase.ErrDuplicateJob):
				res.Skipped++
			default:
				res.Err = multierr.Append(res.Err, fmt.Errorf("save %s: %w", pageURL, err))
			}
		}
	}
	return res
}

func (c *Crawler) fetcher(t Target) Fetcher {
	if (t.Headless || c.cfg.Headless) && c.headless != nil {
		return c.headless
	}
	return c.static
}

func (c *Crawler) companyID(ctx context.Context, name string) int64 {
	if c.companies == nil {
		return 0
	}
	co, ok, err := c.companies.FindByName(context.WithoutCancel(ctx), name)
	if err != nil || !ok {
		return 0
	}
	return co.ID
}
