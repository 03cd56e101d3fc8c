package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"job-navigator/internal/app"
	"job-navigator/internal/config"
	"job-navigator/internal/crawler"
	"job-navigator/internal/logger"

	"go.uber.org/zap"
)

func main() {
	targetsPath := flag.String("targets", "targets.json", "JSON file listing career pages to crawl")
	headless := flag.Bool("headless", false, "render every target with headless Chrome")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *headless {
		cfg.Crawler.Headless = true
	}

	zl, err := logger.New(cfg.App.AppName+"-crawler", cfg.App.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	targets, err := crawler.LoadTargets(*targetsPath)
	if err != nil {
		zl.Fatal("failed to load targets", zap.String("path", *targetsPath), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.NewContainer(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to init container", zap.Error(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			zl.Warn("cleanup error", zap.Error(err))
		}
	}()

	cr := crawler.New(c.Ingest, c.CrawlLogs, c.Companies, cfg.Crawler, zl)
	logs, err := cr.Run(ctx, targets)
	if err != nil {
		zl.Warn("crawl interrupted", zap.Error(err))
	}

	var found, created, skipped int
	for _, l := range logs {
		found += l.JobsFound
		created += l.JobsCreated
		skipped += l.JobsSkipped
	}
	zl.Info("crawl finished",
		zap.Int("targets", len(logs)),
		zap.Int("jobs_found", found),
		zap.Int("jobs_created", created),
		zap.Int("jobs_skipped", skipped),
	)
}
