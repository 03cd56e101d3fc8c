package app

import (
	"context"
	"fmt"
	"time"

	"job-navigator/internal/config"
	"job-navigator/internal/database/migration"
	dbpostgres "job-navigator/internal/database/postgres"
	"job-navigator/internal/infrastructure/cache"
	"job-navigator/internal/logger"
	"job-navigator/internal/repository"
	"job-navigator/internal/usecase"
	"job-navigator/internal/ws"

	"go.uber.org/zap"
)

const (
	connectTimeout   = 10 * time.Second
	migrationTimeout = 2 * time.Minute
)

// Container holds the long-lived dependencies shared by the server and the
// crawler entrypoints.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     *dbpostgres.Pool
	Cache  *cache.Redis

	Jobs       *repository.PostgresJobRepository
	Companies  *repository.PostgresCompanyRepository
	TechStacks *repository.PostgresTechStackRepository
	CrawlLogs  *repository.PostgresCrawlLogRepository

	Hub     *ws.Hub
	Search  *usecase.JobSearch
	Ingest  *usecase.JobIngest
	Catalog *usecase.Catalog
}

func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Container, error) {
	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := dbpostgres.Connect(connCtx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		migCtx, migCancel := context.WithTimeout(ctx, migrationTimeout)
		defer migCancel()
		r := migration.Runner{Source: migration.Dir(cfg.Database.MigrationsDir), Logger: log}
		if _, err := r.Run(migCtx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger.OrNop(log),
		DB:         db,
		Cache:      cache.NewRedis(cfg.Redis, log),
		Jobs:       repository.NewPostgresJobRepository(db),
		Companies:  repository.NewPostgresCompanyRepository(db),
		TechStacks: repository.NewPostgresTechStackRepository(db),
		CrawlLogs:  repository.NewPostgresCrawlLogRepository(db),
		Hub:        ws.NewHub(log),
	}

	c.Search = usecase.NewJobSearchUsecase(c.Jobs, c.Jobs, c.TechStacks, c.Cache, usecase.JobSearchOptions{
		JobTTL:               cfg.Redis.JobTTL,
		SearchTTL:            cfg.Redis.SearchTTL,
		FacetCountsFromStore: cfg.Engine.FacetCountsFromStore,
	}, log)
	c.Ingest = usecase.NewJobIngestUsecase(c.Jobs, c.Companies, c.TechStacks, c.Cache, c.Hub, log)
	c.Catalog = usecase.NewCatalogUsecase(c.Companies, c.TechStacks, c.Search, log)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if err := c.Cache.Close(); err != nil {
		c.Logger.Warn("close cache failed", zap.Error(err))
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
