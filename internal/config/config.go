package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Engine   EngineConfig
	Crawler  CrawlerConfig `envPrefix:"CRAWLER_"`
}

type AppConfig struct {
	AppName     string `env:"APP_NAME,required,notEmpty"`
	Environment string `env:"APP_ENV,required,notEmpty"`
	HTTPPort    string `env:"HTTP_PORT,required,notEmpty"`
}

func (a AppConfig) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(a.Environment)) {
	case "development", "dev", "local":
		return true
	}
	return false
}

type DatabaseConfig struct {
	DBHost     string `env:"HOST" envDefault:"localhost"`
	DBPort     string `env:"PORT" envDefault:"5432"`
	DBName     string `env:"NAME"`
	DBUser     string `env:"USER"`
	DBPassword string `env:"PASSWORD"`
	DBSSLMode  string `env:"SSL_MODE" envDefault:"disable"`

	ConnectTimeout        time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"POOL_MAX_CONNS" envDefault:"10"`
	PoolMinConns          int32         `env:"POOL_MIN_CONNS" envDefault:"1"`
	PoolMaxConnLifetime   time.Duration `env:"POOL_MAX_CONN_LIFETIME" envDefault:"1h"`
	PoolMaxConnIdleTime   time.Duration `env:"POOL_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	PoolHealthCheckPeriod time.Duration `env:"POOL_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
}

type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"true"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`

	JobTTL    time.Duration `env:"JOB_TTL" envDefault:"1h"`
	SearchTTL time.Duration `env:"SEARCH_TTL" envDefault:"10m"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", strings.TrimSpace(r.Host), strings.TrimSpace(r.Port))
}

type EngineConfig struct {
	// FacetCountsFromStore switches facet counts to the store's grouped
	// queries instead of aggregating over an in-memory snapshot.
	FacetCountsFromStore bool `env:"FACET_COUNTS_FROM_STORE" envDefault:"true"`
}

type CrawlerConfig struct {
	Workers   int           `env:"WORKERS" envDefault:"4"`
	RateLimit time.Duration `env:"RATE_LIMIT" envDefault:"500ms"`
	Headless  bool          `env:"HEADLESS" envDefault:"false"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
	UserAgent string        `env:"USER_AGENT" envDefault:"job-navigator-crawler/1.0"`
}

var errInvalidConfig = errors.New("invalid configuration")

// Load reads an optional .env file, then parses the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse(env.Options{})
}

// Parse builds a Config from the environment described by opts.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var problems []string
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		problems = append(problems, "DB_POOL_MIN_CONNS exceeds DB_POOL_MAX_CONNS")
	}
	if c.Crawler.Workers <= 0 {
		problems = append(problems, "CRAWLER_WORKERS must be positive")
	}
	if c.Redis.JobTTL <= 0 || c.Redis.SearchTTL <= 0 {
		problems = append(problems, "REDIS_JOB_TTL and REDIS_SEARCH_TTL must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, ", "))
	}
	return nil
}
