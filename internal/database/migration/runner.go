package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"job-navigator/internal/database"
	"job-navigator/internal/logger"

	"go.uber.org/zap"
)

// lockKey serializes migrators (server replicas and the crawler) sharing a
// database. The lock is transaction scoped so it always releases with the
// migration's own transaction.
const lockKey int64 = 913377201

const (
	createLedgerSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	lockSQL     = `SELECT pg_advisory_xact_lock($1)`
	checksumSQL = `SELECT checksum FROM schema_migrations WHERE version = $1`
	recordSQL   = `INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`
)

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

var ErrChecksumMismatch = errors.New("applied migration was modified")

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// Runner applies V{n}__name.sql files from Source in version order.
type Runner struct {
	Source fs.FS
	Logger *zap.Logger
}

// Dir returns the migrations directory as a filesystem. An empty path means
// the migrations directory next to the executable.
func Dir(path string) fs.FS {
	if strings.TrimSpace(path) == "" {
		if exe, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exe), "migrations")
		} else {
			path = "migrations"
		}
	}
	return os.DirFS(path)
}

// Run applies pending migrations and reports how many it applied. A version
// that is already recorded must keep its checksum.
func (r Runner) Run(ctx context.Context, db database.DB) (int, error) {
	if db == nil {
		return 0, errors.New("nil db")
	}
	log := logger.OrNop(r.Logger)

	migs, err := load(r.Source)
	if err != nil {
		return 0, err
	}
	if len(migs) == 0 {
		log.Warn("no migrations found")
		return 0, nil
	}

	n := 0
	for _, m := range migs {
		applied, err := apply(ctx, db, m)
		if err != nil {
			return n, err
		}
		if applied {
			log.Info("migration applied", zap.Int64("version", m.Version), zap.String("name", m.Name))
			n++
		}
	}
	return n, nil
}

// apply runs m in its own transaction unless it is already recorded.
func apply(ctx context.Context, db database.DB, m Migration) (bool, error) {
	applied := false
	err := database.WithTx(ctx, db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, lockSQL, lockKey); err != nil {
			return fmt.Errorf("lock migrations: %w", err)
		}
		if _, err := tx.Exec(ctx, createLedgerSQL); err != nil {
			return fmt.Errorf("create migration ledger: %w", err)
		}

		recorded, found, err := recordedChecksum(ctx, tx, m.Version)
		if err != nil {
			return err
		}
		if found {
			if recorded != m.Checksum {
				return fmt.Errorf("%w: version=%d name=%s", ErrChecksumMismatch, m.Version, m.Name)
			}
			return nil
		}

		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Filename, err)
		}
		if _, err := tx.Exec(ctx, recordSQL, m.Version, m.Name, m.Checksum); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Filename, err)
		}
		applied = true
		return nil
	})
	return applied, err
}

func recordedChecksum(ctx context.Context, tx database.Tx, version int64) (string, bool, error) {
	rows, err := tx.Query(ctx, checksumSQL, version)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var sum string
	if err := rows.Scan(&sum); err != nil {
		return "", false, err
	}
	return sum, true, rows.Err()
}

// load reads and orders the migration files of fsys. A missing directory
// yields no migrations.
func load(fsys fs.FS) ([]Migration, error) {
	if fsys == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var migs []Migration
	for _, e := range entries {
		parts := fileRe.FindStringSubmatch(e.Name())
		if e.IsDir() || parts == nil {
			continue
		}
		version, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", e.Name())
		}
		b, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(b))
		if body == "" {
			return nil, fmt.Errorf("empty migration file: %s", e.Name())
		}
		sum := sha256.Sum256([]byte(body))
		migs = append(migs, Migration{
			Version:  version,
			Name:     parts[2],
			Filename: e.Name(),
			SQL:      body,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	slices.SortFunc(migs, func(a, b Migration) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}
	return migs, nil
}
