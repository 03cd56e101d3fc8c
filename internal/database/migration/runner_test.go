package migration

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"job-navigator/internal/database"
)

func files(m map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range m {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

// fakeDB keeps the migration ledger in memory and records every statement.
type fakeDB struct {
	ledger    map[int64]string
	execs     []string
	commits   int
	rollbacks int
	failOn    string
}

func newFakeDB() *fakeDB { return &fakeDB{ledger: map[int64]string{}} }

func (f *fakeDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, errors.New("not used")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) database.Row {
	return nil
}

func (f *fakeDB) Begin(context.Context) (database.Tx, error) {
	return &fakeTx{db: f, pending: map[int64]string{}}, nil
}

type fakeTx struct {
	db      *fakeDB
	pending map[int64]string
	done    bool
}

func (t *fakeTx) Exec(_ context.Context, query string, args ...any) (int64, error) {
	if t.db.failOn != "" && strings.Contains(query, t.db.failOn) {
		return 0, errors.New("syntax error")
	}
	t.db.execs = append(t.db.execs, query)
	if query == recordSQL {
		t.pending[args[0].(int64)] = args[2].(string)
	}
	return 0, nil
}

func (t *fakeTx) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	if query != checksumSQL {
		return nil, errors.New("unexpected query")
	}
	sum, ok := t.db.ledger[args[0].(int64)]
	if !ok {
		return &fakeRows{}, nil
	}
	return &fakeRows{values: []string{sum}}, nil
}

func (t *fakeTx) QueryRow(context.Context, string, ...any) database.Row { return nil }

func (t *fakeTx) Commit(context.Context) error {
	for v, sum := range t.pending {
		t.db.ledger[v] = sum
	}
	t.done = true
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.done {
		t.db.rollbacks++
	}
	return nil
}

type fakeRows struct {
	values []string
	i      int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	if r.i >= len(r.values) {
		return false
	}
	r.i++
	return true
}
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.values[r.i-1]
	return nil
}

func TestLoad_OrderAndFilter(t *testing.T) {
	migs, err := load(files(map[string]string{
		"V2__add_index.sql": "CREATE INDEX x ON t(a);",
		"V1__init.sql":      "CREATE TABLE t (a INT);",
		"README.md":         "ignored",
		"v3__lowercase.sql": "ignored",
	}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "init" || migs[1].Version != 2 {
		t.Fatalf("unexpected order: %+v", migs)
	}
	if migs[0].Checksum == "" || migs[0].Checksum == migs[1].Checksum {
		t.Fatalf("expected distinct checksums")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"duplicate version": {"V1__a.sql": "SELECT 1;", "V1__b.sql": "SELECT 2;"},
		"empty file":        {"V1__empty.sql": "   \n"},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(files(fsys)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MissingDir(t *testing.T) {
	migs, err := load(Dir(filepath.Join(t.TempDir(), "nope")))
	if err != nil || migs != nil {
		t.Fatalf("expected no migrations and no error, got %v %v", migs, err)
	}
}

func TestLoad_CatalogSchema(t *testing.T) {
	migs, err := load(Dir(filepath.Join("..", "..", "..", "migrations")))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) == 0 || migs[0].Name != "init_catalog" {
		t.Fatalf("expected catalog schema migration, got %+v", migs)
	}
}

func TestRunner_AppliesOnceUnderLock(t *testing.T) {
	db := newFakeDB()
	r := Runner{Source: files(map[string]string{
		"V1__init.sql":  "CREATE TABLE t (a INT);",
		"V2__index.sql": "CREATE INDEX x ON t(a);",
	})}

	n, err := r.Run(context.Background(), db)
	if err != nil || n != 2 {
		t.Fatalf("first run: n=%d err=%v", n, err)
	}
	if db.execs[0] != lockSQL {
		t.Fatalf("lock must be taken first, got %q", db.execs[0])
	}

	n, err = r.Run(context.Background(), db)
	if err != nil || n != 0 {
		t.Fatalf("second run must be a no-op: n=%d err=%v", n, err)
	}
	if db.commits != 4 {
		t.Fatalf("expected one transaction per migration per run, got %d commits", db.commits)
	}
}

func TestRunner_ChecksumMismatch(t *testing.T) {
	db := newFakeDB()
	db.ledger[1] = "stale"
	r := Runner{Source: files(map[string]string{"V1__init.sql": "CREATE TABLE t (a INT);"})}

	_, err := r.Run(context.Background(), db)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestRunner_FailedMigrationRollsBack(t *testing.T) {
	db := newFakeDB()
	db.failOn = "BROKEN"
	r := Runner{Source: files(map[string]string{
		"V1__init.sql":   "CREATE TABLE t (a INT);",
		"V2__broken.sql": "BROKEN STATEMENT;",
	})}

	n, err := r.Run(context.Background(), db)
	if err == nil || n != 1 {
		t.Fatalf("expected failure after one migration, n=%d err=%v", n, err)
	}
	if _, ok := db.ledger[2]; ok {
		t.Fatalf("failed migration must not be recorded")
	}
	if db.rollbacks != 1 {
		t.Fatalf("expected one rollback, got %d", db.rollbacks)
	}
}

func TestRunner_NilDB(t *testing.T) {
	if _, err := (Runner{}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
