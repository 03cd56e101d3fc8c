package repository

import (
	"errors"
	"fmt"

	"job-navigator/internal/domain/job"

	goerrors "github.com/go-errors/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrJobNotFound        = fmt.Errorf("job %w", job.ErrNotFound)
	ErrDuplicateSourceURL = fmt.Errorf("source url %w", job.ErrConflict)
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// integrityFault marks data that should be impossible given the schema. The
// wrapped error carries a stack trace for the error middleware to log.
func integrityFault(format string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf("%w: "+format, append([]any{job.ErrInconsistentReference}, args...)...), 1)
}
