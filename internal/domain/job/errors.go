package job

import "errors"

var (
	ErrInvalidQuery          = errors.New("invalid query")
	ErrInvalidJob            = errors.New("invalid job")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInconsistentReference = errors.New("inconsistent reference")
)
