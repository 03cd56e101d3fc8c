package usecase

import (
	"errors"

	"job-navigator/internal/domain/job"
	"job-navigator/internal/repository"
)

var (
	ErrInvalidQuery = job.ErrInvalidQuery
	ErrInvalidInput = job.ErrInvalidJob
	ErrJobNotFound  = repository.ErrJobNotFound
	ErrDuplicateJob = repository.ErrDuplicateSourceURL
	ErrInternal     = errors.New("internal error")
)
