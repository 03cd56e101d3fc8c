package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"job-navigator/internal/delivery/http/middleware"
	"job-navigator/internal/pkg/response"
	"job-navigator/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError turns usecase sentinels into HTTP errors. Client errors
// keep their reason in the message; anything else is a masked 500.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInternal):
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	case errors.Is(err, usecase.ErrInvalidQuery), errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "job not found", nil, err)
	case errors.Is(err, usecase.ErrDuplicateJob):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmtQueryError(key, s)
	}
	return v, nil
}

// parseIDList accepts comma separated ids, as in ?companyIds=1,2,3.
func parseIDList(c fiber.Ctx, key string) ([]int64, error) {
	s := c.Query(key)
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmtQueryError(key, p)
		}
		out = append(out, v)
	}
	return out, nil
}

func parsePathID(c fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmtQueryError("id", raw)
	}
	return id, nil
}

func fmtQueryError(key, value string) error {
	return fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidQuery, key, value)
}
