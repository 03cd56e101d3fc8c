package handler

import (
	"context"
	"time"

	"job-navigator/internal/database"
	"job-navigator/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const healthTimeout = 2 * time.Second

type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() database.PoolStats
}

type CacheProbe interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string              `json:"status"`
	Database string              `json:"database"`
	Cache    string              `json:"cache"`
	Pool     *database.PoolStats `json:"pool,omitempty"`
	Clients  int                 `json:"ws_clients"`
}

// HealthHandler reports the store as required and the cache as optional: a
// missing cache degrades but does not fail the check.
type HealthHandler struct {
	db      DatabaseProbe
	cache   CacheProbe
	clients func() int
}

func NewHealthHandler(db DatabaseProbe, cache CacheProbe, clients func() int) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, clients: clients}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Handle)
}

func (h *HealthHandler) Handle(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	res := healthResponse{Status: "up", Database: "up", Cache: "disabled"}
	status := fiber.StatusOK

	if h.db == nil {
		res.Database = "unknown"
	} else if err := h.db.Ping(ctx); err != nil {
		res.Status, res.Database = "down", "down"
		status = fiber.StatusServiceUnavailable
	} else {
		stats := h.db.Stats()
		res.Pool = &stats
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			res.Cache = "unavailable"
		} else {
			res.Cache = "up"
		}
	}
	if h.clients != nil {
		res.Clients = h.clients()
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, response.MessageServiceUnavailable, res)
	}
	return response.Success(c, status, response.MessageOK, res)
}
