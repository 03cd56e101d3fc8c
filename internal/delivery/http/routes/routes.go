package routes

import (
	"job-navigator/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// Registry owns every HTTP entry point of the service. Nil handlers are
// skipped so partial wiring in tests stays possible.
type Registry struct {
	Health  *handler.HealthHandler
	Jobs    *handler.JobsHandler
	Catalog *handler.CatalogHandler
	JobsWS  fiber.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil || r == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	r.registerV1(api.Group("/v1"))
}

func (r *Registry) registerV1(v1 fiber.Router) {
	if r.Jobs != nil {
		r.Jobs.RegisterRoutes(v1)
	}
	if r.Catalog != nil {
		r.Catalog.RegisterRoutes(v1)
	}
	if r.Health != nil {
		r.Health.RegisterRoutes(v1)
	}
	if r.JobsWS != nil {
		v1.Get("/ws/jobs", r.JobsWS)
	}
}
