package routes

import (
	"datajobs/internal/delivery/http/handler"
	v1 "datajobs/internal/delivery/http/routes/v1"
	"datajobs/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	deps   v1.Deps
	health *handler.HealthHandler
	wsh    *ws.Handler
}

func NewRegistry(deps v1.Deps, wsh *ws.Handler) *Registry {
	return &Registry{
		deps:   deps,
		health: handler.NewHealthHandler(deps.DB),
		wsh:    wsh,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)
	if r.wsh != nil {
		app.Get("/ws/ingest", r.wsh.HandleIngestWS)
	}

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.deps)
}
