package app

import (
	"fmt"
	"log"
	"strings"

	"datajobs/internal/config"
	"datajobs/internal/delivery/http/middleware"
	"datajobs/internal/delivery/http/routes"
	v1 "datajobs/internal/delivery/http/routes/v1"
	"datajobs/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container and the HTTP surface on top of it. The
// returned cleanup closes the store.
func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{})
	registerGlobalMiddleware(f, c.Logger)

	deps := v1.Deps{
		Cfg:         c.Config,
		DB:          c.DB,
		Cache:       c.Cache,
		JWT:         c.JWT,
		Coordinator: c.Coordinator,
		Batch:       c.Batch,
		Quarantine:  c.Quarantine,
		Sources:     c.Sources,
		Status:      c.Status,
		Logger:      c.Logger,
	}
	routes.NewRegistry(deps, ws.NewHandler(c.Hub, c.Logger)).Register(f)

	return &App{Fiber: f, Container: c}, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}
	app.Use(middleware.NewErrorMiddleware().Middleware())
	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
