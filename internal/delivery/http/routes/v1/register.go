package v1

import (
	"log"

	"datajobs/internal/config"
	"datajobs/internal/database"
	"datajobs/internal/delivery/http/handler"
	"datajobs/internal/delivery/http/middleware"
	"datajobs/internal/infrastructure/cache"
	"datajobs/internal/ingest"
	"datajobs/internal/pkg/jwt"
	"datajobs/internal/repository"
	"datajobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// Deps is everything the v1 surface needs. The container builds it once
// after the vocabulary warm-up.
type Deps struct {
	Cfg         config.Config
	DB          database.DB
	Cache       *cache.Redis
	JWT         jwt.Service
	Coordinator *ingest.Coordinator
	Batch       *ingest.BatchRunner
	Quarantine  repository.QuarantineRepository
	Sources     repository.SourceRepository
	Status      *usecase.StatusUsecase
	Logger      *log.Logger
}

func Register(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(deps.JWT)

	authUC := usecase.NewAuthUsecase(deps.Sources, deps.JWT)
	authHandler := handler.NewAuthHandler(authUC, deps.Cfg.Auth.TokenExpiresIn)
	ingestHandler := handler.NewIngestHandler(deps.Coordinator, deps.Batch, deps.Cache, deps.Logger)
	quarantineHandler := handler.NewQuarantineHandler(deps.Quarantine)
	statusHandler := handler.NewStatusHandler(deps.Status)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	quarantineHandler.RegisterRoutes(r)
	statusHandler.RegisterRoutes(r)

	protected := r.Group("", authMw.Middleware())
	ingestHandler.RegisterRoutes(protected)
}
