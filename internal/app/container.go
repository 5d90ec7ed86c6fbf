package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"datajobs/internal/alias"
	"datajobs/internal/config"
	"datajobs/internal/database"
	"datajobs/internal/database/migration"
	dbpostgres "datajobs/internal/database/postgres"
	"datajobs/internal/database/seeder"
	"datajobs/internal/dedup"
	"datajobs/internal/dimension"
	"datajobs/internal/infrastructure/cache"
	"datajobs/internal/ingest"
	"datajobs/internal/pkg/jwt"
	"datajobs/internal/repository"
	"datajobs/internal/usecase"
	"datajobs/internal/ws"

	"github.com/google/uuid"
)

// Container wires the whole engine: store, cache, vocabularies, resolvers
// and the coordinator. Build it once at startup; the vocabulary caches it
// warms are shared by every request after that.
type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	JWT    jwt.Service
	Logger *log.Logger

	Coordinator *ingest.Coordinator
	Batch       *ingest.BatchRunner

	Quarantine repository.QuarantineRepository
	Sources    repository.SourceRepository
	Status     *usecase.StatusUsecase
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := (migration.Runner{}).Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := seeder.Defaults().Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	rdb := cache.NewRedis(logger)
	hub := ws.NewHub(logger)
	go hub.Run()

	skillRepo := repository.NewPostgresSkillRepository(db)
	roleRepo := repository.NewPostgresRoleRepository(db)
	locationRepo := repository.NewPostgresLocationRepository(db)
	companyRepo := repository.NewPostgresCompanyRepository(db)
	postingRepo := repository.NewPostgresPostingRepository(db)
	quarantineRepo := repository.NewPostgresQuarantineRepository(db)
	sourceRepo := repository.NewPostgresSourceRepository(db)
	runRepo := repository.NewPostgresRunRepository(db)
	aliasRepo := repository.NewPostgresAliasRepository(db)

	skillVocab, err := warmVocabulary(ctx, skillRepo.ListEntries, skillRepo.ListAliases)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("warm skill vocabulary: %w", err)
	}
	roleVocab, err := warmVocabulary(ctx, roleRepo.ListEntries, roleRepo.ListAliases)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("warm role vocabulary: %w", err)
	}
	locationVocab, err := warmVocabulary(ctx, locationRepo.ListEntries, locationRepo.ListAliases)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("warm location vocabulary: %w", err)
	}
	logger.Printf("vocabularies warmed | skills=%d roles=%d locations=%d",
		skillVocab.Len(), roleVocab.Len(), locationVocab.Len())

	threshold := cfg.Ingest.AliasThreshold
	skillResolver := alias.NewResolver(alias.KindSkill, skillVocab, aliasRepo, threshold, logger)
	roleResolver := alias.NewResolver(alias.KindRole, roleVocab, aliasRepo, threshold, logger)
	locationResolver := alias.NewResolver(alias.KindLocation, locationVocab, aliasRepo, threshold, logger)

	dims := dimension.NewUpserter(companyRepo, locationRepo, logger)
	classifier := dedup.NewClassifier(postingRepo, cfg.Ingest.DuplicateThreshold, cfg.Ingest.UpdateThreshold)

	coordinator := ingest.NewCoordinator(
		skillResolver, roleResolver, locationResolver,
		dims, classifier, postingRepo, quarantineRepo, sourceRepo, db, logger,
	)
	batch := ingest.NewBatchRunner(
		coordinator, runRepo, ws.NewProgressNotifier(hub, logger),
		cfg.Ingest.BatchWorkers, cfg.Ingest.RetryAttempts, cfg.Ingest.RetryBackoff, logger,
	)

	return &Container{
		Config:      cfg,
		DB:          db,
		Cache:       rdb,
		Hub:         hub,
		JWT:         jwt.NewHMACService(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiresIn),
		Logger:      logger,
		Coordinator: coordinator,
		Batch:       batch,
		Quarantine:  quarantineRepo,
		Sources:     sourceRepo,
		Status:      usecase.NewStatusUsecase(postingRepo, quarantineRepo, db, rdb, hub),
	}, nil
}

func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

func warmVocabulary(
	ctx context.Context,
	listEntries func(context.Context) ([]alias.Entry, error),
	listAliases func(context.Context) (map[string]uuid.UUID, error),
) (*alias.Vocabulary, error) {
	v := alias.NewVocabulary()

	entries, err := listEntries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		v.AddEntry(e)
	}

	aliases, err := listAliases(ctx)
	if err != nil {
		return nil, err
	}
	for surface, id := range aliases {
		v.AddAlias(surface, id)
	}
	return v, nil
}
