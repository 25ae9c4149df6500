package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	"github.com/fanfie/fanfie-api/internal/handler"
	"github.com/fanfie/fanfie-api/internal/middleware"
	"github.com/fanfie/fanfie-api/internal/pkg/database"
	"github.com/fanfie/fanfie-api/internal/pkg/storage"
	pgrepo "github.com/fanfie/fanfie-api/internal/repository/postgres"
	"github.com/fanfie/fanfie-api/internal/service"
	"github.com/fanfie/fanfie-api/internal/worker"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	Postgres    *database.PostgresDB
	Redis       *database.RedisDB
	Objects     *storage.MinIOStore
	AsynqClient *asynq.Client

	// Repositories
	OrgRepo     *pgrepo.OrgRepository
	ProjectRepo *pgrepo.ProjectRepository
	ImageRepo   *pgrepo.ImageRepository
	UserRepo    *pgrepo.UserRepository

	// Services
	OrgService         *service.OrgService
	ProjectService     *service.ProjectService
	AssociationService *service.AssociationService
	ImageService       *service.ImageService
	AuthService        *service.AuthService

	// Handlers
	HealthHandler        *handler.HealthHandler
	AuthHandler          *handler.AuthHandler
	OrganizationsHandler *handler.OrganizationsHandler
	ProjectsHandler      *handler.ProjectsHandler
	ImagesHandler        *handler.ImagesHandler

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
	Admission      *middleware.Admission
}

// initDependencies initializes all dependencies
func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	deps.Postgres = pgDB

	redisDB, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	deps.Redis = redisDB

	objects, err := storage.NewMinIOStore(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	deps.Objects = objects

	deps.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	enqueuer := worker.NewEnqueuer(deps.AsynqClient, cfg.Worker)

	// Repositories
	deps.OrgRepo = pgrepo.NewOrgRepository(pgDB)
	deps.ProjectRepo = pgrepo.NewProjectRepository(pgDB)
	deps.ImageRepo = pgrepo.NewImageRepository(pgDB)
	deps.UserRepo = pgrepo.NewUserRepository(pgDB)

	// Services
	deps.OrgService = service.NewOrgService(deps.OrgRepo, enqueuer, logger)
	deps.ProjectService = service.NewProjectService(deps.ProjectRepo, deps.OrgRepo, logger)
	deps.AssociationService = service.NewAssociationService(deps.ProjectRepo, deps.OrgRepo, logger)
	deps.ImageService = service.NewImageService(deps.ImageRepo, objects, enqueuer, logger)
	deps.AuthService = service.NewAuthService(deps.UserRepo, cfg.JWT, logger)

	// Admission gate
	counterStore := middleware.NewRedisCounterStore(redisDB.Client)
	blockStore := middleware.NewRedisBlockStore(redisDB.Client)
	limiter := middleware.NewRateLimiter(counterStore, cfg.RateLimit)
	guard := middleware.NewAbuseGuard(blockStore, cfg.Abuse)
	deps.Admission = middleware.NewAdmission(limiter, guard, cfg.Admission, logger)
	deps.AuthMiddleware = middleware.NewAuthMiddleware(deps.AuthService, cfg.JWT.CookieName)

	// Handlers
	deps.HealthHandler = handler.NewHealthHandler(pgDB.Pool, redisDB.Client, appVersion)
	deps.AuthHandler = handler.NewAuthHandler(deps.AuthService, cfg.JWT, logger)
	deps.OrganizationsHandler = handler.NewOrganizationsHandler(deps.OrgService, deps.AssociationService, logger)
	deps.ProjectsHandler = handler.NewProjectsHandler(deps.ProjectService, deps.AssociationService, logger)
	deps.ImagesHandler = handler.NewImagesHandler(deps.ImageService, logger)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.AsynqClient != nil {
		d.AsynqClient.Close()
	}
}
