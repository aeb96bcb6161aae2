package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/abiturient/internal/app/controllers"
	appMigrations "github.com/yigit/abiturient/internal/app/migrations"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	appRepos "github.com/yigit/abiturient/internal/app/repositories"
	"github.com/yigit/abiturient/internal/app/resource"
	appRoutes "github.com/yigit/abiturient/internal/app/routes"
	appServices "github.com/yigit/abiturient/internal/app/services"
	"github.com/yigit/abiturient/internal/config"
	"github.com/yigit/abiturient/internal/db"
	appMiddleware "github.com/yigit/abiturient/internal/middleware"
	"github.com/yigit/abiturient/internal/pkg/assistant"
	pkgAuth "github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/logger"
	"github.com/yigit/abiturient/internal/pkg/session"
	"github.com/yigit/abiturient/internal/pkg/websocket"
	"github.com/yigit/abiturient/internal/seed"
)

const serviceName = "abiturient-api"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos    *appRepos.Repositories
	Sessions *session.Store
	JWT      *pkgAuth.JWTService

	UserService        appServices.UserService
	InstitutionService appServices.InstitutionService
	ProgramService     appServices.ProgramService
	ReportService      appServices.ReportService
	AuthService        *appServices.AuthService
	AnalyticsService   *appServices.AnalyticsService
	DashboardService   *appServices.DashboardService

	AuthController      *appControllers.AuthController
	AnalyticsController *appControllers.AnalyticsController
	CatalogController   *appControllers.CatalogController
	DashboardController *appControllers.DashboardController
	AssistantController *appControllers.AssistantController
	AdminResources      []appRoutes.ResourceRegistrar

	Hub            *websocket.Hub
	WSHandler      *websocket.Handler
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// ConfigPath returns CONFIG_PATH or configs/config.yaml.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   level,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: serviceName,
	})
	lgr.Info().Str("logLevel", string(level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects, applies pending migrations and seeds demo data
// when enabled.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	pool := database.Pool

	if err := Migrate(ctx, pool, lgr); err != nil {
		pool.Close()
		return nil, err
	}

	if cfg.Seed.Enabled {
		opts := seed.Options{AdminEmail: cfg.Seed.AdminEmail, AdminPassword: cfg.Seed.AdminPassword}
		if _, err := seed.CreateDefaultData(ctx, pool, opts, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}
	return pool, nil
}

// Migrate applies the embedded migrations that have not run yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(pool, appMigrations.Embedded()).Up(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Strs("applied", applied).Msg("Database migrations up to date")
	return nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(pool)

	sessions, err := session.Open(cfg.Session.Path)
	if err != nil {
		lgr.Error().Err(err).Str("path", cfg.Session.Path).Msg("Failed to open session store")
		return nil, err
	}
	deps.Sessions = sessions

	deps.JWT = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.Repos.StudentRecordRepository, sessions)
	deps.InstitutionService = appServices.NewInstitutionService(deps.Repos.InstitutionRepository)
	deps.ProgramService = appServices.NewProgramService(deps.Repos.ProgramRepository)
	deps.ReportService = appServices.NewReportService(deps.Repos.ReportRepository)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, sessions, deps.JWT)
	deps.AnalyticsService = appServices.NewAnalyticsService(deps.Repos.AnalyticsRepository)
	deps.DashboardService = appServices.NewDashboardService(
		deps.Repos.StudentRecordRepository,
		deps.Repos.SavedInstitutionRepository,
		deps.Repos.ParentLinkRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWT, sessions)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, cfg.Server.CookieSecure, lgr)
	deps.AnalyticsController = appControllers.NewAnalyticsController(deps.AnalyticsService)
	deps.CatalogController = appControllers.NewCatalogController(deps.InstitutionService)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService)
	deps.AssistantController = appControllers.NewAssistantController(assistant.Respond)

	deps.Hub = websocket.NewHub(lgr)
	deps.WSHandler = websocket.NewHandler(deps.Hub, assistant.Respond, lgr)

	deps.AdminResources = adminResources(deps)
	return deps, nil
}

func adminResources(deps *Dependencies) []appRoutes.ResourceRegistrar {
	return []appRoutes.ResourceRegistrar{
		resource.NewHandler[models.User, models.UserDetail, dto.CreateUserRequest, dto.UpdateUserRequest](
			deps.UserService, resource.Options{
				Name:         "users",
				Entity:       "User",
				Filters:      []string{"role"},
				BeforeDelete: resource.PreventSelfDelete,
			}),
		resource.NewHandler[models.Institution, models.InstitutionDetail, dto.CreateInstitutionRequest, dto.UpdateInstitutionRequest](
			deps.InstitutionService, resource.Options{
				Name:    "institutions",
				Entity:  "Institution",
				Filters: []string{"type"},
			}),
		resource.NewHandler[models.Program, models.Program, dto.CreateProgramRequest, dto.UpdateProgramRequest](
			deps.ProgramService, resource.Options{
				Name:    "programs",
				Entity:  "Program",
				Filters: []string{"faculty", "institutionId"},
			}),
		resource.NewHandler[models.Report, models.Report, dto.CreateReportRequest, dto.UpdateReportRequest](
			deps.ReportService, resource.Options{
				Name:    "reports",
				Entity:  "Report",
				Filters: []string{"userId"},
			}),
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, pool *pgxpool.Pool, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.ErrorHandler())

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AnalyticsController,
		deps.CatalogController,
		deps.DashboardController,
		deps.AssistantController,
		deps.WSHandler,
		deps.AdminResources,
		deps.AuthMiddleware,
	)

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
