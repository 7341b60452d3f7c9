package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ak/flavorfusion/internal/app/middleware"
	"github.com/ak/flavorfusion/internal/domain/services"
	"github.com/ak/flavorfusion/internal/infrastructure/config"
	"github.com/ak/flavorfusion/internal/infrastructure/metrics"
	"github.com/ak/flavorfusion/internal/infrastructure/repositories"
	"github.com/ak/flavorfusion/internal/infrastructure/vision"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthChecker reports the health of each backend by name
type HealthChecker func(ctx context.Context) map[string]error

// Services are the domain services the HTTP layer serves
type Services struct {
	Catalog  services.CatalogService
	Sessions services.SessionService
	Detector *services.IngredientDetector
	Health   HealthChecker
}

// Application holds all application dependencies and services
type Application struct {
	config      *config.Config
	logger      *logger.Logger
	catalog     services.CatalogService
	sessions    services.SessionService
	detector    *services.IngredientDetector
	health      HealthChecker
	tokenConfig middleware.TokenConfig
	limiter     *middleware.RateLimiter
	router      *gin.Engine
}

// New wires the domain services on top of repos, loads the catalog and builds
// the router.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, repos *repositories.Provider) (*Application, error) {
	matcher := services.NewMatcher(services.MatchPolicy(cfg.Matching.Policy))
	catalog := services.NewCatalogService(repos.Recipe, matcher, services.CatalogOptions{
		DefaultLimit:   cfg.Search.DefaultLimit,
		QuickSearchMin: cfg.Search.QuickSearchMin,
	}, log)
	if err := catalog.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	metrics.SetCatalogSize(catalog.Size())

	var labels services.LabelDetector
	if cfg.Vision.Enabled {
		labels = vision.NewClient(cfg.Vision)
	} else {
		log.Info("Vision label detection disabled, image uploads return fallback ingredients")
	}

	svc := Services{
		Catalog:  catalog,
		Sessions: services.NewSessionService(repos.Session, catalog, log),
		Detector: services.NewIngredientDetector(labels, cfg.Vision.Fallback, log),
		Health:   repos.Health,
	}
	return newApplication(cfg, log, svc), nil
}

func newApplication(cfg *config.Config, log *logger.Logger, svc Services) *Application {
	app := &Application{
		config:   cfg,
		logger:   log.WithComponent("http"),
		catalog:  svc.Catalog,
		sessions: svc.Sessions,
		detector: svc.Detector,
		health:   svc.Health,
		tokenConfig: middleware.TokenConfig{
			Secret: cfg.Session.Secret,
			Issuer: cfg.Session.Issuer,
			TTL:    cfg.Session.TokenTTL,
		},
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app.router = gin.New()
	app.router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	app.router.Use(middleware.RecoveryMiddleware(log.Logger))
	app.router.Use(requestid.New())
	app.router.Use(middleware.LoggerMiddleware(log.Logger))
	app.router.Use(middleware.MetricsMiddleware())
	app.router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  cfg.CORS.AllowedMethods,
		AllowHeaders:  cfg.CORS.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	app.setupRoutes()
	return app
}

// Router returns the HTTP handler
func (a *Application) Router() http.Handler {
	return a.router
}

// Close stops background work owned by the application
func (a *Application) Close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
}

// setupRoutes configures all application routes
func (a *Application) setupRoutes() {
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/ready", a.readinessCheck)
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := a.router.Group("/api/v1")
	if a.config.RateLimit.Enabled {
		a.limiter = middleware.NewRateLimiter(a.config.RateLimit.RequestsPerSecond, a.config.RateLimit.Burst)
		v1.Use(a.limiter.Middleware())
	}
	v1.Use(middleware.OptionalSession(a.tokenConfig))
	{
		v1.GET("/info", a.apiInfo)

		recipes := v1.Group("/recipes")
		{
			recipes.GET("", a.listRecipes)
			recipes.GET("/quick-search", a.quickSearch)
			recipes.GET("/:id", a.getRecipe)
		}

		v1.POST("/search", a.searchRecipes)
		v1.POST("/rate", a.rateRecipe)
		v1.GET("/substitutions/:id", a.getSubstitutions)
		v1.POST("/ingredients/detect", a.detectIngredients)

		v1.POST("/sessions", a.createSession)

		authed := v1.Group("")
		authed.Use(middleware.RequireSession(a.tokenConfig))
		{
			authed.GET("/favorites", a.listFavorites)
			authed.POST("/favorites/:id", a.addFavorite)
			authed.DELETE("/favorites/:id", a.removeFavorite)
			authed.GET("/suggestions", a.getSuggestions)
		}
	}

	a.logger.Debug("Routes registered", zap.Int("routes", len(a.router.Routes())))
}
