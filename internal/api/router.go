package api

import (
	"fmt"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kata/sweetshop/docs"
	"github.com/kata/sweetshop/internal/api/handler"
	"github.com/kata/sweetshop/internal/api/middleware"
	"github.com/kata/sweetshop/internal/core/ports"
	"github.com/kata/sweetshop/internal/infrastructure/http/handlers"
	"github.com/kata/sweetshop/internal/pkg/config"
)

const (
	metricsSubsystem = "http"
	uploadsPath      = "/uploads"
	// multipart framing on top of the raw file size
	uploadOverhead = 64 << 10
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Auth         ports.AuthService
	Inventory    ports.InventoryService
	Images       ports.ImageService
	HealthChecks []handlers.DependencyCheck

	// Registerer and Gatherer default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	cfg := deps.Config
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	sweetHandler := handler.NewSweetHandler(deps.Inventory)
	uploadHandler := handler.NewUploadHandler(deps.Images)
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks...)

	authenticate := middleware.Authenticate(deps.Auth)
	adminOnly := middleware.RequireAdministrator()

	api := e.Group(cfg.APIPrefix)

	// --- Auth routes ---
	auth := api.Group("/auth")
	credentials := []echo.MiddlewareFunc{}
	if cfg.Auth.RateLimit > 0 {
		credentials = append(credentials, middleware.AuthRateLimit(cfg.Auth.RateLimit, cfg.Auth.RateBurst))
	}
	auth.POST("/register", authHandler.Register, credentials...)
	auth.POST("/login", authHandler.Login, credentials...)
	auth.GET("/me", authHandler.Me, authenticate)
	auth.POST("/logout", authHandler.Logout, authenticate)

	// --- Sweet routes (authenticated; mutations admin only) ---
	sweets := api.Group("/sweets", authenticate)
	sweets.GET("", sweetHandler.List)
	sweets.GET("/search", sweetHandler.Search)
	sweets.GET("/:id", sweetHandler.Get)
	sweets.POST("", sweetHandler.Create, adminOnly)
	sweets.PUT("/:id", sweetHandler.Update, adminOnly)
	sweets.DELETE("/:id", sweetHandler.Delete, adminOnly)
	sweets.POST("/:id/purchase", sweetHandler.Purchase)
	sweets.POST("/:id/restock", sweetHandler.Restock, adminOnly)
	sweets.GET("/:id/movements", sweetHandler.Movements, adminOnly)

	// --- Uploads ---
	api.POST(uploadsPath, uploadHandler.Upload,
		authenticate,
		adminOnly,
		echomiddleware.BodyLimit(fmt.Sprintf("%d", cfg.Uploads.MaxBytes+uploadOverhead)),
	)
	e.Static(uploadsPath, cfg.Uploads.Dir)

	// --- Health probes (no auth required) ---
	api.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	api.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.StaticDir != "" {
		e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
			Root:  cfg.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, cfg.APIPrefix+"/") ||
					strings.HasPrefix(p, "/swagger/") ||
					strings.HasPrefix(p, uploadsPath+"/") ||
					p == "/metrics"
			},
		}))
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			} else if v.Status >= 400 {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
