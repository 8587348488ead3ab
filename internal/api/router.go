package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taskflow/taskflow-api/internal/api/handler"
	"github.com/taskflow/taskflow-api/internal/api/metrics"
	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// RouterDeps carries everything NewRouter wires together. Services are built
// by the caller so the router stays free of store details.
type RouterDeps struct {
	AppName     string
	AppVersion  string
	CORSOrigins []string

	Auth      ports.AuthService
	Tasks     ports.TaskService
	Analytics ports.AnalyticsService

	// RateLimitStore guards the credential routes. Nil disables limiting.
	RateLimitStore echomiddleware.RateLimiterStore

	// ReadinessChecks are pinged by /health/ready, keyed by dependency name.
	ReadinessChecks map[string]handler.Check

	// Registry receives the HTTP metrics. Nil uses the Prometheus default
	// registry, which also holds the custom metrics.
	Registry *prometheus.Registry

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metrics.Namespace,
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler(d.AppName, d.AppVersion, d.ReadinessChecks)
	authHandler := handler.NewAuthHandler(d.Auth)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	analyticsHandler := handler.NewAnalyticsHandler(d.Analytics)
	requireAuth := middleware.Auth(d.Auth)

	// --- Operational routes (no auth required) ---
	e.GET("/", healthHandler.Root, middleware.OptionalAuth(d.Auth))
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	var limited []echo.MiddlewareFunc
	if d.RateLimitStore != nil {
		limited = append(limited, middleware.RateLimit(d.RateLimitStore, d.Logger))
	}
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, limited...)
	auth.POST("/login", authHandler.Login, limited...)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- Task routes ---
	tasks := e.Group("/tasks", requireAuth)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Analytics ---
	e.GET("/analytics/summary", analyticsHandler.Summary, requireAuth)

	return e
}
