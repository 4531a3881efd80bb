package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/healthtrack/healthtrack/docs"
	"github.com/healthtrack/healthtrack/internal/api/handler"
	"github.com/healthtrack/healthtrack/internal/api/middleware"
	"github.com/healthtrack/healthtrack/internal/core/ports"
	"github.com/healthtrack/healthtrack/internal/core/service"
	"github.com/healthtrack/healthtrack/internal/infrastructure/http/handlers"
	"github.com/healthtrack/healthtrack/internal/infrastructure/queue"
	"github.com/healthtrack/healthtrack/pkg/logger"
)

// Dependencies is everything the router needs from the composition root.
type Dependencies struct {
	Users        ports.UserRepository
	Medications  ports.MedicationRepository
	Metrics      ports.MetricRepository
	HistoryCache ports.HistoryCache // optional
	Checks       []handlers.Check

	// HistoryWarmWorkers > 0 rebuilds cached histories in the background
	// after each recorded metric. Ignored without a HistoryCache.
	HistoryWarmWorkers int

	JWTSecret     string
	TokenTTL      time.Duration
	AuthRateLimit float64

	Logger zerolog.Logger
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		// Domain counters always live in the default registry.
		registerer = deps.Registry
		gatherer = prometheus.Gatherers{deps.Registry, prometheus.DefaultGatherer}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "healthtrack",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authService := service.NewAuthService(deps.Users, deps.JWTSecret, deps.TokenTTL)
	medicationService := service.NewMedicationService(deps.Medications, logger.Component(deps.Logger, "medications"))
	metricService := service.NewMetricService(deps.Metrics, deps.HistoryCache, logger.Component(deps.Logger, "metrics"))

	if deps.HistoryCache != nil && deps.HistoryWarmWorkers > 0 {
		warmCtx, stopWarm := context.WithCancel(context.Background())
		dispatcher := queue.NewDispatcher(deps.HistoryWarmWorkers, metricService, logger.Component(deps.Logger, "history-warmer"))
		dispatcher.Start(warmCtx)
		metricService.SetWarmer(dispatcher)
		e.Server.RegisterOnShutdown(stopWarm)
	}

	authHandler := handler.NewAuthHandler(authService)
	medicationHandler := handler.NewMedicationHandler(medicationService)
	metricHandler := handler.NewMetricHandler(metricService)

	// --- Auth routes ---
	auth := e.Group("/auth", middleware.AuthRateLimit(deps.AuthRateLimit))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	protected := []echo.MiddlewareFunc{middleware.Auth(deps.JWTSecret), middleware.ActiveUser(deps.Users)}

	meds := e.Group("/medications", protected...)
	meds.GET("", medicationHandler.List)
	meds.POST("", medicationHandler.Create)
	meds.GET("/:id", medicationHandler.Get)
	meds.PUT("/:id", medicationHandler.Update)
	meds.DELETE("/:id", medicationHandler.Delete)

	mets := e.Group("/metrics", protected...)
	mets.GET("", metricHandler.List)
	mets.POST("", metricHandler.Create)
	mets.GET("/history", metricHandler.History)

	// --- Health probes and tooling (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Checks...).Readiness)
	e.GET("/prometheus", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
