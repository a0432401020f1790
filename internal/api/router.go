package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/ambulink/dispatch-core/internal/api/handler"
	"github.com/ambulink/dispatch-core/internal/api/middleware"
	"github.com/ambulink/dispatch-core/internal/core/ports"

	_ "github.com/ambulink/dispatch-core/docs"
)

// Dependencies are the services and probes the HTTP layer is built on.
type Dependencies struct {
	Dispatch ports.DispatchService
	Location ports.LocationService
	// Reporter is optional; without it sample ingest answers 503.
	Reporter  handler.SampleReporter
	Pingers   []handler.Pinger
	JWTSecret string
	Logger    zerolog.Logger
	// Registry defaults to the process-wide Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "dispatch_http",
		Registerer: registerer,
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	health := handler.NewHealthHandler(deps.Pingers...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	emergencies := handler.NewEmergencyHandler(deps.Dispatch)
	v1.POST("/emergencies", emergencies.Create)
	v1.GET("/emergencies", emergencies.List)
	v1.GET("/emergencies/:id", emergencies.Get)
	v1.GET("/emergencies/:id/proposal", emergencies.Propose)
	v1.POST("/emergencies/:id/assignment", emergencies.Assign)
	v1.POST("/emergencies/:id/status", emergencies.AdvanceStatus)
	v1.POST("/emergencies/:id/cancel", emergencies.Cancel)
	v1.PUT("/emergencies/:id/eta", emergencies.SetEta)

	units := handler.NewUnitHandler(deps.Dispatch)
	v1.POST("/units", units.Register)
	v1.GET("/units", units.List)
	v1.GET("/units/:id", units.Get)
	v1.PATCH("/units/:id/status", units.SetStatus)
	v1.PUT("/units/:id/fix", units.UpdateFix)

	fixes := handler.NewFixHandler(deps.Location, deps.Reporter)
	v1.POST("/fixes", fixes.Request)
	v1.POST("/locations/:source_id/samples", fixes.Report)

	return e
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
