package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/pskiad17/FinancialOrganizer/docs"
	"github.com/pskiad17/FinancialOrganizer/internal/api/handler"
	"github.com/pskiad17/FinancialOrganizer/internal/api/middleware"
	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
	"github.com/pskiad17/FinancialOrganizer/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	AuthService  ports.AuthService
	Verifier     ports.TokenVerifier
	HealthChecks map[string]handler.HealthCheck
	// Registry receives the HTTP request metrics. A private registry is
	// created when nil.
	Registry *prometheus.Registry
	// RateLimit and RateBurst throttle login and register per client IP.
	// A zero RateLimit disables throttling.
	RateLimit rate.Limit
	RateBurst int
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
	}))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	authMiddleware := middleware.Auth(deps.Verifier)

	limiter := middleware.RateLimit(deps.RateLimit, deps.RateBurst, deps.Log)

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, limiter)
	auth.POST("/login", authHandler.Login, limiter)
	auth.POST("/refresh", authHandler.Refresh, authMiddleware)
	auth.GET("/me", authHandler.Me, authMiddleware, middleware.RBAC(domain.RoleUser, domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured line per request. Bodies are never
// logged; they carry passwords and tokens.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Str("error_kind", domain.ErrorKind(v.Error))
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
