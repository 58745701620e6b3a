package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RateLimitRecorder counts requests turned away by the location ping limiter.
type RateLimitRecorder interface {
	RateLimitExceeded()
}

type Options struct {
	Logger *slog.Logger
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// PingsPerSecond caps location pings per caller; zero disables the limiter.
	PingsPerSecond float64
	RateLimited    RateLimitRecorder
}

// NewEcho builds the echo instance: validator, error handler, middleware and routes.
func NewEcho(s *Server, opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1", Identity())

	var pingLimit []echo.MiddlewareFunc
	if opts.PingsPerSecond > 0 {
		pingLimit = append(pingLimit, middleware.RateLimiterWithConfig(PingRateLimiterConfig(opts.PingsPerSecond, opts.RateLimited)))
	}

	// deliveries
	api.GET("/deliveries/active", s.GetActiveDeliveries)
	api.GET("/deliveries/:id/tracking", s.GetTracking)
	api.GET("/deliveries/:id/history", s.GetStatusHistory)
	api.GET("/deliveries/:id/positions", s.GetPositions)
	api.POST("/deliveries/:id/status", s.TransitionStatus)
	api.POST("/deliveries/:id/location", s.IngestLocation, pingLimit...)
	api.POST("/deliveries/:id/eta", s.RecalculateETA)
	api.POST("/deliveries/:id/checkpoints", s.CreateCheckpoint)
	api.POST("/deliveries/:id/confirmation-code", s.GenerateConfirmationCode)
	api.POST("/deliveries/:id/confirm", s.ConfirmDelivery)
	api.POST("/deliveries/:id/ratings", s.RateDelivery)

	// announcements and matching
	api.POST("/announcements", s.CreateAnnouncement)
	api.DELETE("/announcements/:id", s.CancelAnnouncement)
	api.POST("/announcements/:id/matches", s.FindMatches)
	api.GET("/announcements/:id/matches", s.GetMatchCandidates)
	api.PUT("/announcements/:id/matches/:delivererId", s.ScoreMatch)
	api.POST("/matches/:id/response", s.RespondToMatch)

	// deliverers
	api.POST("/deliverers", s.RegisterDeliverer)
	api.PUT("/deliverers/:id/location", s.UpdateDelivererLocation)
	api.POST("/deliverers/:id/availability", s.AddAvailability)
	api.POST("/deliverers/:id/route-zones", s.AddRouteZone)

	return e
}

// PingRateLimiterConfig limits location pings per caller, keyed by the resolved
// actor and falling back to the client IP.
func PingRateLimiterConfig(perSecond float64, recorder RateLimitRecorder) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(perSecond), ExpiresIn: time.Minute},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if actor := actorFrom(c); actor.Validate() == nil {
				return actor.ID().String(), nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, ErrorResponse{Code: "forbidden", Message: err.Error()})
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			if recorder != nil {
				recorder.RateLimitExceeded()
			}
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Code:      "rate_limited",
				Message:   "too many location updates",
				Retryable: true,
			})
		},
	}
}

// RequestLogger logs one line per request through slog.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
