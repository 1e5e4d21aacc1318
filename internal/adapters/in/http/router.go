package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	// RateLimit is the sustained number of requests per second allowed per client address.
	RateLimit float64
	Burst     int
}

// NewRouter mounts the server on a fresh echo instance.
func NewRouter(server *Server, cfg RouterConfig, doc *openapi3.T, logger *slog.Logger) (*echo.Echo, error) {
	validator, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = slogHTTPErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(logger)))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(cfg)))
	}

	e.GET("/health", server.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", validator)
	api.POST("/orders", server.CreateOrder)
	api.GET("/orders/active", server.ListUncompletedOrders)
	api.POST("/orders/batch/:transition", server.BatchTransition)
	api.GET("/orders/:id", server.GetOrder)
	api.POST("/orders/:id/:transition", server.TransitionOrder)

	return e, nil
}

func requestLoggerConfig(logger *slog.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(context.Background(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}

func rateLimiterConfig(cfg RouterConfig) middleware.RateLimiterConfig {
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.RateLimit) * 2
	}

	tooMany := func(c echo.Context) error {
		return writeError(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "Rate limit exceeded")
	}

	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return tooMany(c)
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return tooMany(c)
		},
	}
}
