package bootstrap

import (
	"log/slog"
	"net/http"

	"search-gateway/config"
	appmiddleware "search-gateway/middleware"
	"search-gateway/rest"
	appOtel "search-gateway/utils/otel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
)

// newHTTPServer creates the Echo server with the REST routes mounted.
// The returned limiter must be closed on shutdown.
func newHTTPServer(handler *rest.Handler, cfg *config.Config, otelCfg appOtel.Config, log *slog.Logger) (*echo.Echo, *appmiddleware.RateLimiter) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = config.ReadHeaderTimeout

	e.HTTPErrorHandler = appmiddleware.CustomHTTPErrorHandler(log)

	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(appmiddleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			log.InfoContext(ctx, "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
				"error", v.Error)
			return nil
		},
		LogRequestID: true,
	}))
	e.Use(middleware.Recover())

	limiter := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimit.EdgeRate), cfg.RateLimit.EdgeBurst, "/health")
	e.Use(limiter.Middleware())

	handler.Register(e)
	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	})

	return e, limiter
}
