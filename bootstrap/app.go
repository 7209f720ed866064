package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"search-gateway/config"
	"search-gateway/consumer"
	"search-gateway/driver"
	"search-gateway/gateway"
	"search-gateway/ingest"
	"search-gateway/logger"
	appmiddleware "search-gateway/middleware"
	"search-gateway/ratelimit"
	"search-gateway/rest"
	"search-gateway/tokenize"
	"search-gateway/usecase"
	appOtel "search-gateway/utils/otel"

	"github.com/labstack/echo/v4"
)

// App holds all components of the search gateway.
type App struct {
	httpServer    *echo.Echo
	edgeLimiter   *appmiddleware.RateLimiter
	engineClose   func()
	redisDriver   *driver.RedisDriver
	redisConsumer *consumer.Consumer
	loopDone      sync.WaitGroup
	otelShutdown  appOtel.ShutdownFunc
}

// Run initializes all components and starts the service.
// It blocks until ctx is cancelled, then performs graceful shutdown.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}
	if otelCfg.Enabled {
		if err := appOtel.InitMetrics(); err != nil {
			fmt.Printf("Failed to initialize metrics: %v\n", err)
		}
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting search-gateway",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Load config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		_ = otelShutdown(context.Background())
		return err
	}

	// ── Drivers and gateways ──
	searchEngine, engineClose, err := initSearchEngine(ctx, appCfg.Search)
	if err != nil {
		logger.Logger.Error("Failed to initialize search engine", "err", err)
		_ = otelShutdown(context.Background())
		return err
	}

	redisDriver, err := initRedis(ctx, appCfg.Redis)
	if err != nil {
		logger.Logger.Error("Failed to initialize Redis", "err", err)
		engineClose()
		_ = otelShutdown(context.Background())
		return err
	}
	store := gateway.NewStoreGateway(redisDriver)

	normalizer, err := tokenize.NewEnglishNormalizer()
	if err != nil {
		logger.Logger.Error("Failed to initialize text normalizer", "err", err)
		engineClose()
		_ = redisDriver.Close()
		_ = otelShutdown(context.Background())
		return err
	}

	fetcher := initArticleFetcher(appCfg.Feed)

	// ── Use cases ──
	searchUsecase := usecase.NewCachedSearchUsecase(store, searchEngine, appCfg.Cache.TTL, logger.Logger,
		usecase.WithCacheFailOpen(appCfg.Cache.FailOpen))
	keywordsUsecase := usecase.NewListKeywordsUsecase(searchEngine)
	healthUsecase := usecase.NewCheckHealthUsecase(searchEngine, store)
	indexUsecase := usecase.NewIndexArticlesUsecase(searchEngine, normalizer, appCfg.Feed.SourceName, appCfg.Ingest.IndexTimeout, logger.Logger)

	// ── Ingestion loop ──
	loop := ingest.NewLoop(fetcher, indexUsecase, ingest.Config{
		Interval: appCfg.Ingest.Interval,
		Policy: ingest.RetryPolicy{
			MaxAttempts: appCfg.Ingest.MaxAttempts,
			Delay:       appCfg.Ingest.RetryDelay,
		},
	}, logger.Logger)

	app := &App{
		engineClose:  engineClose,
		redisDriver:  redisDriver,
		otelShutdown: otelShutdown,
	}

	app.loopDone.Add(1)
	go func() {
		defer app.loopDone.Done()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Logger.Error("ingestion loop stopped", "err", err)
		}
	}()

	// ── Redis Streams Consumer ──
	consumerCfg := consumer.ConfigFromEnv()
	if consumerCfg.Enabled {
		eventHandler := consumer.NewIngestEventHandler(loop, logger.Logger)
		redisConsumer, err := consumer.NewConsumer(consumerCfg, eventHandler, logger.Logger)
		if err != nil {
			logger.Logger.Error("Failed to create Redis Streams consumer", "err", err)
		} else if err := redisConsumer.Start(ctx); err != nil {
			logger.Logger.Error("Failed to start Redis Streams consumer", "err", err)
		} else {
			app.redisConsumer = redisConsumer
			logger.Logger.Info("Redis Streams consumer started",
				"stream", consumerCfg.StreamKey,
				"group", consumerCfg.GroupName,
			)
		}
	} else {
		logger.Logger.Info("Redis Streams consumer disabled")
	}

	// ── HTTP server ──
	handler := rest.NewHandler(
		searchUsecase,
		keywordsUsecase,
		healthUsecase,
		ratelimit.NewGovernor(store),
		rest.RateLimitPolicy{
			Limit:    appCfg.RateLimit.Limit,
			Window:   appCfg.RateLimit.Window,
			FailOpen: appCfg.RateLimit.FailOpen,
		},
		logger.Logger,
	)
	app.httpServer, app.edgeLimiter = newHTTPServer(handler, appCfg, otelCfg, logger.Logger)

	go func() {
		logger.Logger.Info("http listen", "addr", appCfg.HTTP.Addr)
		if err := app.httpServer.Start(appCfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error("http", "err", err)
		}
	}()

	// ── Wait for shutdown signal ──
	<-ctx.Done()
	app.shutdown()
	return nil
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http shutdown error", "err", err)
	}
	a.edgeLimiter.Close()
	if a.redisConsumer != nil {
		a.redisConsumer.Stop()
	}

	// the loop finishes its current article before returning
	a.loopDone.Wait()

	a.engineClose()
	if err := a.redisDriver.Close(); err != nil {
		logger.Logger.Error("redis close error", "err", err)
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}
