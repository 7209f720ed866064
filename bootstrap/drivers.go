package bootstrap

import (
	"context"
	"fmt"
	"time"

	"search-gateway/config"
	"search-gateway/driver"
	"search-gateway/driver/nyt_api"
	"search-gateway/gateway"
	"search-gateway/logger"
	"search-gateway/port"

	"github.com/cenkalti/backoff/v5"
	"github.com/meilisearch/meilisearch-go"
)

// initSearchEngine builds the configured engine behind its gateway and
// ensures the index exists. The returned func releases the engine.
func initSearchEngine(ctx context.Context, cfg config.SearchConfig) (*gateway.SearchEngineGateway, func(), error) {
	switch cfg.Engine {
	case config.EngineBleve:
		bleveDriver, err := driver.NewBleveDriver(cfg.BleveIndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("bleve init: %w", err)
		}
		logger.Logger.Info("Using embedded bleve index", "path", cfg.BleveIndexPath)
		closeFn := func() {
			if err := bleveDriver.Close(); err != nil {
				logger.Logger.Error("bleve close error", "err", err)
			}
		}
		return gateway.NewSearchEngineGateway(bleveDriver), closeFn, nil

	default:
		msClient, err := initMeilisearchClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		engine := gateway.NewSearchEngineGateway(driver.NewMeilisearchDriver(msClient, cfg.MeilisearchIndex))
		if err := engine.EnsureIndex(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure search index: %w", err)
		}
		return engine, func() {}, nil
	}
}

// initMeilisearchClient initializes the Meilisearch client with retry logic.
func initMeilisearchClient(ctx context.Context, cfg config.SearchConfig) (meilisearch.ServiceManager, error) {
	logger.Logger.Info("Connecting to Meilisearch", "host", cfg.MeilisearchHost)

	msClient := meilisearch.New(cfg.MeilisearchHost, meilisearch.WithAPIKey(cfg.MeilisearchAPIKey))

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if _, err := msClient.HealthWithContext(ctx); err != nil {
			logger.Logger.Warn("Meilisearch not ready, retrying", "attempt", attempt, "max", config.MeiliConnectTries, "err", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(config.MeiliConnectDelay)),
		backoff.WithMaxTries(uint(max(config.MeiliConnectTries, 1))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Meilisearch after %d attempts: %w", attempt, err)
	}

	logger.Logger.Info("Connected to Meilisearch successfully")
	return msClient, nil
}

// initRedis connects to Redis. An unreachable Redis at startup is logged,
// not fatal; requests report it through the health check.
func initRedis(ctx context.Context, cfg config.RedisConfig) (*driver.RedisDriver, error) {
	redisDriver, err := driver.NewRedisDriverWithURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis init: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisDriver.Ping(pingCtx); err != nil {
		logger.Logger.Warn("Redis not reachable at startup", "err", err)
	}
	return redisDriver, nil
}

// initArticleFetcher selects the upstream news feed.
func initArticleFetcher(cfg config.FeedConfig) port.ArticleFetcher {
	switch cfg.Source {
	case config.FeedRSS:
		logger.Logger.Info("Fetching articles from RSS", "url", cfg.RSSFeedURL)
		return gateway.NewArticleFetcherGateway(driver.NewRSSClient(cfg.RSSFeedURL, cfg.Timeout).FetchFeed)
	default:
		endpoint := cfg.NYTEndpoint
		if endpoint == "" {
			endpoint = nyt_api.DefaultEndpoint
		}
		logger.Logger.Info("Fetching articles from NYT Top Stories", "endpoint", endpoint)
		return gateway.NewArticleFetcherGateway(nyt_api.NewClient(endpoint, cfg.NYTAPIKey, cfg.Timeout).FetchTopStories)
	}
}
