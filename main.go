package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogworker/config"
	"catalogworker/internal/browser"
	"catalogworker/internal/crawler"
	"catalogworker/internal/skipset"
	"catalogworker/internal/store"
	"catalogworker/logger"
	"catalogworker/services/cache"
	"catalogworker/services/publisher"
	"catalogworker/services/session"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Int("max_attempts", cfg.RetryMaxAttempts).
		Msg("Starting catalog worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup(ctx)

	metrics := crawler.NewMetrics()
	serveMetrics(&cfg, metrics)

	runner := session.NewRunner(
		&cfg,
		func() (browser.Driver, error) {
			return browser.NewChromeDriver(&cfg)
		},
		func(d browser.Driver) session.Crawler {
			return crawler.NewController(
				d,
				services.Store,
				services.SeenLinks,
				services.Publisher,
				services.SkipSet,
				metrics,
				&cfg,
			)
		},
	)

	// Run the session loop in a goroutine
	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- runner.Run(ctx)
	}()

	// Wait for shutdown signal or crawl completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-runnerDone
	case err := <-runnerDone:
		if err != nil {
			log.Error().Err(err).Msg("Crawl exited with error")
		} else {
			log.Info().Msg("Crawl completed")
		}
	}

	log.Info().
		Int("skip_keys", services.SkipSet.Len()).
		Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Store     store.DocumentStore
	SkipSet   *skipset.SkipSet
	SeenLinks *cache.SeenLinks
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup(ctx context.Context) {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close(ctx)
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	documentStore, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:        cfg.MongoURI,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoCollection,
		Timeout:    cfg.MongoTimeout,
	})
	if err != nil {
		return nil, err
	}
	services.Store = documentStore

	skips, err := skipset.Load(cfg.SkipFile)
	if err != nil {
		return nil, err
	}
	services.SkipSet = skips

	// Seen-link cache is optional; without memcache it falls through to
	// the document store directly.
	var cacheService cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheService = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}
	services.SeenLinks = cache.NewSeenLinks(cacheService, documentStore, cfg.SeenLinkTTL)

	// Publisher is optional
	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLen,
		)
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}

// serveMetrics exposes the crawl metrics registry when configured
func serveMetrics(cfg *config.Config, metrics *crawler.Metrics) {
	if cfg.MetricsAddr == "" {
		return
	}
	server := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed: %v", err)
		}
	}()
	logger.Info("Serving metrics on %s", cfg.MetricsAddr)
}
