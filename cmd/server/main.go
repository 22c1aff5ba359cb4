package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/nkozlov/planmate/internal/api"
	appcache "github.com/nkozlov/planmate/internal/cache"
	"github.com/nkozlov/planmate/internal/catalog"
	"github.com/nkozlov/planmate/internal/config"
	"github.com/nkozlov/planmate/internal/enrich"
	"github.com/nkozlov/planmate/internal/planner"
	"github.com/nkozlov/planmate/internal/scoring"
	"github.com/nkozlov/planmate/internal/search"
	"github.com/nkozlov/planmate/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	// Run migrations.
	if err := storage.RunMigrations(ctx, pool, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied")

	// Connect to Redis.
	redisClient, err := appcache.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire the resolution and scoring pipeline.
	index := catalog.NewIndex(
		catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey),
		cfg.Catalog.TTL,
		cfg.Catalog.FuzzyThreshold,
		log,
	)
	executor := search.NewExecutor(search.NewClient(cfg.Search.BaseURL, cfg.Search.APIKey), index, log)
	enricher := enrich.NewEnricher(enrich.NewOpenAIWriter(cfg.OpenAI.APIKey, cfg.OpenAI.Model), log)
	resultCache := appcache.NewCache(redisClient, cfg.Redis.ResultTTL)

	service := planner.NewService(index, executor, enricher, weightsFromConfig(cfg.Scoring), resultCache, log)

	repo := storage.NewRepository(pool)
	handlers := api.NewHandlers(service, repo, log)

	dbPinger := &pgxPoolPinger{pool: pool}
	redisPinger := &redisPingerAdapter{client: redisClient}

	router := api.NewRouter(handlers, cfg.Auth.BearerToken, dbPinger, redisPinger, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// weightsFromConfig applies the configured point budgets and band tables
// onto the defaults. An empty configured table keeps the default bands.
func weightsFromConfig(sc config.ScoringConfig) scoring.Weights {
	w := scoring.DefaultWeights()
	w.BudgetMax = sc.BudgetMax
	w.TagMax = sc.TagMax
	w.VibeMax = sc.VibeMax
	w.PreferencesMax = sc.PreferencesMax
	w.QualityMax = sc.QualityMax

	if bands := toBands(sc.BudgetBands); len(bands) > 0 {
		w.BudgetBands = bands
	}
	if bands := toBands(sc.TagBands); len(bands) > 0 {
		w.TagBands = bands
	}
	if bands := toBands(sc.VibeBands); len(bands) > 0 {
		w.VibeBands = bands
	}
	if bands := toBands(sc.RatingBands); len(bands) > 0 {
		w.RatingBands = bands
	}
	if bands := toBands(sc.ReviewBands); len(bands) > 0 {
		w.ReviewBands = bands
	}

	return w
}

func toBands(rows []config.ScoreBand) []scoring.Band {
	bands := make([]scoring.Band, len(rows))
	for i, r := range rows {
		bands[i] = scoring.Band{Limit: r.Limit, Points: r.Points}
	}
	return bands
}

// pgxPoolPinger adapts pgxpool.Pool to the api.dbPinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api.redisPinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
