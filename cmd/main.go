// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/culinary-events/internal/booking"
	"github.com/Shivanand-hulikatti/culinary-events/internal/cache"
	"github.com/Shivanand-hulikatti/culinary-events/internal/catalog"
	"github.com/Shivanand-hulikatti/culinary-events/internal/config"
	"github.com/Shivanand-hulikatti/culinary-events/internal/database"
	"github.com/Shivanand-hulikatti/culinary-events/internal/handler"
	"github.com/Shivanand-hulikatti/culinary-events/internal/log"
	"github.com/Shivanand-hulikatti/culinary-events/internal/notify"
	"github.com/Shivanand-hulikatti/culinary-events/internal/repository"
	"github.com/Shivanand-hulikatti/culinary-events/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	cacheMaxEntries = 1024
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("culinary-events exited")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Configure(log.Config{Level: cfg.Log.Level, Service: cfg.Log.Service})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Load the catalog ──────────────────────────────────────────────
	repo, err := loadRepository(ctx, cfg)
	if err != nil {
		return err
	}

	resultCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	engine, err := catalog.NewEngine(ctx, repo, resultCache)
	if err != nil {
		return err
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	notifiers := notify.Multi{notify.NewLogNotifier()}
	if cfg.Notify.AMQPURL != "" {
		notifiers = append(notifiers, notify.NewAMQPNotifier(cfg.Notify.AMQPURL, cfg.Notify.Queue))
	}
	manager := booking.NewManager(booking.ManagerOptions{
		Confirmer:   booking.NewSimulatedConfirmer(cfg.Booking.ConfirmDelay, cfg.Booking.FailureRate),
		OnConfirmed: service.ConfirmationHook(notifiers),
	})
	eventSvc := service.NewEventService(engine, manager.Ledger())
	bookingSvc := service.NewBookingService(engine, manager)

	router := handler.NewRouter(eventSvc, bookingSvc, handler.RouterConfig{
		SubmitLimit:  cfg.Booking.SubmitLimit,
		SubmitWindow: cfg.Booking.SubmitWindow,
	})

	// ── 3. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Int("events", engine.Len()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if merr := manager.Shutdown(shutdownCtx); merr != nil {
			logger.Warn().Err(merr).Msg("pending confirmations did not finish")
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func loadRepository(ctx context.Context, cfg config.Config) (*repository.StaticRepository, error) {
	logger := log.WithComponent("catalog")

	var (
		repo *repository.StaticRepository
		err  error
	)
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		pool, perr := database.NewPool(ctx, cfg.Database, logger)
		if perr != nil {
			return nil, fmt.Errorf("database: %w", perr)
		}
		// The catalog is a snapshot; the pool is closed once it is read.
		defer pool.Close()
		logger.Info().Str("host", cfg.Database.Host).Msg("connected to PostgreSQL")
		repo, err = repository.LoadPostgres(ctx, pool)
	default:
		repo, err = repository.LoadSeedFile(cfg.Catalog.SeedFile)
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("source", cfg.Catalog.Source).Int(log.FieldCount, repo.Len()).Msg("catalog source read")
	return repo, nil
}

func newCache(ctx context.Context, cfg config.Config) (cache.Cache, func(), error) {
	switch cfg.Catalog.Cache {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Catalog.CacheTTL,
		}, log.WithComponent("cache"))
		if err != nil {
			return nil, nil, fmt.Errorf("cache: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Catalog.CacheTTL, cacheMaxEntries), func() {}, nil
	default:
		return cache.Nop{}, func() {}, nil
	}
}
