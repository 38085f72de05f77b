package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/detection"
	"github.com/handspeak/handspeak-api/internal/enrollment"
	"github.com/handspeak/handspeak-api/internal/identity"
	"github.com/handspeak/handspeak-api/internal/inference"
	"github.com/handspeak/handspeak-api/internal/platform/cache"
	"github.com/handspeak/handspeak-api/internal/platform/config"
	"github.com/handspeak/handspeak-api/internal/platform/database"
	"github.com/handspeak/handspeak-api/internal/practice"
	"github.com/handspeak/handspeak-api/internal/progress"
	"github.com/handspeak/handspeak-api/internal/realtime"
	"github.com/handspeak/handspeak-api/internal/reference"
	"github.com/handspeak/handspeak-api/internal/seed"
	"github.com/handspeak/handspeak-api/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.NewMux(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildDeps wires every store and service. Postgres and Redis are optional:
// without them the server runs on in-memory stores, which is fine for local
// development but loses everything on restart.
func buildDeps(ctx context.Context, cfg *config.Config) (server.Deps, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		catalogStore   catalog.Store
		progressStore  progress.Store
		userStore      identity.Store
		enrollStore    enrollment.Store
		practiceStore  practice.Store
		detectionStore detection.Store
		ready          []func(context.Context) error
	)

	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			cleanup()
			return server.Deps{}, nil, fmt.Errorf("connect database: %w", err)
		}
		cleanups = append(cleanups, db.Close)
		ready = append(ready, db.HealthCheck)

		if err := db.Migrate(ctx, "./migrations"); err != nil {
			cleanup()
			return server.Deps{}, nil, fmt.Errorf("migrate database: %w", err)
		}

		if catalogStore, err = catalog.NewPostgresStore(db.Pool); err != nil {
			cleanup()
			return server.Deps{}, nil, err
		}
		if progressStore, err = progress.NewPostgresStore(db.Pool); err != nil {
			cleanup()
			return server.Deps{}, nil, err
		}
		if userStore, err = identity.NewPostgresStore(db.Pool); err != nil {
			cleanup()
			return server.Deps{}, nil, err
		}
		if enrollStore, err = enrollment.NewPostgresStore(db.Pool); err != nil {
			cleanup()
			return server.Deps{}, nil, err
		}
		if practiceStore, err = practice.NewPostgresStore(db.Pool); err != nil {
			cleanup()
			return server.Deps{}, nil, err
		}
		if detectionStore, err = detection.NewPostgresStore(db.Pool); err != nil {
			cleanup()
			return server.Deps{}, nil, err
		}
	} else {
		slog.Warn("no database configured, using in-memory stores")
		catalogStore = catalog.NewMemoryStore()
		progressStore = progress.NewMemoryStore()
		userStore = identity.NewMemoryStore()
		enrollStore = enrollment.NewMemoryStore()
		practiceStore = practice.NewMemoryStore()
		detectionStore = detection.NewMemoryStore()
	}

	var (
		feed  *detection.RecentFeed
		quota inference.Quota = inference.NewInMemoryQuota()
	)
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			cleanup()
			return server.Deps{}, nil, fmt.Errorf("connect cache: %w", err)
		}
		cleanups = append(cleanups, func() { _ = c.Close() })
		ready = append(ready, c.HealthCheck)
		feed = detection.NewRecentFeed(c.Client, 20)
		if cfg.Quota.DailyLimit > 0 {
			quota = inference.NewRedisQuota(c.Client, int64(cfg.Quota.DailyLimit), 24*time.Hour)
		}
	} else {
		slog.Warn("no cache configured, detection feed disabled")
	}

	router := inference.NewRouter()
	if cfg.ModelServer.Enabled {
		provider := inference.NewHTTPProvider(cfg.ModelServer.URL)
		router.Register("model-server", provider, provider)
	} else {
		slog.Warn("model server disabled, realtime recognition unavailable")
	}

	var realtimeHandler http.Handler
	if router.HasProvider() {
		handler := realtime.NewHandler(realtime.NewHub(), router, router, slog.Default()).
			WithQuota(quota)
		if cfg.Cache.URL != "" {
			handler.WithDetections(detectionStore, feed)
		} else {
			handler.WithDetections(detectionStore, nil)
		}
		realtimeHandler = handler
	}

	var ref *reference.Loader
	if cfg.Content.ReferenceDir != "" {
		loader, err := reference.NewLoader(cfg.Content.ReferenceDir)
		if err != nil {
			slog.Warn("reference content unavailable", "dir", cfg.Content.ReferenceDir, "error", err)
		} else {
			ref = loader
		}
	}

	if err := runSeeds(ctx, cfg.Seed, catalogStore); err != nil {
		cleanup()
		return server.Deps{}, nil, err
	}

	deps := server.Deps{
		Catalog:     catalogStore,
		Ledger:      progress.NewLedger(progressStore, catalogStore, userStore),
		Users:       userStore,
		Enrollments: enrollment.NewService(enrollStore, catalogStore, userStore, slog.Default()),
		Practice:    practice.NewService(practiceStore, catalogStore, userStore, slog.Default()),
		Detections:  detectionStore,
		Reference:   ref,
		Realtime:    realtimeHandler,
		Ready: func(ctx context.Context) error {
			for _, check := range ready {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}
	if feed != nil {
		deps.Feed = feed
	}
	return deps, cleanup, nil
}

func runSeeds(ctx context.Context, cfg config.SeedConfig, store catalog.Store) error {
	if cfg.FilePath != "" {
		doc, err := seed.LoadFile(cfg.FilePath)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		if _, err := seed.Import(ctx, store, doc); err != nil {
			return fmt.Errorf("import seed file: %w", err)
		}
	}
	if cfg.WorkbookPath != "" {
		if _, err := seed.ImportWorkbook(ctx, store, cfg.WorkbookPath); err != nil {
			return fmt.Errorf("import workbook: %w", err)
		}
	}
	return nil
}
