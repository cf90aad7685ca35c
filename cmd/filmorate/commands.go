package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/internal/application/command"
	"github.com/vl4ks/filmorate/internal/application/eventhandler"
	"github.com/vl4ks/filmorate/internal/application/query"
	"github.com/vl4ks/filmorate/internal/infrastructure/messaging"
	"github.com/vl4ks/filmorate/internal/infrastructure/metrics"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/postgres"
	httpserver "github.com/vl4ks/filmorate/internal/interface/http"
	"github.com/vl4ks/filmorate/internal/interface/http/handlers"
	"github.com/vl4ks/filmorate/pkg/logger"
	"github.com/vl4ks/filmorate/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVE
// ══════════════════════════════════════════════════════════════════════════════

// ServeCmd запускает REST API.
type ServeCmd struct {
	Port int `help:"Override http.port." default:"0"`
}

// Run реализует kong-команду.
func (c *ServeCmd) Run(g *Globals, parent context.Context) error {
	cfg, log, err := g.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer func() { _ = log.Sync() }()
	if c.Port > 0 {
		cfg.HTTP.Port = c.Port
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting filmorate",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Backend(cfg.Storage.Backend),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 1. ХРАНИЛИЩЕ
	// ─────────────────────────────────────────────────────────────────────────
	store, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing store...")
		if err := store.Close(); err != nil {
			log.Warn("store close failed", logger.Err(err))
		}
	}()

	if cfg.Seed.Enabled {
		if err := seedCatalog(ctx, cfg, store, log); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. СОБЫТИЯ И МЕТРИКИ
	// ─────────────────────────────────────────────────────────────────────────
	registry := metrics.NewRegistry()

	bus, err := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.Events.Async,
		WorkerPoolSize: cfg.Events.Workers,
		Logger:         log,
		Observer:       registry,
	})
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	if err := eventhandler.NewAuditHandler(log, registry).Register(bus); err != nil {
		return fmt.Errorf("register audit handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	clock, err := timeutil.NewSystemClock(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}

	commands := command.NewHandlers(command.Repositories{
		Films:   store.Films(),
		Genres:  store.Genres(),
		Ratings: store.Ratings(),
		Users:   store.Users(),
		Likes:   store.Likes(),
		Friends: store.Friends(),
	}, command.Deps{Clock: clock, Publisher: bus, Logger: log})

	queries := query.NewHandlers(query.Repositories{
		Films:   store.Films(),
		Genres:  store.Genres(),
		Ratings: store.Ratings(),
		Users:   store.Users(),
		Likes:   store.Likes(),
		Friends: store.Friends(),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck(store.Backend(), handlers.NewPingCheck(store))

	deps := httpserver.Dependencies{
		Commands: commands,
		Queries:  queries,
		Health:   health,
		Logger:   log,
		Version:  cfg.App.Version,
	}
	if cfg.HTTP.EnableMetrics {
		deps.Metrics = registry
	}
	server := httpserver.NewServer(cfg.HTTP, deps)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(server.Start)
	grp.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := grp.Wait(); err != nil {
		return err
	}
	log.Info("filmorate stopped")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SEED
// ══════════════════════════════════════════════════════════════════════════════

// SeedCmd загружает справочники в настроенное хранилище.
type SeedCmd struct {
	File string `help:"Catalog YAML file (overrides seed.file)." type:"existingfile"`
}

// Run реализует kong-команду.
func (c *SeedCmd) Run(g *Globals, ctx context.Context) error {
	cfg, log, err := g.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.File != "" {
		cfg.Seed.File = c.File
	}

	store, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return seedCatalog(ctx, cfg, store, log)
}

func seedCatalog(ctx context.Context, cfg *config.Config, store persistence.Store, log *logger.Logger) error {
	catalog, err := config.LoadCatalog(cfg.Seed.File)
	if err != nil {
		return fmt.Errorf("load seed catalog: %w", err)
	}
	if _, err := persistence.Seed(ctx, store, catalog, log); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATE
// ══════════════════════════════════════════════════════════════════════════════

// MigrateCmd управляет схемой PostgreSQL.
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Apply all pending migrations."`
	Down   MigrateDownCmd   `cmd:"" help:"Roll back the latest migration."`
	Status MigrateStatusCmd `cmd:"" help:"Show applied and pending migrations."`
}

// MigrateUpCmd применяет все новые миграции.
type MigrateUpCmd struct{}

// Run реализует kong-команду.
func (MigrateUpCmd) Run(g *Globals, ctx context.Context) error {
	return withMigrator(ctx, g, func(m *postgres.Migrator, log *logger.Logger) error {
		applied, err := m.Migrate(ctx)
		if err != nil {
			return err
		}
		log.Info("migrations applied", logger.Int("applied", applied))
		return nil
	})
}

// MigrateDownCmd откатывает последнюю миграцию.
type MigrateDownCmd struct{}

// Run реализует kong-команду.
func (MigrateDownCmd) Run(g *Globals, ctx context.Context) error {
	return withMigrator(ctx, g, func(m *postgres.Migrator, log *logger.Logger) error {
		rolledBack, err := m.Rollback(ctx)
		if err != nil {
			return err
		}
		if rolledBack == 0 {
			log.Info("nothing to roll back")
			return nil
		}
		log.Info("migration rolled back", logger.Int("version", rolledBack))
		return nil
	})
}

// MigrateStatusCmd печатает состояние миграций.
type MigrateStatusCmd struct{}

// Run реализует kong-команду.
func (MigrateStatusCmd) Run(g *Globals, ctx context.Context) error {
	return withMigrator(ctx, g, func(m *postgres.Migrator, _ *logger.Logger) error {
		status, err := m.Status(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
		for _, mig := range status {
			applied := "pending"
			if mig.IsApplied {
				applied = mig.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", mig.Version, mig.Name, applied)
		}
		return w.Flush()
	})
}

func withMigrator(ctx context.Context, g *Globals, fn func(*postgres.Migrator, *logger.Logger) error) error {
	cfg, log, err := g.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Storage.Backend != config.BackendPostgres {
		return errors.New("migrate requires storage.backend=postgres")
	}

	conn, err := postgres.NewConnectionFromConfig(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	return fn(postgres.NewMigrator(conn), log.With(logger.Component("migrate")))
}
