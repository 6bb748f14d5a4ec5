package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/plangate/internal/appstate"
	"github.com/alexanderramin/plangate/internal/cli"
	"github.com/alexanderramin/plangate/internal/config"
	"github.com/alexanderramin/plangate/internal/db"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/logger"
	"github.com/alexanderramin/plangate/internal/realtime"
	"github.com/alexanderramin/plangate/internal/repository"
	"github.com/alexanderramin/plangate/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	state, err := appstate.Open(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("opening ui state: %w", err)
	}

	hub := realtime.NewHub()
	defer hub.Shutdown()

	app := &cli.App{
		State:      state,
		Hub:        hub,
		Translator: locale.New(cfg.Locale),
		Actor:      service.Actor{UserID: cfg.User.ID, Admin: cfg.User.Admin},
		Debug:      cfg.Debug,
		PlanRoute:  cfg.Presenter.PlanRoute,
		SetDSN:     config.SetConnectionString,
		ClearDSN:   config.DeleteConnectionString,
	}

	var database *sql.DB
	defer func() {
		if database != nil {
			database.Close()
		}
		_ = logger.Close()
	}()

	// Services are wired after flag parsing so --locale and --debug apply.
	app.Setup = func(ctx context.Context, app *cli.App) error {
		if err := logger.Init(logger.Config{Debug: app.Debug, ConfigDir: cfg.Dir}); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		conn, dsn, dialect, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		database = conn
		if dialect == db.DialectSQLite {
			app.DBPath = cfg.Database.Path
		} else {
			app.ListenDSN = dsn
		}

		dbtx := db.Wrap(database, dialect)
		plans := repository.NewSQLPlanRepo(dbtx)
		items := repository.NewSQLPlanItemRepo(dbtx)
		entries := repository.NewSQLTimeEntryRepo(dbtx)
		uow := db.NewUnitOfWork(database, dialect)

		observer := service.NewSlogUseCaseObserver(logger.Slog())
		gate := service.NewGateService(plans, service.GateOptions{
			Translator:  app.Translator,
			Logger:      logger.Slog(),
			Parallelism: cfg.Gate.RangeParallelism,
		}, observer)

		app.Plans = service.NewPlanService(plans, items, uow, hub, observer)
		app.Gate = gate
		app.Entries = service.NewTimeEntryService(entries, gate, uow, cfg.Gate.ReverifyOnWrite, hub, observer)

		logger.Debug("services ready", "driver", cfg.Database.Driver, "user", app.Actor.UserID, "admin", app.Actor.Admin)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// openDatabase returns the connection, the Postgres DSN (empty for SQLite)
// and the dialect.
func openDatabase(cfg config.Config) (*sql.DB, string, db.Dialect, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		dsn, err := cfg.ResolveDSN()
		if err != nil {
			return nil, "", "", err
		}
		conn, err := db.OpenPostgres(dsn)
		if err != nil {
			return nil, "", "", fmt.Errorf("opening postgres: %w", err)
		}
		return conn, dsn, db.DialectPostgres, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, "", "", fmt.Errorf("creating %s: %w", cfg.Dir, err)
	}
	conn, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, "", "", fmt.Errorf("opening database: %w", err)
	}
	return conn, "", db.DialectSQLite, nil
}
