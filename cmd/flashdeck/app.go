package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/llm"
	"github.com/phrazzld/flashdeck/internal/platform/gemini"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/platform/migrate"
	"github.com/phrazzld/flashdeck/internal/platform/openai"
	"github.com/phrazzld/flashdeck/internal/platform/postgres"
	"github.com/phrazzld/flashdeck/internal/platform/sqlite"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/store"
)

// appOptions select which parts of the application a command needs.
type appOptions struct {
	// generation wires an LLM provider. Without it provider credentials
	// are not required.
	generation bool

	// logTo receives log output. Defaults to stderr in text format.
	logTo io.Writer

	// jsonLogs keeps the configured log format instead of forcing text.
	jsonLogs bool
}

// application holds the dependencies shared by the commands.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	emitter  *events.InMemoryEventEmitter
	decks    store.DeckStore
	progress store.ProgressStore
	service  *service.DeckService
}

// newCompleter builds the configured provider client. Tests replace it.
var newCompleter = providerCompleter

func providerCompleter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		client, err := openai.NewClient(cfg.LLM, &http.Client{}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

// loadConfig reads configuration honoring the persistent flags.
func loadConfig(offline bool) (*config.Config, error) {
	cfg, err := config.Load(config.Options{ConfigFile: configFile, Offline: offline})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		if _, ok := logger.ParseLevel(logLevel); !ok {
			return nil, fmt.Errorf("invalid --log-level %q", logLevel)
		}
		cfg.Server.LogLevel = logLevel
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config, opts appOptions) (*slog.Logger, error) {
	out := opts.logTo
	if out == nil {
		out = os.Stderr
	}
	serverCfg := cfg.Server
	if !opts.jsonLogs {
		serverCfg.LogFormat = "text"
	}
	return logger.SetupWithWriter(serverCfg, out)
}

// openDatabase opens the configured store. Unless skipMigrations is set,
// pending migrations are applied first.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger, skipMigrations bool) (*sql.DB, error) {
	openCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	defer cancel()

	switch cfg.Storage.Driver {
	case "sqlite":
		if skipMigrations {
			return sqlite.Open(openCtx, cfg.Storage.Path)
		}
		return sqlite.OpenAndMigrate(openCtx, cfg.Storage.Path, log)
	case "postgres":
		if skipMigrations {
			return postgres.Open(openCtx, cfg.Storage.URL)
		}
		return postgres.OpenAndMigrate(openCtx, cfg.Storage.URL, log)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// migrationSource returns the goose migrations for the configured driver.
func migrationSource(cfg *config.Config) (migrate.Source, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.Migrations, nil
	case "postgres":
		return postgres.Migrations, nil
	default:
		return migrate.Source{}, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func newStores(cfg *config.Config, db *sql.DB, log *slog.Logger) (store.DeckStore, store.ProgressStore) {
	if cfg.Storage.Driver == "postgres" {
		return postgres.NewPostgresDeckStore(db, log), postgres.NewPostgresProgressStore(db, log)
	}
	return sqlite.NewDeckStore(db, log), sqlite.NewProgressStore(db, log)
}

// newApplication loads configuration and wires the store, the optional
// generator and the deck service.
func newApplication(ctx context.Context, opts appOptions) (*application, error) {
	cfg, err := loadConfig(!opts.generation)
	if err != nil {
		return nil, err
	}

	log, err := setupLogger(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Debug("configuration loaded",
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("llm_model", cfg.LLM.Model))

	db, err := openDatabase(ctx, cfg, log, false)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:  cfg,
		logger:  log,
		db:      db,
		emitter: events.NewInMemoryEventEmitter(log),
	}
	app.decks, app.progress = newStores(cfg, db, log)

	deps := service.Dependencies{
		Decks:    app.decks,
		Progress: app.progress,
		Emitter:  app.emitter,
	}
	if opts.generation {
		completer, err := newCompleter(ctx, cfg, log)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLM.Provider, err)
		}
		generator, err := generation.NewGenerator(completer, cfg.LLM, log)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to create card generator: %w", err)
		}
		deps.Generator = generator
	}

	app.service, err = service.NewDeckService(deps, service.OptionsFromConfig(cfg), log)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	return app, nil
}

func (app *application) close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		app.logger.Error("failed to close database", slog.Any("error", err))
	}
	app.db = nil
}
