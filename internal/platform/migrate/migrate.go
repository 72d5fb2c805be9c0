// Package migrate runs the embedded goose migrations of the SQL stores.
//
// goose keeps its dialect, base filesystem and logger in package globals, so
// every entry point here serialises on one mutex.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// TableName is the table goose uses to track applied migrations.
const TableName = "schema_migrations"

var mu sync.Mutex

// Source describes one store's migrations.
type Source struct {
	// Dialect is the goose dialect name, e.g. "sqlite3" or "postgres".
	Dialect string

	// FS holds the migration files under Dir.
	FS  fs.FS
	Dir string
}

// Command is a migration operation exposed by the CLI.
type Command string

const (
	CommandUp      Command = "up"
	CommandDown    Command = "down"
	CommandReset   Command = "reset"
	CommandStatus  Command = "status"
	CommandVersion Command = "version"
)

// ParseCommand validates a command name.
func ParseCommand(name string) (Command, error) {
	switch c := Command(name); c {
	case CommandUp, CommandDown, CommandReset, CommandStatus, CommandVersion:
		return c, nil
	default:
		return "", fmt.Errorf("unknown migration command %q (expected up, down, reset, status or version)", name)
	}
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, src Source, logger *slog.Logger) error {
	return Run(ctx, db, src, CommandUp, logger)
}

// Run executes cmd against db.
func Run(ctx context.Context, db *sql.DB, src Source, cmd Command, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "migrations"), slog.String("command", string(cmd)))

	mu.Lock()
	defer mu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(src.FS)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(TableName)
	if err := goose.SetDialect(src.Dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect %q: %w", src.Dialect, err)
	}

	var err error
	switch cmd {
	case CommandUp:
		err = goose.UpContext(ctx, db, src.Dir)
	case CommandDown:
		err = goose.DownContext(ctx, db, src.Dir)
	case CommandReset:
		err = goose.ResetContext(ctx, db, src.Dir)
	case CommandStatus:
		err = goose.StatusContext(ctx, db, src.Dir)
	case CommandVersion:
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			logger.InfoContext(ctx, "current schema version", slog.Int64("version", version))
		}
	default:
		err = fmt.Errorf("unknown migration command %q", cmd)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", cmd, err)
	}

	logger.DebugContext(ctx, "migration command finished")
	return nil
}

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does not exit; goose's return value
// carries the failure to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
