package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dukerupert/pawlog/internal/config"
	"github.com/dukerupert/pawlog/internal/database"
	"github.com/dukerupert/pawlog/internal/logging"
	"github.com/dukerupert/pawlog/internal/remote"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/store"
)

var CLI struct {
	EnvFile  string `help:"Env file read before the environment." default:".env" type:"path"`
	DBPath   string `help:"SQLite database path. Overrides PAWLOG_DB_PATH." name:"db"`
	LogLevel string `help:"Log level. Overrides PAWLOG_LOG_LEVEL."`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Import a legacy browser storage export."`
	Export  ExportCmd  `cmd:"" help:"Write records to a file."`
	Import  ImportCmd  `cmd:"" help:"Replace every record with a JSON snapshot."`
	Dev     struct {
		ResetMigration ResetMigrationCmd `cmd:"" help:"Forget legacy migration progress."`
		Clear          ClearCmd          `cmd:"" help:"Delete every record."`
	} `cmd:"" hidden:"" help:"Development helpers."`
}

// app is shared by every command. Settings and backup history always live
// in the local database; records live wherever the backend points.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	svc      *service.Service
	settings *store.SettingsStore
	backups  *store.BackupStore
}

func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backend := service.LocalBackend(db)
	if cfg.Remote() {
		backend = remote.NewBackend(remote.NewClient(cfg.RemoteURL, cfg.RemoteKey))
		logger.Info("using remote backend", "url", cfg.RemoteURL)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		svc:      service.New(backend),
		settings: store.NewSettingsStore(db),
		backups:  store.NewBackupStore(db),
	}, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pawlog"),
		kong.Description("Puppy training tracker"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.DBPath != "" {
		cfg.DBPath = CLI.DBPath
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	logger, closeLog := logging.Setup(cfg.LogLevel, cfg.LogFile)

	a, err := openApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		closeLog()
		os.Exit(1)
	}

	err = ctx.Run(a)
	a.db.Close()
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
