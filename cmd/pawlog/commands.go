package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dukerupert/pawlog/internal/backup"
	"github.com/dukerupert/pawlog/internal/export"
	"github.com/dukerupert/pawlog/internal/migration"
	"github.com/dukerupert/pawlog/internal/server"
)

type ServeCmd struct {
	Port string `help:"Listen port. Overrides PAWLOG_PORT."`
}

func (c *ServeCmd) Run(a *app) error {
	port := a.cfg.Port
	if c.Port != "" {
		port = c.Port
	}

	var legacy migration.Source
	if a.cfg.LegacyPath != "" {
		src, err := migration.OpenFile(a.cfg.LegacyPath)
		if err != nil {
			return err
		}
		legacy = src
		res, err := migration.New(src, a.svc, a.settings, migration.Options{AllFamilies: a.cfg.Remote()}).Run(context.Background())
		if err != nil {
			// The app still serves; unflagged families retry on the next start.
			a.logger.Error("legacy migration failed", "error", err)
		} else if !res.AlreadyDone {
			a.logger.Info("legacy migration finished", "migrated", res.Migrated, "skipped", res.Skipped)
		}
	}

	srv := server.New(a.svc, a.settings, a.backups, server.Options{
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  a.cfg.S3Endpoint,
				Bucket:    a.cfg.S3Bucket,
				Region:    a.cfg.S3Region,
				AccessKey: a.cfg.S3AccessKey,
				SecretKey: a.cfg.S3SecretKey,
			},
			Cron: a.cfg.BackupCron,
		},
		Legacy:      legacy,
		AllFamilies: a.cfg.Remote(),
	}, a.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.BackupManager().Start(ctx); err != nil {
		a.logger.Error("backup scheduler not started", "error", err)
	}
	defer srv.BackupManager().Stop()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.WriteLimiter().Prune()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("pawlog running", "addr", "http://localhost:"+port, "backend", a.cfg.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type MigrateCmd struct {
	Legacy string `help:"Legacy export file. Defaults to PAWLOG_LEGACY_PATH." type:"existingfile"`
	All    bool   `help:"Migrate training, milestone and appointment data even on a local backend."`
}

func (c *MigrateCmd) Run(a *app) error {
	path := c.Legacy
	if path == "" {
		path = a.cfg.LegacyPath
	}
	if path == "" {
		return errors.New("no legacy export given (--legacy or PAWLOG_LEGACY_PATH)")
	}
	src, err := migration.OpenFile(path)
	if err != nil {
		return err
	}

	res, err := migration.New(src, a.svc, a.settings, migration.Options{AllFamilies: c.All || a.cfg.Remote()}).Run(context.Background())
	if err != nil {
		return err
	}
	if res.AlreadyDone {
		fmt.Println("Migration already completed.")
		return nil
	}
	families := make([]string, 0, len(res.Migrated))
	for f := range res.Migrated {
		families = append(families, f)
	}
	sort.Strings(families)
	for _, f := range families {
		fmt.Printf("%-14s %d\n", f, res.Migrated[f])
	}
	for _, f := range res.Skipped {
		fmt.Printf("%-14s skipped\n", f)
	}
	return nil
}

type ExportCmd struct {
	Format  string `help:"Output format." enum:"csv-potty,csv-practice,xlsx,json" default:"json"`
	Out     string `help:"Output file. Defaults to a dated name in the current directory." type:"path"`
	Command int64  `help:"Command id for csv-practice."`
}

func (c *ExportCmd) Run(a *app) error {
	ctx := context.Background()
	now := a.svc.Now()

	var (
		buf  bytes.Buffer
		name string
	)
	switch c.Format {
	case "csv-potty":
		logs, err := a.svc.PottyLogs.List(ctx)
		if err != nil {
			return err
		}
		if err := export.PottyCSV(&buf, logs); err != nil {
			return err
		}
		name = export.Filename("potty-logs", now, "csv")
	case "csv-practice":
		if c.Command == 0 {
			return errors.New("csv-practice needs --command")
		}
		if _, err := a.svc.GetCommand(ctx, c.Command); err != nil {
			return err
		}
		logs, err := a.svc.ListPracticeLogsByCommand(ctx, c.Command)
		if err != nil {
			return err
		}
		if err := export.PracticeCSV(&buf, logs); err != nil {
			return err
		}
		name = export.Filename(fmt.Sprintf("practice-%d", c.Command), now, "csv")
	case "xlsx", "json":
		snap, err := export.Collect(ctx, a.svc)
		if err != nil {
			return err
		}
		if c.Format == "xlsx" {
			err = export.Workbook(&buf, snap)
			name = export.Filename("pawlog", now, "xlsx")
		} else {
			err = export.WriteJSON(&buf, snap)
			name = export.Filename("pawlog-snapshot", now, "json")
		}
		if err != nil {
			return err
		}
	}

	if c.Out != "" {
		name = c.Out
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", name, buf.Len())
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"JSON snapshot to import." type:"existingfile"`
	Keep bool   `help:"Add to existing records instead of replacing them."`
}

func (c *ImportCmd) Run(a *app) error {
	ctx := context.Background()
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := export.ReadJSON(f)
	if err != nil {
		return err
	}
	restore := export.Replace
	if c.Keep {
		restore = export.Restore
	}
	written, err := restore(ctx, a.svc, snap)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range written {
		total += n
	}
	fmt.Printf("Imported %d records\n", total)
	return nil
}

type ResetMigrationCmd struct{}

func (c *ResetMigrationCmd) Run(a *app) error {
	if err := migration.New(nil, a.svc, a.settings, migration.Options{}).ResetFlags(context.Background()); err != nil {
		return err
	}
	fmt.Println("Migration flags cleared.")
	return nil
}

type ClearCmd struct {
	Yes bool `help:"Confirm deleting every record, setting and migration flag." short:"y"`
}

func (c *ClearCmd) Run(a *app) error {
	if !c.Yes {
		return errors.New("refusing to delete every record without --yes")
	}
	ctx := context.Background()
	if err := a.svc.ClearAll(ctx); err != nil {
		return err
	}
	if err := a.settings.DeleteAll(ctx); err != nil {
		return err
	}
	fmt.Println("All records and settings deleted.")
	return nil
}
