package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"

	"github.com/ldi/dayplan/internal/db"
	appLog "github.com/ldi/dayplan/internal/log"
	"github.com/ldi/dayplan/internal/mcp"
	"github.com/ldi/dayplan/internal/server"
)

const (
	shutdownTimeout = 5 * time.Second
	snapshotTimeout = 30 * time.Second
)

func runWeb(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if path := e.cfg.SnapshotPath; path != "" {
		e.db.EnableAutoSnapshot(path)
		sched, err := startSnapshotCron(e.db, e.cfg.SnapshotCron, path)
		if err != nil {
			return err
		}
		defer sched.Stop()
	}

	listen := e.cfg.Listen
	if v := c.String("listen"); v != "" {
		listen = v
	}

	srv := server.NewServer(e.db, e.surface, e.loc)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(listen)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startSnapshotCron exports a snapshot on the given schedule in addition to
// the export after each write.
func startSnapshotCron(database *db.DB, spec, path string) (*cron.Cron, error) {
	sched := cron.New()
	_, err := sched.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := database.ExportSnapshot(ctx, path); err != nil {
			appLog.Error("scheduled snapshot failed", err, "path", path)
			return
		}
		appLog.Debug("scheduled snapshot written", "path", path)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot cron %q: %w", spec, err)
	}
	sched.Start()
	return sched, nil
}

func runMCP(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.SnapshotPath != "" {
		e.db.EnableAutoSnapshot(e.cfg.SnapshotPath)
	}

	return serveMCP(mcp.NewServer(&mcp.Tools{
		DB:       e.db,
		Surface:  e.surface,
		Location: e.loc,
	}))
}
