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

	"github.com/dukerupert/compras/internal/backup"
	"github.com/dukerupert/compras/internal/server"
	"github.com/dukerupert/compras/internal/store"
	ws "github.com/dukerupert/compras/internal/websocket"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live update feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if port != "" {
				a.cfg.Server.Port = port
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides config)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	logger := a.logger
	cfg := a.cfg

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Bucket:    cfg.Backup.Bucket,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		},
		ScheduleHour:  cfg.Backup.Hour,
		RetentionDays: cfg.Backup.RetentionDays,
	}, a.store, store.NewBackupStore(a.db), ws.BackupStatusCallback(hub), logger.With("component", "backup"))

	srv := server.New(a.store, a.db, hub, backupMgr, loc, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backupMgr.Start(ctx)
	defer backupMgr.Stop()
	go srv.RunMaintenance(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("compras listening",
			"addr", httpServer.Addr,
			"db", cfg.Server.DBPath,
			"backups", backupMgr.Enabled(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "clients", hub.ClientCount())
	hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
