// Package main implements the compras CLI: the HTTP server plus offline
// export, import and statistics commands over the same database.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dukerupert/compras/internal/config"
	"github.com/dukerupert/compras/internal/database"
	"github.com/dukerupert/compras/internal/logging"
	"github.com/dukerupert/compras/internal/persist"
	"github.com/dukerupert/compras/internal/shopping"
	"github.com/dukerupert/compras/internal/store"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "compras",
		Short:        "Compras Organizadas - shopping lists and food waste tracking",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a TOML config file")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")

	root.AddCommand(
		newServeCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newStatsCmd(flags),
	)
	return root
}

// app is the state shared by every command: the restored store with its
// persistence writer attached.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	kv     *store.KVStore
	store  *shopping.Store
	writer *persist.Writer
}

func openApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.Server.DBPath = flags.dbPath
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Server.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	kv := store.NewKVStore(db)
	st := shopping.New()
	persistLogger := logger.With("component", "persist")
	persist.Restore(kv, st, persistLogger)

	w := persist.NewWriter(kv, persistLogger)
	w.Attach(st)

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		kv:     kv,
		store:  st,
		writer: w,
	}, nil
}

// Close drains pending snapshot writes before closing the database.
func (a *app) Close() {
	a.writer.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("close database", "error", err)
	}
}
