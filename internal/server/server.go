package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/compras/internal/backup"
	"github.com/dukerupert/compras/internal/database"
	"github.com/dukerupert/compras/internal/handler"
	"github.com/dukerupert/compras/internal/middleware"
	"github.com/dukerupert/compras/internal/shopping"
	ws "github.com/dukerupert/compras/internal/websocket"
)

const (
	importLimit  = 10
	backupLimit  = 5
	limitWindow  = time.Minute
	cleanupEvery = 5 * time.Minute
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	shoppingH     *handler.ShoppingHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

// New wires the HTTP layer. Store events reach websocket clients through hub.
func New(st *shopping.Store, db *sql.DB, hub *ws.Hub, backupMgr *backup.Manager, loc *time.Location, logger *slog.Logger) *Server {
	ws.Attach(hub, st)

	return &Server{
		db:            db,
		hub:           hub,
		shoppingH:     handler.NewShoppingHandler(st, loc, logger.With("component", "shopping")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RunMaintenance drops expired rate limit windows until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) {
	s.rateLimiter.RunCleanup(ctx, cleanupEvery)
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /api/state", s.shoppingH.GetState)
	mux.HandleFunc("GET /api/stats", s.shoppingH.GetStats)
	mux.HandleFunc("GET /api/categorize", s.shoppingH.Categorize)

	// Current list
	mux.HandleFunc("POST /api/items", s.shoppingH.AddItem)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.shoppingH.ToggleItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.shoppingH.RemoveItem)
	mux.HandleFunc("POST /api/lists", s.shoppingH.StartNewList)
	mux.HandleFunc("POST /api/lists/complete", s.shoppingH.CompleteList)

	// History and waste
	mux.HandleFunc("GET /api/history", s.shoppingH.ListHistory)
	mux.HandleFunc("DELETE /api/history", s.shoppingH.ClearHistory)
	mux.HandleFunc("GET /api/waste-reports", s.shoppingH.ListWasteReports)
	mux.HandleFunc("POST /api/waste-reports", s.shoppingH.AddWasteReport)
	mux.HandleFunc("DELETE /api/waste-reports", s.shoppingH.ClearWasteReports)

	// Export / import
	mux.HandleFunc("GET /api/export", s.shoppingH.Export)
	mux.Handle("POST /api/import", s.limited(importLimit, s.shoppingH.Import))

	// Remote backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.Handle("POST /api/backups", s.limited(backupLimit, s.backupH.Create))
	mux.Handle("POST /api/backups/{id}/restore", s.limited(backupLimit, s.backupH.Restore))
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	httpLogger := s.logger.With("component", "http")
	return middleware.RequestLogger(httpLogger)(middleware.Recover(httpLogger)(mux))
}

func (s *Server) limited(limit int, h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, limit, limitWindow)(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	version, err := database.SchemaVersion(r.Context(), s.db)
	if err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"schema_version": version,
		"clients":        s.hub.ClientCount(),
	})
}
