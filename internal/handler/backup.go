package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/compras/internal/backup"
	"github.com/dukerupert/compras/internal/exchange"
	"github.com/dukerupert/compras/internal/model"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

func decodePassphrase(r *http.Request) (string, error) {
	var req passphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("invalid JSON")
	}
	if strings.TrimSpace(req.Passphrase) == "" {
		return "", fmt.Errorf("passphrase is required")
	}
	return req.Passphrase, nil
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            h.manager.Status(),
		"scheduled_enabled": h.manager.HasCachedPassphrase(),
		"backups":           backups,
	})
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "backup storage not configured")
		return
	}

	passphrase, err := decodePassphrase(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.manager.RunNow(r.Context(), passphrase)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusBadGateway, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.manager.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "backup storage not configured")
		return
	}

	passphrase, err := decodePassphrase(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.manager.Restore(r.Context(), id, passphrase)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, "backup not found")
	case errors.Is(err, backup.ErrDecrypt):
		writeError(w, http.StatusUnprocessableEntity, backup.ErrDecrypt.Error())
	case errors.Is(err, exchange.ErrInvalidFormat):
		writeError(w, http.StatusUnprocessableEntity, exchange.ErrInvalidFormat.Error())
	default:
		h.logger.Error("restore backup", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "restore failed")
	}
}

func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.manager.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "backup storage not configured")
		return
	}

	data, err := h.manager.Download(r.Context(), id)
	if errors.Is(err, backup.ErrNotFound) {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}
	if err != nil {
		h.logger.Error("download backup", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "download failed")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"backup-%d.json.enc\"", id))
	w.Write(data)
}
