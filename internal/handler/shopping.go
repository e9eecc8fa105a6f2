package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/compras/internal/exchange"
	"github.com/dukerupert/compras/internal/grocery"
	"github.com/dukerupert/compras/internal/model"
	"github.com/dukerupert/compras/internal/shopping"
	"github.com/dukerupert/compras/internal/stats"
)

const maxImportBytes = 16 << 20

type ShoppingHandler struct {
	store  *shopping.Store
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewShoppingHandler serves the shopping API. loc is the zone statistics are
// grouped by month in.
func NewShoppingHandler(s *shopping.Store, loc *time.Location, logger *slog.Logger) *ShoppingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ShoppingHandler{store: s, loc: loc, now: time.Now, logger: logger}
}

func (h *ShoppingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.State())
}

func (h *ShoppingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Compute(h.store.State(), h.loc))
}

type itemRequest struct {
	Name     string         `json:"name"`
	Category model.Category `json:"category"`
	Quantity *float64       `json:"quantity"`
	Unit     string         `json:"unit"`
}

func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if req.Category == "" {
		cat, ok := grocery.Categorize(req.Name)
		if !ok {
			writeError(w, http.StatusBadRequest, "category is required")
			return
		}
		req.Category = cat
	}
	if !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category: %s", req.Category))
		return
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	h.store.AddItem(model.ItemDraft{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Unit:     strings.TrimSpace(req.Unit),
	})

	writeJSON(w, http.StatusCreated, h.store.CurrentList())
}

// ToggleItem and RemoveItem answer 200 even for unknown ids; the store treats
// them as no-ops.
func (h *ShoppingHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleItem(r.PathValue("id"))
	writeJSON(w, http.StatusOK, h.store.CurrentList())
}

func (h *ShoppingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveItem(r.PathValue("id"))
	writeJSON(w, http.StatusOK, h.store.CurrentList())
}

func (h *ShoppingHandler) StartNewList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	h.store.StartNewList(req.Name)
	writeJSON(w, http.StatusCreated, h.store.CurrentList())
}

func (h *ShoppingHandler) CompleteList(w http.ResponseWriter, r *http.Request) {
	if h.store.CurrentList() == nil {
		writeError(w, http.StatusConflict, "no current list")
		return
	}
	h.store.CompleteList()
	writeJSON(w, http.StatusOK, h.store.State())
}

func (h *ShoppingHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.store.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

type wasteRequest struct {
	ItemName       string            `json:"itemName"`
	Category       model.Category    `json:"category"`
	Reason         model.WasteReason `json:"reason"`
	Quantity       *float64          `json:"quantity"`
	EstimatedValue *float64          `json:"estimatedValue"`
}

func (h *ShoppingHandler) AddWasteReport(w http.ResponseWriter, r *http.Request) {
	var req wasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.ItemName = strings.TrimSpace(req.ItemName)
	switch {
	case req.ItemName == "":
		writeError(w, http.StatusBadRequest, "itemName is required")
		return
	case !req.Category.Valid():
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category: %s", req.Category))
		return
	case !req.Reason.Valid():
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown reason: %s", req.Reason))
		return
	case req.Quantity != nil && *req.Quantity < 0:
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	case req.EstimatedValue != nil && *req.EstimatedValue < 0:
		writeError(w, http.StatusBadRequest, "estimatedValue must not be negative")
		return
	}

	h.store.AddWasteReport(model.WasteDraft{
		ItemName:       req.ItemName,
		Category:       req.Category,
		Reason:         req.Reason,
		Quantity:       req.Quantity,
		EstimatedValue: req.EstimatedValue,
	})

	// Newest first
	var created *model.WasteReport
	if reports := h.store.WasteReports(); len(reports) > 0 {
		created = &reports[0]
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ShoppingHandler) ListWasteReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.WasteReports())
}

func (h *ShoppingHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.History())
}

func (h *ShoppingHandler) ClearWasteReports(w http.ResponseWriter, r *http.Request) {
	h.store.ClearWasteReports()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	cat, ok := grocery.Categorize(name)
	if !ok {
		writeError(w, http.StatusNotFound, "no category matches")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"category": string(cat),
		"label":    cat.Label(),
	})
}

func (h *ShoppingHandler) Export(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	data, err := exchange.Encode(exchange.Export(h.store.State(), now))
	if err != nil {
		h.logger.Error("export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exchange.Filename(now)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import replaces history and waste reports with the uploaded document. The
// body is either the raw JSON document or a multipart form with a "file"
// field.
func (h *ShoppingHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		body = file
	}

	p, err := exchange.Import(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, exchange.ErrInvalidFormat):
			writeError(w, http.StatusUnprocessableEntity, exchange.ErrInvalidFormat.Error())
		default:
			h.logger.Error("import", "error", err)
			writeError(w, http.StatusBadRequest, "failed to read file")
		}
		return
	}

	h.store.LoadData(p)
	h.logger.Info("data imported",
		"history", len(p.ShoppingHistory),
		"waste_reports", len(p.WasteReports),
	)
	writeJSON(w, http.StatusOK, h.store.State())
}
