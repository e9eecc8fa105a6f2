package shopping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/compras/internal/model"
)

// persisted is the on-disk snapshot layout. loading is always false on disk;
// it is kept so older readers of the snapshot find the key they expect.
type persisted struct {
	model.State
	Loading bool `json:"loading"`
}

// EncodeSnapshot serializes the full state. Timestamps are written as
// RFC 3339 strings.
func EncodeSnapshot(st model.State) ([]byte, error) {
	st = st.Clone()
	data, err := json.Marshal(persisted{State: st})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Wire types mirror the model with every timestamp kept as a string, so
// rehydration is a single explicit step.

type wireItem struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    model.Category `json:"category"`
	Quantity    *float64       `json:"quantity"`
	Unit        string         `json:"unit"`
	Completed   bool           `json:"completed"`
	CreatedAt   string         `json:"createdAt"`
	CompletedAt string         `json:"completedAt"`
}

type wireList struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Items       []wireItem `json:"items"`
	CreatedAt   string     `json:"createdAt"`
	CompletedAt string     `json:"completedAt"`
	IsActive    bool       `json:"isActive"`
}

type wireReport struct {
	ID             string            `json:"id"`
	ItemName       string            `json:"itemName"`
	Category       model.Category    `json:"category"`
	Reason         model.WasteReason `json:"reason"`
	Quantity       *float64          `json:"quantity"`
	EstimatedValue *float64          `json:"estimatedValue"`
	Date           string            `json:"date"`
}

type wireSnapshot struct {
	CurrentList     json.RawMessage `json:"currentList"`
	ShoppingHistory *[]wireList     `json:"shoppingHistory"`
	WasteReports    *[]wireReport   `json:"wasteReports"`
}

// DecodeSnapshot parses a persisted snapshot or an export document and
// rehydrates every timestamp. A field's Set flag reports whether its key was
// present; a null history or report sequence counts as absent.
func DecodeSnapshot(data []byte) (Partial, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Partial{}, fmt.Errorf("parse snapshot: %w", err)
	}

	var p Partial

	if w.CurrentList != nil {
		p.SetCurrentList = true
		if !bytes.Equal(bytes.TrimSpace(w.CurrentList), []byte("null")) {
			var wl wireList
			if err := json.Unmarshal(w.CurrentList, &wl); err != nil {
				return Partial{}, fmt.Errorf("parse current list: %w", err)
			}
			list, err := wl.rehydrate()
			if err != nil {
				return Partial{}, fmt.Errorf("current list: %w", err)
			}
			p.CurrentList = &list
		}
	}

	if w.ShoppingHistory != nil {
		p.SetHistory = true
		p.ShoppingHistory = make([]model.ShoppingList, 0, len(*w.ShoppingHistory))
		for i, wl := range *w.ShoppingHistory {
			list, err := wl.rehydrate()
			if err != nil {
				return Partial{}, fmt.Errorf("history[%d]: %w", i, err)
			}
			p.ShoppingHistory = append(p.ShoppingHistory, list)
		}
	}

	if w.WasteReports != nil {
		p.SetWasteReports = true
		p.WasteReports = make([]model.WasteReport, 0, len(*w.WasteReports))
		for i, wr := range *w.WasteReports {
			report, err := wr.rehydrate()
			if err != nil {
				return Partial{}, fmt.Errorf("wasteReports[%d]: %w", i, err)
			}
			p.WasteReports = append(p.WasteReports, report)
		}
	}

	return p, nil
}

func (wl wireList) rehydrate() (model.ShoppingList, error) {
	createdAt, err := parseTime(wl.CreatedAt)
	if err != nil {
		return model.ShoppingList{}, fmt.Errorf("list %s createdAt: %w", wl.ID, err)
	}
	completedAt, err := parseOptionalTime(wl.CompletedAt)
	if err != nil {
		return model.ShoppingList{}, fmt.Errorf("list %s completedAt: %w", wl.ID, err)
	}

	list := model.ShoppingList{
		ID:          wl.ID,
		Name:        wl.Name,
		Items:       make([]model.ShoppingItem, 0, len(wl.Items)),
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
		IsActive:    wl.IsActive,
	}
	for _, wi := range wl.Items {
		item, err := wi.rehydrate()
		if err != nil {
			return model.ShoppingList{}, err
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

func (wi wireItem) rehydrate() (model.ShoppingItem, error) {
	createdAt, err := parseTime(wi.CreatedAt)
	if err != nil {
		return model.ShoppingItem{}, fmt.Errorf("item %s createdAt: %w", wi.ID, err)
	}
	completedAt, err := parseOptionalTime(wi.CompletedAt)
	if err != nil {
		return model.ShoppingItem{}, fmt.Errorf("item %s completedAt: %w", wi.ID, err)
	}
	return model.ShoppingItem{
		ID:          wi.ID,
		Name:        wi.Name,
		Category:    wi.Category,
		Quantity:    wi.Quantity,
		Unit:        wi.Unit,
		Completed:   wi.Completed,
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
	}, nil
}

func (wr wireReport) rehydrate() (model.WasteReport, error) {
	date, err := parseTime(wr.Date)
	if err != nil {
		return model.WasteReport{}, fmt.Errorf("report %s date: %w", wr.ID, err)
	}
	return model.WasteReport{
		ID:             wr.ID,
		ItemName:       wr.ItemName,
		Category:       wr.Category,
		Reason:         wr.Reason,
		Quantity:       wr.Quantity,
		EstimatedValue: wr.EstimatedValue,
		Date:           date,
	}, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseTime accepts RFC 3339 (which covers JavaScript's toISOString output),
// a zone-less timestamp read as UTC, or a bare date. An empty string yields
// the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
