package shopping

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/compras/internal/model"
)

func TestEncodeSnapshotLayout(t *testing.T) {
	data, err := EncodeSnapshot(model.State{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"currentList", "shoppingHistory", "wasteReports", "loading"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if string(raw["shoppingHistory"]) != "[]" {
		t.Errorf("shoppingHistory = %s, want []", raw["shoppingHistory"])
	}
	if string(raw["currentList"]) != "null" {
		t.Errorf("currentList = %s, want null", raw["currentList"])
	}
	if string(raw["loading"]) != "false" {
		t.Errorf("loading = %s, want false", raw["loading"])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(model.ItemDraft{Name: "Leite", Category: model.CategoryDairy, Quantity: floatPtr(2), Unit: "L"})
	s.ToggleItem(s.CurrentList().Items[0].ID)
	s.CompleteList()
	s.AddItem(model.ItemDraft{Name: "Banana", Category: model.CategoryFruits})
	s.AddWasteReport(model.WasteDraft{ItemName: "Tomate", Category: model.CategoryVegetables, Reason: model.ReasonSpoiled, EstimatedValue: floatPtr(5.5)})
	before := s.State()

	data, err := EncodeSnapshot(before)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.SetCurrentList || !p.SetHistory || !p.SetWasteReports {
		t.Fatalf("expected all fields present: %+v", p)
	}

	restored := New()
	restored.LoadData(p)
	assertStatesEqual(t, before, restored.State())
}

func TestDecodeSnapshotJavaScriptDates(t *testing.T) {
	doc := `{
		"currentList": {
			"id": "1700000000000",
			"name": "Lista de Compras",
			"items": [
				{"id": "1700000000001", "name": "Leite", "category": "dairy", "completed": true,
				 "createdAt": "2024-03-01T10:00:00.000Z", "completedAt": "2024-03-01T11:30:15.250Z"}
			],
			"createdAt": "2024-03-01T10:00:00.000Z",
			"isActive": true
		},
		"shoppingHistory": [],
		"wasteReports": [
			{"id": "w1", "itemName": "Tomate", "category": "vegetables", "reason": "spoiled",
			 "estimatedValue": 5.5, "date": "2024-02-29T23:59:59.999Z"}
		],
		"loading": false
	}`

	p, err := DecodeSnapshot([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	item := p.CurrentList.Items[0]
	wantCompleted := time.Date(2024, 3, 1, 11, 30, 15, 250_000_000, time.UTC)
	if item.CompletedAt == nil || !item.CompletedAt.Equal(wantCompleted) {
		t.Errorf("completedAt = %v, want %v", item.CompletedAt, wantCompleted)
	}
	if p.CurrentList.CompletedAt != nil {
		t.Error("current list completedAt should be absent")
	}
	wantDate := time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, time.UTC)
	if !p.WasteReports[0].Date.Equal(wantDate) {
		t.Errorf("report date = %v, want %v", p.WasteReports[0].Date, wantDate)
	}
	if p.WasteReports[0].Value() != 5.5 {
		t.Errorf("value = %v, want 5.5", p.WasteReports[0].Value())
	}
}

func TestDecodeSnapshotPresence(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantCurrent bool
		wantHistory bool
		wantWaste   bool
	}{
		{"empty object", `{}`, false, false, false},
		{"null current list", `{"currentList": null}`, true, false, false},
		{"null history", `{"shoppingHistory": null}`, false, false, false},
		{"empty history", `{"shoppingHistory": []}`, false, true, false},
		{"waste only", `{"wasteReports": []}`, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeSnapshot([]byte(tt.doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.SetCurrentList != tt.wantCurrent {
				t.Errorf("SetCurrentList = %v, want %v", p.SetCurrentList, tt.wantCurrent)
			}
			if p.SetHistory != tt.wantHistory {
				t.Errorf("SetHistory = %v, want %v", p.SetHistory, tt.wantHistory)
			}
			if p.SetWasteReports != tt.wantWaste {
				t.Errorf("SetWasteReports = %v, want %v", p.SetWasteReports, tt.wantWaste)
			}
		})
	}
}

func TestDecodeSnapshotErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `not json`},
		{"array", `[]`},
		{"bad date", `{"wasteReports": [{"id": "w", "date": "yesterday"}]}`},
		{"bad item date", `{"shoppingHistory": [{"id": "l", "createdAt": "2024-01-01T00:00:00Z", "items": [{"id": "i", "createdAt": "soon"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSnapshot([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseTimeLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T12:00:00Z", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00.123Z", time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)},
		{"2024-05-01T09:00:00-03:00", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		got, err := parseTime(tt.in)
		if err != nil {
			t.Errorf("parseTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func assertStatesEqual(t *testing.T, want, got model.State) {
	t.Helper()

	if (want.CurrentList == nil) != (got.CurrentList == nil) {
		t.Fatalf("current list presence: want %v, got %v", want.CurrentList != nil, got.CurrentList != nil)
	}
	if want.CurrentList != nil {
		assertListsEqual(t, "currentList", *want.CurrentList, *got.CurrentList)
	}
	if len(want.ShoppingHistory) != len(got.ShoppingHistory) {
		t.Fatalf("len(history): want %d, got %d", len(want.ShoppingHistory), len(got.ShoppingHistory))
	}
	for i := range want.ShoppingHistory {
		assertListsEqual(t, "history", want.ShoppingHistory[i], got.ShoppingHistory[i])
	}
	if len(want.WasteReports) != len(got.WasteReports) {
		t.Fatalf("len(reports): want %d, got %d", len(want.WasteReports), len(got.WasteReports))
	}
	for i := range want.WasteReports {
		w, g := want.WasteReports[i], got.WasteReports[i]
		if w.ID != g.ID || w.ItemName != g.ItemName || w.Category != g.Category || w.Reason != g.Reason {
			t.Errorf("report[%d]: want %+v, got %+v", i, w, g)
		}
		if !w.Date.Equal(g.Date) {
			t.Errorf("report[%d] date: want %v, got %v", i, w.Date, g.Date)
		}
		if !floatsEqual(w.EstimatedValue, g.EstimatedValue) || !floatsEqual(w.Quantity, g.Quantity) {
			t.Errorf("report[%d] numbers differ", i)
		}
	}
}

func assertListsEqual(t *testing.T, label string, want, got model.ShoppingList) {
	t.Helper()
	if want.ID != got.ID || want.Name != got.Name || want.IsActive != got.IsActive {
		t.Errorf("%s: want %+v, got %+v", label, want, got)
	}
	if !want.CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("%s createdAt: want %v, got %v", label, want.CreatedAt, got.CreatedAt)
	}
	if !timesEqual(want.CompletedAt, got.CompletedAt) {
		t.Errorf("%s completedAt: want %v, got %v", label, want.CompletedAt, got.CompletedAt)
	}
	if len(want.Items) != len(got.Items) {
		t.Fatalf("%s len(items): want %d, got %d", label, len(want.Items), len(got.Items))
	}
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		if w.ID != g.ID || w.Name != g.Name || w.Category != g.Category || w.Unit != g.Unit || w.Completed != g.Completed {
			t.Errorf("%s item[%d]: want %+v, got %+v", label, i, w, g)
		}
		if !w.CreatedAt.Equal(g.CreatedAt) || !timesEqual(w.CompletedAt, g.CompletedAt) {
			t.Errorf("%s item[%d] timestamps differ", label, i)
		}
		if !floatsEqual(w.Quantity, g.Quantity) {
			t.Errorf("%s item[%d] quantity differs", label, i)
		}
	}
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func floatsEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func TestEncodeSnapshotOmitsAbsentOptionals(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(model.ItemDraft{Name: "Sabão", Category: model.CategoryCleaning})

	data, err := EncodeSnapshot(s.State())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(data), "completedAt") {
		t.Errorf("unexpected completedAt in %s", data)
	}
}
