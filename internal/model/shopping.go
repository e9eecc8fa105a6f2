package model

import "time"

type Category string

const (
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryGrains     Category = "grains"
	CategoryBeverages  Category = "beverages"
	CategoryCleaning   Category = "cleaning"
	CategoryPersonal   Category = "personal"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFruits,
	CategoryVegetables,
	CategoryDairy,
	CategoryMeat,
	CategoryGrains,
	CategoryBeverages,
	CategoryCleaning,
	CategoryPersonal,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

var categoryLabels = map[Category]string{
	CategoryFruits:     "Frutas",
	CategoryVegetables: "Vegetais",
	CategoryDairy:      "Laticínios",
	CategoryMeat:       "Carnes",
	CategoryGrains:     "Grãos",
	CategoryBeverages:  "Bebidas",
	CategoryCleaning:   "Limpeza",
	CategoryPersonal:   "Higiene",
}

// Label is the display name, or the raw value for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

type WasteReason string

const (
	ReasonSpoiled       WasteReason = "spoiled"
	ReasonBoughtTooMuch WasteReason = "bought_too_much"
	ReasonForgotToUse   WasteReason = "forgot_to_use"
	ReasonExpired       WasteReason = "expired"
)

// WasteReasons lists every waste reason in display order.
var WasteReasons = []WasteReason{
	ReasonSpoiled,
	ReasonBoughtTooMuch,
	ReasonForgotToUse,
	ReasonExpired,
}

func (r WasteReason) Valid() bool {
	for _, known := range WasteReasons {
		if r == known {
			return true
		}
	}
	return false
}

var reasonLabels = map[WasteReason]string{
	ReasonSpoiled:       "Estragou",
	ReasonBoughtTooMuch: "Comprei demais",
	ReasonForgotToUse:   "Esqueci de usar",
	ReasonExpired:       "Venceu",
}

func (r WasteReason) Label() string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}
	return string(r)
}

type ShoppingItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Quantity    *float64   `json:"quantity,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type ShoppingList struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Items       []ShoppingItem `json:"items"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	IsActive    bool           `json:"isActive"`
}

type WasteReport struct {
	ID             string      `json:"id"`
	ItemName       string      `json:"itemName"`
	Category       Category    `json:"category"`
	Reason         WasteReason `json:"reason"`
	Quantity       *float64    `json:"quantity,omitempty"`
	EstimatedValue *float64    `json:"estimatedValue,omitempty"`
	Date           time.Time   `json:"date"`
}

// Value returns the estimated value, treating an absent value as zero.
func (r WasteReport) Value() float64 {
	if r.EstimatedValue == nil {
		return 0
	}
	return *r.EstimatedValue
}

// ItemDraft holds the caller-supplied fields of a new shopping item.
type ItemDraft struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

// WasteDraft holds the caller-supplied fields of a new waste report.
type WasteDraft struct {
	ItemName       string      `json:"itemName"`
	Category       Category    `json:"category"`
	Reason         WasteReason `json:"reason"`
	Quantity       *float64    `json:"quantity,omitempty"`
	EstimatedValue *float64    `json:"estimatedValue,omitempty"`
}

// State is the full shopping state. History and waste reports are ordered
// newest first.
type State struct {
	CurrentList     *ShoppingList  `json:"currentList"`
	ShoppingHistory []ShoppingList `json:"shoppingHistory"`
	WasteReports    []WasteReport  `json:"wasteReports"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		ShoppingHistory: make([]ShoppingList, len(s.ShoppingHistory)),
		WasteReports:    make([]WasteReport, len(s.WasteReports)),
	}
	if s.CurrentList != nil {
		l := s.CurrentList.Clone()
		out.CurrentList = &l
	}
	for i, l := range s.ShoppingHistory {
		out.ShoppingHistory[i] = l.Clone()
	}
	for i, r := range s.WasteReports {
		out.WasteReports[i] = r.Clone()
	}
	return out
}

func (l ShoppingList) Clone() ShoppingList {
	out := l
	out.CompletedAt = cloneTime(l.CompletedAt)
	out.Items = make([]ShoppingItem, len(l.Items))
	for i, item := range l.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

func (i ShoppingItem) Clone() ShoppingItem {
	out := i
	out.Quantity = cloneFloat(i.Quantity)
	out.CompletedAt = cloneTime(i.CompletedAt)
	return out
}

func (r WasteReport) Clone() WasteReport {
	out := r
	out.Quantity = cloneFloat(r.Quantity)
	out.EstimatedValue = cloneFloat(r.EstimatedValue)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
