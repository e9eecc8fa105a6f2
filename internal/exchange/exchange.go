// Package exchange converts shopping state to and from the portable backup
// document users download and re-import.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dukerupert/compras/internal/model"
	"github.com/dukerupert/compras/internal/shopping"
)

// Version tags every exported document.
const Version = "1.0.0"

// maxDocumentSize bounds how much Import reads.
const maxDocumentSize = 16 << 20

// ErrInvalidFormat is returned when an imported document does not look like
// a backup.
var ErrInvalidFormat = errors.New("invalid backup file format")

// Document is the exported backup.
type Document struct {
	CurrentList     *model.ShoppingList  `json:"currentList"`
	ShoppingHistory []model.ShoppingList `json:"shoppingHistory"`
	WasteReports    []model.WasteReport  `json:"wasteReports"`
	ExportDate      time.Time            `json:"exportDate"`
	Version         string               `json:"version"`
}

// Export builds a document from the given state.
func Export(st model.State, now time.Time) Document {
	st = st.Clone()
	return Document{
		CurrentList:     st.CurrentList,
		ShoppingHistory: st.ShoppingHistory,
		WasteReports:    st.WasteReports,
		ExportDate:      now.UTC(),
		Version:         Version,
	}
}

// Filename returns the download name for a document exported at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("compras-organizadas-backup-%s.json", now.UTC().Format("2006-01-02"))
}

// Encode renders the document as indented JSON.
func Encode(doc Document) ([]byte, error) {
	if doc.ShoppingHistory == nil {
		doc.ShoppingHistory = []model.ShoppingList{}
	}
	if doc.WasteReports == nil {
		doc.WasteReports = []model.WasteReport{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Import reads a document and returns the partial state to hand to
// Store.LoadData. The document must carry a shoppingHistory or a wasteReports
// field; a missing one of the two is loaded as empty. The current list is
// only replaced when the document names one (null clears it).
func Import(r io.Reader) (shopping.Partial, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return shopping.Partial{}, fmt.Errorf("read document: %w", err)
	}
	if len(data) > maxDocumentSize {
		return shopping.Partial{}, fmt.Errorf("%w: document larger than %d bytes", ErrInvalidFormat, maxDocumentSize)
	}
	return Decode(data)
}

// Decode is Import over an in-memory document.
func Decode(data []byte) (shopping.Partial, error) {
	p, err := shopping.DecodeSnapshot(data)
	if err != nil {
		return shopping.Partial{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if !p.SetHistory && !p.SetWasteReports {
		return shopping.Partial{}, fmt.Errorf("%w: missing shoppingHistory and wasteReports", ErrInvalidFormat)
	}

	p.SetHistory = true
	p.SetWasteReports = true
	if p.ShoppingHistory == nil {
		p.ShoppingHistory = []model.ShoppingList{}
	}
	if p.WasteReports == nil {
		p.WasteReports = []model.WasteReport{}
	}
	return p, nil
}
