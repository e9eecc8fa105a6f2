package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukerupert/compras/internal/model"
	"github.com/dukerupert/compras/internal/shopping"
	"github.com/dukerupert/compras/internal/stats"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const sampleBackup = `{
  "currentList": null,
  "shoppingHistory": [
    {
      "id": "l1",
      "name": "Lista de Compras",
      "items": [
        {"id": "i1", "name": "Leite", "category": "dairy", "completed": true, "createdAt": "2024-03-01T10:00:00.000Z", "completedAt": "2024-03-01T11:00:00.000Z"},
        {"id": "i2", "name": "Pão", "category": "grains", "completed": false, "createdAt": "2024-03-01T10:05:00.000Z"}
      ],
      "createdAt": "2024-03-01T10:00:00.000Z",
      "completedAt": "2024-03-01T12:00:00.000Z",
      "isActive": false
    }
  ],
  "wasteReports": [
    {"id": "w1", "itemName": "Tomate", "category": "vegetables", "reason": "spoiled", "estimatedValue": 5.5, "date": "2024-03-10T09:00:00.000Z"}
  ],
  "exportDate": "2024-03-15T00:00:00.000Z",
  "version": "1.0.0"
}`

func TestImportExportStats(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "compras.db")
	backupPath := filepath.Join(dir, "backup.json")
	if err := os.WriteFile(backupPath, []byte(sampleBackup), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	out, err := runCLI(t, "--db", db, "import", backupPath)
	if err != nil {
		t.Fatalf("import: %v (%s)", err, out)
	}
	if !strings.Contains(out, "Imported 1 lists and 1 waste reports") {
		t.Errorf("import output = %q", out)
	}

	out, err = runCLI(t, "--db", db, "export", "-o", "-")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, `"version": "1.0.0"`) || !strings.Contains(out, "Leite") {
		t.Errorf("export output = %s", out)
	}

	exportPath := filepath.Join(dir, "out.json")
	if _, err := runCLI(t, "--db", db, "export", "-o", exportPath); err != nil {
		t.Fatalf("export to file: %v", err)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Errorf("export file missing: %v", err)
	}

	out, err = runCLI(t, "--db", db, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"R$ 5.50", "Tomate", "Laticínios"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	os.WriteFile(path, []byte(`{}`), 0o644)

	if _, err := runCLI(t, "--db", filepath.Join(dir, "c.db"), "import", path); err == nil {
		t.Error("expected error for document without history or waste reports")
	}
}

func TestImportMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "--db", filepath.Join(dir, "c.db"), "import", filepath.Join(dir, "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, stats.Compute(model.State{}, nil))
	if !strings.Contains(buf.String(), "Nenhum dado ainda.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderReportHighWaste(t *testing.T) {
	s := shopping.New()
	s.AddItem(model.ItemDraft{Name: "Alface", Category: model.CategoryVegetables})
	s.CompleteList()
	s.AddWasteReport(model.WasteDraft{ItemName: "Alface", Category: model.CategoryVegetables, Reason: model.ReasonForgotToUse})

	var buf bytes.Buffer
	renderReport(&buf, stats.Compute(s.State(), nil))
	out := buf.String()
	if !strings.Contains(out, "Atenção") {
		t.Errorf("expected high waste warning:\n%s", out)
	}
	if !strings.Contains(out, "Esqueci de usar") {
		t.Errorf("expected reason label:\n%s", out)
	}
}
