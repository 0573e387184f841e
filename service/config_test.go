package service

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("<html><body><p>hi</p></body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "domfence.yaml")
	cfg := `
journal_path: ` + filepath.Join(dir, "journal.db") + `
documents:
  - name: inline
    markup: "<html><body></body></html>"
  - path: ` + page + `
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfigFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if got.Listen != ":8790" {
		t.Errorf("listen default: %q", got.Listen)
	}
	if !got.SanitizeMarkup {
		t.Error("sanitize_markup should default to true")
	}
	if len(got.Documents) != 2 {
		t.Fatalf("documents: %d", len(got.Documents))
	}
	if got.Documents[1].Name != "document-2" {
		t.Errorf("default name: %q", got.Documents[1].Name)
	}
	if got.Documents[1].Markup == "" {
		t.Error("file-backed document markup not resolved")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
