package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load without file: %v", err)
	}
	def := Default()
	if *cfg != *def {
		t.Fatalf("missing file must yield defaults, got %+v", cfg)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.Viewer.Theme = "Monokai"
	cfg.Grid.OverscanRows = 10
	cfg.Grid.AutoWidthDebounce.Duration = 150 * time.Millisecond
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Viewer.Theme != "monokai" {
		t.Fatalf("theme = %q, want lower-cased monokai", loaded.Viewer.Theme)
	}
	if loaded.Grid.OverscanRows != 10 {
		t.Fatalf("overscanRows = %d, want 10", loaded.Grid.OverscanRows)
	}
	if loaded.Grid.AutoWidthDebounce.Duration != 150*time.Millisecond {
		t.Fatalf("debounce = %v, want 150ms", loaded.Grid.AutoWidthDebounce.Duration)
	}
}

func TestLoadBackfillsPartialFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".kview")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	partial := "grid:\n  overscanRows: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(partial), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Grid.OverscanRows != 3 {
		t.Fatalf("overscanRows = %d, want 3", cfg.Grid.OverscanRows)
	}
	if cfg.Grid.VirtualizeRowsFrom != 50 {
		t.Fatalf("virtualizeRowsFrom = %d, want backfilled 50", cfg.Grid.VirtualizeRowsFrom)
	}
	if cfg.Viewer.Theme != "native" {
		t.Fatalf("theme = %q, want backfilled native", cfg.Viewer.Theme)
	}
	if cfg.Input.Mouse.DoubleClickTimeout.Duration != 400*time.Millisecond {
		t.Fatalf("doubleClickTimeout = %v, want backfilled 400ms", cfg.Input.Mouse.DoubleClickTimeout.Duration)
	}
}
