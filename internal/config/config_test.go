package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// config_test.go verifies defaults, file loading, and normalization.

// isolate points the implicit search paths at empty directories so only
// an explicitly passed file can be found.
func isolate(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		if chdirErr := os.Chdir(originalWD); chdirErr != nil {
			t.Fatalf("restore wd: %v", chdirErr)
		}
	})
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Format != "|=|" {
		t.Fatalf("Format = %q, want %q", cfg.Format, "|=|")
	}
	if cfg.UpdateIntervalMS != 500 {
		t.Fatalf("UpdateIntervalMS = %d, want 500", cfg.UpdateIntervalMS)
	}
	if cfg.FallbackWidth != 80 {
		t.Fatalf("FallbackWidth = %d, want 80", cfg.FallbackWidth)
	}
	if cfg.DayWidth != 2 {
		t.Fatalf("DayWidth = %d, want 2", cfg.DayWidth)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_ReadsFileAndNormalizes(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "progressbar.json")
	body := `{"format":"[#]","update_interval_ms":-20,"fallback_width":0,"day_width":1,"workers":120,"log_level":"debug"}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Format != "[#]" {
		t.Fatalf("Format = %q, want %q", cfg.Format, "[#]")
	}
	if cfg.Workers != 120 {
		t.Fatalf("Workers = %d, want 120", cfg.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}

	// Out-of-range values normalize back to defaults.
	if cfg.UpdateIntervalMS != 500 {
		t.Fatalf("UpdateIntervalMS = %d, want normalized 500", cfg.UpdateIntervalMS)
	}
	if cfg.FallbackWidth != 80 {
		t.Fatalf("FallbackWidth = %d, want normalized 80", cfg.FallbackWidth)
	}
	if cfg.DayWidth != 2 {
		t.Fatalf("DayWidth = %d, want normalized 2", cfg.DayWidth)
	}

	if cfg.Path != dir {
		t.Fatalf("Path = %q, want %q", cfg.Path, dir)
	}
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "progressbar.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := defaults()

	if got := cfg.UpdateInterval(); got != 500*time.Millisecond {
		t.Fatalf("UpdateInterval = %v, want 500ms", got)
	}
	if got := cfg.Timeout(); got != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", got)
	}
}
