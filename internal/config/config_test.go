package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("CCLT_CONFIG", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := setTempHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClaudeRoot != filepath.Join(home, ".claude", "projects") {
		t.Errorf("ClaudeRoot = %q", cfg.ClaudeRoot)
	}
	if cfg.DBPath != filepath.Join(home, ".config", "cclt", "cclt.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.BatchSize != DefaultBatchSize || cfg.Workers != DefaultWorkers || cfg.Verbose {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	home := setTempHome(t)
	dir := filepath.Join(home, ".config", "cclt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := `claude_root = "~/logs"
db_path = "/var/tmp/x.db"
batch_size = 0
workers = 4
verbose = true
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClaudeRoot != filepath.Join(home, "logs") {
		t.Errorf("ClaudeRoot = %q, want ~ expanded", cfg.ClaudeRoot)
	}
	if cfg.DBPath != "/var/tmp/x.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.BatchSize != 1 {
		t.Errorf("BatchSize = %d, want clamped to 1", cfg.BatchSize)
	}
	if cfg.Workers != 4 || !cfg.Verbose {
		t.Errorf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setTempHome(t)
	path := filepath.Join(t.TempDir(), "alt.toml")
	if err := os.WriteFile(path, []byte(`workers = 3`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CCLT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadBadFile(t *testing.T) {
	setTempHome(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte(`workers = "many`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CCLT_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
