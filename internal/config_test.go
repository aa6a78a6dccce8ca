package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qorvid/cursor-atlas/testutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Point HOME at an empty directory so no real config file interferes.
	t.Setenv("HOME", testutil.CreateTempDir(t))

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.StoragePath != "" {
		t.Errorf("StoragePath default = %q, want empty", cfg.StoragePath)
	}
	if cfg.ExportFormat != "md" {
		t.Errorf("ExportFormat default = %q, want md", cfg.ExportFormat)
	}
	if cfg.ExportDir != "./exports" {
		t.Errorf("ExportDir default = %q, want ./exports", cfg.ExportDir)
	}
	if cfg.CacheDir == "" {
		t.Error("CacheDir default should not be empty")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	cfgFile := filepath.Join(dir, "config.yaml")
	content := "storage_path: /custom/storage\nexport_format: jsonl\ncache_dir: /custom/cache\n"
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.StoragePath != "/custom/storage" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.ExportFormat != "jsonl" {
		t.Errorf("ExportFormat = %q", cfg.ExportFormat)
	}
	if cfg.CacheDir != "/custom/cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	// Unset keys keep their defaults.
	if cfg.ExportDir != "./exports" {
		t.Errorf("ExportDir = %q, want default", cfg.ExportDir)
	}
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	if _, err := LoadConfig("/no/such/config.yaml"); err == nil {
		t.Error("explicitly named missing config should fail")
	}
}

func TestLoadConfigHomeDotfile(t *testing.T) {
	home := testutil.CreateTempDir(t)
	t.Setenv("HOME", home)

	content := "export_format: yaml\n"
	if err := os.WriteFile(filepath.Join(home, ".cursor-atlas.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ExportFormat != "yaml" {
		t.Errorf("ExportFormat = %q, want yaml", cfg.ExportFormat)
	}
}
