package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{
		DefaultSite: "north",
		Offline:     Offline{Version: "chino-park-v2", Profile: "permissive", Manifest: []string{"/", "/report"}},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultSite != "north" {
		t.Errorf("DefaultSite = %q, want %q", loaded.DefaultSite, "north")
	}
	if loaded.Offline.Version != "chino-park-v2" || loaded.Offline.Profile != "permissive" {
		t.Errorf("Offline = %+v", loaded.Offline)
	}
	if len(loaded.Offline.Manifest) != 2 || loaded.Offline.Manifest[1] != "/report" {
		t.Errorf("Manifest = %v", loaded.Offline.Manifest)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Offline.Version != DefaultCacheVersion {
		t.Errorf("Version = %q, want %q", cfg.Offline.Version, DefaultCacheVersion)
	}
	if cfg.Offline.Profile != DefaultProfile {
		t.Errorf("Profile = %q, want %q", cfg.Offline.Profile, DefaultProfile)
	}
	if got := cfg.Origin(); got != "http://"+DefaultHTTPAddr {
		t.Errorf("Origin() = %q", got)
	}
}

func TestLoadOrDefaultFillsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nhttp_addr = \"0.0.0.0:8080\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Offline.Version != DefaultCacheVersion {
		t.Errorf("Version = %q, want default", cfg.Offline.Version)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
