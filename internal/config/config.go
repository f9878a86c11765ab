package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultHTTPAddr     = "127.0.0.1:5001"
	DefaultCacheVersion = "chino-park-v1"
	DefaultProfile      = "strict"
)

// Config represents the global ~/.park/config.toml.
type Config struct {
	DefaultSite string  `toml:"default_site"`
	Server      Server  `toml:"server"`
	Offline     Offline `toml:"offline"`
}

// Server configures the parkd web listener.
type Server struct {
	HTTPAddr string `toml:"http_addr"`
}

// Offline configures the parktui offline cache worker.
type Offline struct {
	// Version names the current cache store; bump it to evict every older store on next activation.
	Version string `toml:"version"`
	// Profile is "strict" (same-origin write-back) or "permissive" (any absolute URL).
	Profile string `toml:"profile"`
	// Manifest overrides the profile's built-in install manifest when non-empty.
	Manifest []string `toml:"manifest"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Offline.Version == "" {
		c.Offline.Version = DefaultCacheVersion
	}
	if c.Offline.Profile == "" {
		c.Offline.Profile = DefaultProfile
	}
}

// Origin returns the base URL parktui uses to reach the parkd web app.
func (c *Config) Origin() string {
	return "http://" + c.Server.HTTPAddr
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to Default when the file
// does not exist. Unset fields are filled with defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
