package site

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.park.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".park")
}

// Dir returns the site-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sites", name)
}

// SocketPath returns the UDS socket path of the site daemon.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "daemon.sock")
}

// LockPath returns the lock file path for a site.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DBPath returns the parking database path owned by parkd.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "park.db")
}

// CacheDBPath returns the offline cache database owned by parktui.
func CacheDBPath(name string) string {
	return filepath.Join(Dir(name), "cache.db")
}

// LogDir returns the log directory for a site.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path for the given program (parkd, parktui).
func LogPath(name, program string) string {
	return filepath.Join(LogDir(name), program+".log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the site directory tree with proper permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
