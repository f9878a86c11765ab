package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".park", "sites", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestSitePaths(t *testing.T) {
	tests := []struct {
		got    string
		suffix string
	}{
		{SocketPath("lot"), filepath.Join("sites", "lot", "daemon.sock")},
		{LockPath("lot"), filepath.Join("sites", "lot", "LOCK")},
		{DBPath("lot"), filepath.Join("sites", "lot", "park.db")},
		{CacheDBPath("lot"), filepath.Join("sites", "lot", "cache.db")},
		{LogPath("lot", "parkd"), filepath.Join("sites", "lot", "logs", "parkd.log")},
	}
	for _, tt := range tests {
		if !strings.HasSuffix(tt.got, tt.suffix) {
			t.Errorf("path %q, want suffix %q", tt.got, tt.suffix)
		}
	}
}
