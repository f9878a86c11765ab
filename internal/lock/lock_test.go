package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAcquireCreatesSiteDir(t *testing.T) {
	siteDir := filepath.Join(t.TempDir(), "sites", "main")

	l, err := Acquire(siteDir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer func() { _ = l.Release() }()

	data, err := os.ReadFile(filepath.Join(siteDir, fileName))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if !strings.HasPrefix(string(data), "pid=") {
		t.Errorf("lock file = %q, want pid= line first", data)
	}
}

func TestSecondDaemonIsRefused(t *testing.T) {
	siteDir := t.TempDir()

	first, err := Acquire(siteDir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = first.Release() }()

	_, err = Acquire(siteDir)
	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("second Acquire() = %v, want *HeldError", err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", held.PID, os.Getpid())
	}
	if !strings.Contains(err.Error(), filepath.Join(siteDir, fileName)) {
		t.Errorf("error %q does not name the lock file", err)
	}
}

func TestInspectFollowsHolder(t *testing.T) {
	siteDir := t.TempDir()

	if h, err := Inspect(siteDir); err != nil || h != nil {
		t.Fatalf("Inspect() before Acquire = %v, %v; want nil, nil", h, err)
	}

	before := time.Now().Add(-time.Second)
	l, err := Acquire(siteDir)
	if err != nil {
		t.Fatal(err)
	}

	h, err := Inspect(siteDir)
	if err != nil {
		t.Fatal(err)
	}
	if h == nil || h.PID != os.Getpid() {
		t.Fatalf("Inspect() = %+v, want PID %d", h, os.Getpid())
	}
	if h.Since.Before(before.Truncate(time.Second)) {
		t.Errorf("Since = %v, want after %v", h.Since, before)
	}

	if err := l.Release(); err != nil {
		t.Fatal(err)
	}
	if h, err := Inspect(siteDir); err != nil || h != nil {
		t.Errorf("Inspect() after Release = %v, %v; want nil, nil", h, err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	siteDir := t.TempDir()

	l, err := Acquire(siteDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}

	again, err := Acquire(siteDir)
	if err != nil {
		t.Fatalf("Acquire() after Release error = %v", err)
	}
	_ = again.Release()

	var none *Lock
	if err := none.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
}

func TestParseHolderIgnoresJunk(t *testing.T) {
	h := parseHolder("garbage\npid=abc\ntime=yesterday\n")
	if h.PID != 0 || !h.Since.IsZero() {
		t.Errorf("parseHolder(junk) = %+v, want zero", h)
	}

	h = parseHolder("pid=4242\ntime=2026-03-01T09:30:00Z\n")
	if h.PID != 4242 || h.Since.Year() != 2026 {
		t.Errorf("parseHolder() = %+v", h)
	}
}
