package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/config"
	"github.com/matheus3301/chinopark/internal/logging"
	"github.com/matheus3301/chinopark/internal/offline"
	"github.com/matheus3301/chinopark/internal/offline/sqlitestore"
	"github.com/matheus3301/chinopark/internal/site"
	"github.com/matheus3301/chinopark/internal/tui"
	"github.com/matheus3301/chinopark/internal/tui/client"
)

func main() {
	siteFlag := flag.String("site", "", "site name (overrides config default)")
	noStart := flag.Bool("no-autostart", false, "do not start parkd when it is not running")
	flag.Parse()

	siteName := site.Resolve(*siteFlag)
	if err := site.ValidateName(siteName); err != nil {
		fatal("error: %v", err)
	}
	if err := site.EnsureDir(siteName); err != nil {
		fatal("error: %v", err)
	}

	cfg, err := config.LoadOrDefault(site.ConfigPath())
	if err != nil {
		fatal("load config: %v", err)
	}
	logger, err := logging.New(site.LogPath(siteName, "parktui"), siteName, logging.Options{Level: zapcore.InfoLevel})
	if err != nil {
		fatal("open log: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	socketPath := site.SocketPath(siteName)
	c, err := client.New(socketPath)
	if err != nil {
		fatal("connect to daemon: %v", err)
	}
	defer func() { _ = c.Close() }()

	// Probe daemon health; auto-start if needed. parktui still runs from the
	// offline cache when parkd cannot be reached.
	if !probeDaemon(c) && !*noStart {
		fmt.Fprintf(os.Stderr, "daemon not running for site %q, starting...\n", siteName)
		if err := startDaemon(siteName); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
		} else if !waitForDaemon(c, 10*time.Second) {
			fmt.Fprintln(os.Stderr, "daemon did not become ready, continuing offline")
		}
	}

	cacheDB, err := sqlitestore.Open(site.CacheDBPath(siteName))
	if err != nil {
		fatal("open cache: %v", err)
	}
	defer func() { _ = cacheDB.Close() }()
	if err := cacheDB.Migrate(); err != nil {
		fatal("migrate cache: %v", err)
	}

	controller := offline.NewController(logger.Named("offline"))
	reg, err := registerWorker(cfg, cacheDB, controller, logger.Named("offline"))
	if err != nil {
		logger.Warn("offline cache unavailable", zap.Error(err))
		fmt.Fprintf(os.Stderr, "offline cache unavailable: %v\n", err)
	}

	httpClient := offline.NewClient(&offline.Transport{Controller: controller, Base: http.DefaultTransport})
	httpClient.Timeout = 10 * time.Second

	app := tui.NewApp(tui.Options{
		Site:   siteName,
		Origin: cfg.Origin(),
		HTTP:   httpClient,
		Events: c,
		Cache:  cacheState(reg),
		Logger: logger.Named("tui"),
	})
	if err := app.Run(); err != nil {
		fatal("error: %v", err)
	}
}

// registerWorker installs and activates the configured cache version. When
// that fails, the last activated version on disk keeps serving.
func registerWorker(cfg *config.Config, store *sqlitestore.DB, controller *offline.Controller, logger *zap.Logger) (*offline.Registration, error) {
	origin, err := url.Parse(cfg.Origin())
	if err != nil {
		return nil, err
	}
	b := bus.New()
	changes, unsub := b.Subscribe("worker.", 16)
	go func() {
		for evt := range changes {
			if sc, ok := evt.Payload.(offline.StateChange); ok {
				logger.Debug("worker state", zap.String("cache", sc.Version), zap.String("from", string(sc.From)), zap.String("to", string(sc.To)))
			}
		}
	}()
	defer unsub()

	build := func(version string) (*offline.Worker, error) {
		return offline.NewWorker(offline.Options{
			Version:  version,
			Origin:   cfg.Origin(),
			Profile:  offline.Profile(cfg.Offline.Profile),
			Manifest: cfg.Offline.Manifest,
			Storage:  store,
			Fetcher:  &offline.HTTPFetcher{Client: &http.Client{Timeout: 10 * time.Second}, Origin: origin},
			Clients:  controller,
			Bus:      b,
			Logger:   logger,
		})
	}
	w, err := build(cfg.Offline.Version)
	if err != nil {
		return nil, err
	}

	reg := offline.NewRegistration(store, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	regErr := reg.Register(ctx, w)
	if regErr == nil {
		return reg, nil
	}
	logger.Warn("cache registration failed", zap.String("cache", cfg.Offline.Version), zap.Error(regErr))
	if _, err := reg.Fallback(ctx, build); err != nil {
		if !errors.Is(err, offline.ErrNoRegistration) {
			logger.Warn("cache fallback failed", zap.Error(err))
		}
		return reg, regErr
	}
	return reg, nil
}

func cacheState(reg *offline.Registration) func() string {
	return func() string {
		if reg == nil {
			return "off"
		}
		w := reg.Active()
		if w == nil {
			return "off"
		}
		return fmt.Sprintf("%s (%s)", w.Version(), w.State())
	}
}

// probeDaemon checks if a daemon is running and responsive on the socket.
func probeDaemon(c *client.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.GetStatus(ctx)
	return err == nil
}

func startDaemon(siteName string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	parkd := filepath.Join(filepath.Dir(executable), "parkd")
	if _, err := os.Stat(parkd); err != nil {
		parkd = "parkd"
	}

	cmd := exec.Command(parkd, "--site", siteName)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// waitForDaemon polls GetStatus until it answers or timeout passes.
func waitForDaemon(c *client.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeDaemon(c) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
