package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matheus3301/chinopark/internal/api"
	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/config"
	"github.com/matheus3301/chinopark/internal/journal"
	"github.com/matheus3301/chinopark/internal/lock"
	"github.com/matheus3301/chinopark/internal/logging"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/site"
	"github.com/matheus3301/chinopark/internal/store"
	"github.com/matheus3301/chinopark/internal/web"
)

// Params holds the resolved site configuration passed to the fx module.
type Params struct {
	SiteName   string
	SocketPath string // optional override for testing; empty = use default
	HTTPAddr   string // optional override of [server] http_addr
	Debug      bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideLock,
			provideStore,
			provideParking,
			provideJournal,
			provideWeb,
			provideParkingAPI,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := site.EnsureDir(p.SiteName); err != nil {
		return nil, err
	}
	level := zapcore.InfoLevel
	if p.Debug {
		level = zapcore.DebugLevel
	}
	return logging.New(site.LogPath(p.SiteName, "parkd"), p.SiteName, logging.Options{Console: true, Level: level})
}

func provideConfig(p Params, logger *zap.Logger) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(site.ConfigPath())
	if err != nil {
		return nil, err
	}
	if p.HTTPAddr != "" {
		cfg.Server.HTTPAddr = p.HTTPAddr
	}
	logger.Info("config loaded",
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("offline_version", cfg.Offline.Version),
		zap.String("offline_profile", cfg.Offline.Profile),
	)
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring site lock", zap.String("site", p.SiteName))
	l, err := lock.Acquire(site.Dir(p.SiteName))
	if err != nil {
		return nil, err
	}
	logger.Info("site lock acquired")
	return l, nil
}

// provideStore depends on the lock so a second daemon never touches park.db.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := site.DBPath(p.SiteName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed() {
		logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("to", result.To))
	} else {
		logger.Info("schema up to date", zap.Uint("version", result.To))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideParking(db *store.DB, b *bus.Bus, logger *zap.Logger) *parking.Service {
	return parking.NewService(db, b, logger.Named("parking"))
}

func provideJournal(db *store.DB, b *bus.Bus, logger *zap.Logger) *journal.Journal {
	return journal.New(db, b, logger.Named("journal"))
}

func provideWeb(cfg *config.Config, svc *parking.Service, logger *zap.Logger) (*web.Server, error) {
	return web.New(svc, web.Options{
		Addr:    cfg.Server.HTTPAddr,
		Offline: cfg.Offline,
	}, logger.Named("web"))
}

func provideParkingAPI(p Params, cfg *config.Config, svc *parking.Service, b *bus.Bus, logger *zap.Logger) *api.ParkingService {
	return api.NewParkingService(p.SiteName, cfg, svc, b, logger.Named("api"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, webSrv *web.Server, lk *lock.Lock, db *store.DB, j *journal.Journal, logger *zap.Logger) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())

			j.Start(runCtx)

			if err := webSrv.Start(ctx); err != nil {
				cancel()
				j.Stop()
				return err
			}

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			logger.Info("daemon started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := webSrv.Stop(ctx); err != nil {
				logger.Warn("error stopping web server", zap.Error(err))
			}
			if cancel != nil {
				cancel()
			}
			j.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
