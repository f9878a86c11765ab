// Package web serves the parking web app and its JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/matheus3301/chinopark/internal/config"
	"github.com/matheus3301/chinopark/internal/offline"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/web/assets"
)

// RevisionHeader carries the occupancy revision on API responses.
const RevisionHeader = "X-Park-Revision"

// Options configures the web server.
type Options struct {
	Addr    string
	Offline config.Offline
	// FormRate and FormBurst limit POSTs per client IP.
	FormRate  rate.Limit
	FormBurst int
}

// Server is the parkd HTTP front end.
type Server struct {
	echo   *echo.Echo
	svc    *parking.Service
	opts   Options
	logger *zap.Logger
	srv    *http.Server
	addr   net.Addr
}

// New builds the echo app and its routes.
func New(svc *parking.Service, opts Options, logger *zap.Logger) (*Server, error) {
	if opts.FormRate == 0 {
		opts.FormRate = 5
	}
	if opts.FormBurst == 0 {
		opts.FormBurst = 10
	}
	if _, err := offline.ParseProfile(opts.Offline.Profile); err != nil {
		return nil, err
	}

	r, err := newRenderer("index", "report")
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = r

	s := &Server{echo: e, svc: svc, opts: opts, logger: logger}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("request", fields...)
			return nil
		},
	}))

	limiter := NewRateLimiter(opts.FormRate, opts.FormBurst)

	e.GET("/", s.handleIndex)
	e.POST("/check-in", s.handleCheckIn, limiter.Middleware())
	e.POST("/check-out", s.handleCheckOut, limiter.Middleware())
	e.GET("/report", s.handleReport)
	e.GET("/healthz", s.handleHealth)
	e.GET("/offline-manifest.json", s.handleManifest)
	e.StaticFS("/static", echo.MustSubFS(assets.FS, "static"))

	api := e.Group("/api/v1")
	api.GET("/spaces", s.handleSpaces)
	api.GET("/report", s.handleReportJSON)
	api.GET("/revision", s.handleRevision)
	api.HEAD("/revision", s.handleRevision)
	api.POST("/vehicles", s.handleCreateVehicle, limiter.Middleware())
	api.POST("/vehicles/:plate/checkout", s.handleCheckoutVehicle, limiter.Middleware())

	return s, nil
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on opts.Addr and serves in the background.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", zap.Error(err))
		}
	}()
	s.logger.Info("web server listening", zap.String("addr", s.addr.String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr { return s.addr }

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
