// Package server serves the ColorVibe web UI and JSON API with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colorvibe/internal/app"
	"github.com/jmylchreest/colorvibe/internal/colour"
	"github.com/jmylchreest/colorvibe/internal/config"
	"github.com/jmylchreest/colorvibe/internal/preview"
	"github.com/jmylchreest/colorvibe/internal/telemetry"
)

// multipartOverhead is allowed on top of the upload limit for form framing.
const multipartOverhead = 1 << 20

// Options configures a Server.
type Options struct {
	Config  *config.Config
	Logger  hclog.Logger
	Metrics *telemetry.Metrics

	// Extractor overrides the quantiser built from Config.
	Extractor colour.Extractor

	// ControllerOptions are applied to every new session.
	ControllerOptions []app.ControllerOption
}

// Server is the ColorVibe HTTP application.
type Server struct {
	cfg       *config.Config
	log       hclog.Logger
	metrics   *telemetry.Metrics
	extractor colour.Extractor
	store     *app.Store
	engine    *gin.Engine
}

// New builds the router and session store.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.Noop()
	}

	extractor := opts.Extractor
	if extractor == nil {
		ec, err := cfg.ExtractorConfig()
		if err != nil {
			return nil, fmt.Errorf("invalid extractor config: %w", err)
		}
		extractor, err = colour.NewExtractor(ec)
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor: %w", err)
		}
	}

	tmpl, err := preview.Templates()
	if err != nil {
		return nil, err
	}

	ctrlOpts := append([]app.ControllerOption{app.WithMoodOptions(cfg.MoodOptions())}, opts.ControllerOptions...)
	s := &Server{
		cfg:       cfg,
		log:       logger.Named("server"),
		metrics:   metrics,
		extractor: extractor,
	}
	s.store = app.NewStore(app.StoreOptions{
		TTL:           cfg.Session.TTL,
		MaxSessions:   cfg.Session.MaxSessions,
		NewController: func() *app.Controller { return app.NewController(ctrlOpts...) },
		OnOpen:        func() { metrics.SessionOpened(context.Background()) },
		OnClose:       func() { metrics.SessionClosed(context.Background()) },
		Logger:        logger.Named("session"),
	})

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.Upload.MaxBytes + multipartOverhead
	engine.SetHTMLTemplate(tmpl)
	engine.Use(gin.Recovery(), accessLog(s.log), securityHeaders())
	s.engine = engine
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	r := s.engine.Group("/", s.sessions())
	r.GET("/", s.index)
	r.POST("/upload", s.upload)
	r.POST("/colors/:role", s.recolor)
	r.POST("/colors/:role/lock", s.toggleLock)
	r.POST("/shuffle", s.shuffle)
	r.POST("/font", s.setFont)
	r.POST("/font/random", s.randomFont)
	r.POST("/animation", s.setAnimation)
	r.POST("/reset", s.reset)
	r.GET("/palette.txt", s.download)
	r.GET("/image", s.image)

	api := r.Group("/api")
	api.GET("/palette", s.apiPalette)
	api.GET("/contrast", s.apiContrast)
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store returns the session store.
func (s *Server) Store() *app.Store {
	return s.store
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.store.Run(sweepCtx, s.cfg.Session.SweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
