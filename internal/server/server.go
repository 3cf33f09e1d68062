// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/profile"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":5001"
	// DefaultService is reported by the health endpoint.
	DefaultService = "resume-matcher"

	shutdownTimeout = 30 * time.Second
)

// Config holds HTTP server settings.
type Config struct {
	Addr    string `mapstructure:"addr"`
	Service string `mapstructure:"service"`
}

// Server routes HTTP requests to one analyzer per registered profile.
type Server struct {
	config    Config
	registry  *profile.Registry
	analyzers map[string]*analyzer.Analyzer
	engine    *gin.Engine
	logger    *zap.Logger
}

// New builds an analyzer for every profile in registry and sets up the routes.
func New(cfg Config, registry *profile.Registry, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}

	s := &Server{
		config:    cfg,
		registry:  registry,
		analyzers: make(map[string]*analyzer.Analyzer),
		logger:    logger,
	}

	for _, name := range registry.Names() {
		p, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		a, err := analyzer.New(p, logger)
		if err != nil {
			return nil, fmt.Errorf("building analyzer for profile %q: %w", name, err)
		}
		s.analyzers[name] = a
	}

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(s.logger))
	r.Use(CORSMiddleware())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/match-resume", s.matchResume)
		api.GET("/profiles", s.profiles)
	}

	return r
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("address", s.config.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
