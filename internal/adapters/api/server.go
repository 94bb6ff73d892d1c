package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
)

// Server exposes the engine's commands and projections over HTTP
type Server struct {
	cfg      config.ServerConfig
	mediator mediator.Mediator
	logger   zerolog.Logger
	router   *gin.Engine
	http     *http.Server
}

// NewServer wires the gin router. metricsPath is mounted only when metrics are enabled.
func NewServer(cfg config.ServerConfig, m mediator.Mediator, logger zerolog.Logger, metricsPath string) *Server {
	gin.SetMode(cfg.Mode)

	s := &Server{
		cfg:      cfg,
		mediator: m,
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if metricsPath != "" && metrics.IsEnabled() {
		router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst)
	v1 := router.Group("/api/v1", commandRateLimit(limiter))
	s.registerFabricRoutes(v1.Group("/fabric"))
	s.registerCuttingRoutes(v1.Group("/jobs"))
	s.registerPipelineRoutes(v1.Group("/assignments"))
	s.registerPayableRoutes(v1.Group("/payables"))
	s.registerStockRoutes(v1.Group("/stock"))
	s.registerOrderRoutes(v1.Group("/orders"))

	s.router = router
	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.cfg.Address).Msg("HTTP API listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down HTTP API")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown failed: %w", err)
	}
	return nil
}

// send dispatches a request through the mediator and writes the response
func (s *Server) send(c *gin.Context, status int, request mediator.Request) {
	response, err := s.mediator.Send(c.Request.Context(), request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, response)
}

// bind decodes the JSON body; on failure the error response is already written
func bind(c *gin.Context, body interface{}) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		writeBindingError(c, err)
		return false
	}
	return true
}
