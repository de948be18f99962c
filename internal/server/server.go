// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes batch resolution over HTTP.
//
//	POST /v1/resolve  resolve a sources block
//	GET  /healthz     liveness
//	GET  /metrics     Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/pkg/types"
)

const (
	defaultAddr           = ":8080"
	defaultRequestTimeout = 60 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Runner resolves one sources block.
type Runner interface {
	Run(ctx context.Context, sources string, ex types.Exclusion) types.Report
}

// ResolveRequest is the body of POST /v1/resolve.
type ResolveRequest struct {
	Sources        string   `json:"sources" binding:"required"`
	OwnDomain      string   `json:"own_domain"`
	Competitors    []string `json:"competitors"`
	ForbiddenHosts []string `json:"forbidden_hosts"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Server serves the HTTP API.
type Server struct {
	runner Runner
	cfg    types.ServerConfig
	logger *zap.Logger
}

// New creates a Server.
func New(runner Runner, cfg types.ServerConfig, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{runner: runner, cfg: cfg, logger: logger}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/resolve", s.handleResolve)
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("invalid resolve request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if strings.TrimSpace(req.Sources) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sources is empty", Code: "EMPTY_SOURCES"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	report := s.runner.Run(ctx, req.Sources, types.Exclusion{
		OwnDomain:      req.OwnDomain,
		Competitors:    req.Competitors,
		ForbiddenHosts: req.ForbiddenHosts,
	})
	c.JSON(http.StatusOK, report)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
