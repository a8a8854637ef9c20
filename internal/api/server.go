// Package api is the HTTP surface over the scoring core: routing, request
// validation, and response shaping. It carries no scoring logic of its own.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cardiometrix/riskd/internal/config"
	"github.com/cardiometrix/riskd/internal/ml"
)

type Server struct {
	config     *config.Config
	logger     *zap.Logger
	manager    *ml.Manager
	router     chi.Router
	httpServer *http.Server
	metrics    *Metrics
	limiter    *RateLimiter
}

func NewServer(cfg *config.Config, logger *zap.Logger, manager *ml.Manager) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger,
		manager: manager,
		metrics: NewMetrics(),
		limiter: NewRateLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst),
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.rateLimit)

	r.Get("/health", s.handleHealth)
	r.Post("/score", s.handleScore)
	r.Post("/score/batch", s.handleScoreBatch)
	r.Post("/train", s.handleTrain)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router = r
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // training requests fit and persist synchronously
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Router exposes the handler tree for in-process tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("server listening", zap.Int("port", s.config.Server.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
