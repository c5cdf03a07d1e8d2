// internal/server/server.go

// Package server exposes the screening pipeline over HTTP: multipart
// upload endpoints for the two intake flows, a result lookup page and
// operational endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cv-screening/internal/common/config"
	"cv-screening/internal/common/logger"
	"cv-screening/internal/pipeline"
	"cv-screening/internal/pipeline/evaluate"
)

// PipelineRunner abstracts the pipeline for handler tests.
type PipelineRunner interface {
	RunCandidacy(ctx context.Context, req *pipeline.CandidacyRequest) (*pipeline.CandidacyResult, error)
	RunAbsence(ctx context.Context, req *pipeline.AbsenceRequest) (*pipeline.AbsenceResult, error)
}

// ResultGetter reads cached evaluation results.
type ResultGetter interface {
	Get(ctx context.Context, submissionID string) (*evaluate.EvaluationResult, error)
}

type Server struct {
	cfg      *config.Config
	pipeline PipelineRunner
	results  ResultGetter
	logger   logger.Logger
	engine   *gin.Engine
}

func New(cfg *config.Config, p PipelineRunner, results ResultGetter, log logger.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		pipeline: p,
		results:  results,
		logger:   log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/candidatures", s.handleCandidacy)
		api.POST("/absences", s.handleAbsence)
		api.GET("/results/:id", s.handleResult)
	}

	return r
}

// Handler returns the underlying http.Handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"address": s.cfg.Server.Address,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server", nil)
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request handled", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}
