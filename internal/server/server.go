// Package server serves the classification form and the JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/echelon/internal/model"
	"github.com/ppiankov/echelon/internal/pipeline"
	"github.com/ppiankov/echelon/internal/usage"
	"github.com/ppiankov/echelon/internal/worker"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server is the web front end over a Pipeline
type Server struct {
	pipeline *pipeline.Pipeline
	daily    *usage.Limiter // Site-wide submissions per day
	session  *usage.Limiter // Submissions per session per day
	clients  *worker.Limiter
	config   model.ServerConfig
	logger   *zap.Logger
	router   *gin.Engine
	started  time.Time
}

// New wires the router. store holds the usage counters; the caller closes it.
func New(p *pipeline.Pipeline, store usage.Store, cfg *model.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Usage.Timezone != "" {
		l, err := time.LoadLocation(cfg.Usage.Timezone)
		if err != nil {
			return nil, fmt.Errorf("usage timezone: %w", err)
		}
		loc = l
	}

	s := &Server{
		pipeline: p,
		daily:    usage.NewLimiter(store, usage.ScopeDaily, cfg.Usage.DailyLimit, usage.WithLocation(loc)),
		session:  usage.NewLimiter(store, usage.ScopeSession, cfg.Usage.SessionLimit, usage.WithLocation(loc)),
		clients:  worker.NewLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst),
		config:   cfg.Server,
		logger:   logger,
		started:  time.Now(),
	}
	if s.config.SessionCookie == "" {
		s.config.SessionCookie = "echelon_session"
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), s.rateLimit(), s.sessionCookie())
	router.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))

	router.GET("/", s.getForm)
	router.POST("/", s.postForm)
	router.GET("/healthz", s.healthz)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/classify", s.classify)
		v1.GET("/laws", s.laws)
		v1.GET("/rules", s.rules)
		v1.GET("/usage", s.usage)
	}

	return router
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
