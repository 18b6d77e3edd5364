package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/api"
	"github.com/pageza/chefai/backend/internal/middleware"
	"github.com/pageza/chefai/backend/internal/router"
	"github.com/pageza/chefai/backend/internal/service"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	http    *http.Server
	logger  *zap.Logger
	session *service.GenerationSession

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server serving the recipes in store through generator
func New(cfg *config.Config, store *Store, generator service.RecipeGenerator, logger *zap.Logger) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	deps := api.Dependencies{
		DB:          store.DB,
		Recipes:     store.Recipes,
		Generator:   generator,
		Session:     service.NewGenerationSession(generator),
		BaseContext: ctx,
		Logger:      logger,
	}

	if cfg.JWTSecret != "" {
		tokens, err := service.NewTokenService(cfg.JWTSecret)
		if err != nil {
			cancel()
			return nil, err
		}
		deps.Auth = tokens
	} else {
		logger.Warn("JWT_SECRET not set, write routes are open")
	}

	if store.Redis != nil && cfg.RateLimitPerHour > 0 {
		deps.RateLimiter = middleware.NewGenerationRateLimiter(store.Redis, cfg.RateLimitPerHour, logger)
	}

	s := &Server{
		cfg:     cfg,
		router:  router.SetupRouter(deps, cfg.CORSOrigins),
		logger:  logger,
		session: deps.Session,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the server so open event streams let Shutdown finish
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	return s, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called. It returns nil after a graceful stop.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop cancels background generations and open event streams and gracefully stops
// the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}
