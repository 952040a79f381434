package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"spinescan/internal/extraction"
	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/pipeline"
)

// Service is the pipeline surface the API exposes.
type Service interface {
	Resolve(ctx context.Context, lines []string) (metadata.ResultSet, error)
	ResolveText(ctx context.Context, raw string) (metadata.ResultSet, error)
	Scan(ctx context.Context, img extraction.Image) (pipeline.ScanResult, error)
	Providers() []pipeline.ProviderSettings
	Engines() []string
}

// Option configures a Server.
type Option func(*Server)

// WithBind sets the listen address.
func WithBind(bind string) Option {
	return func(s *Server) {
		s.bind = strings.TrimSpace(bind)
	}
}

// WithToken requires a bearer token on /api routes. Empty disables auth.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = strings.TrimSpace(token)
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server is the HTTP front end for a Service.
type Server struct {
	bind   string
	token  string
	svc    Service
	logger *slog.Logger
	router *gin.Engine

	listener net.Listener
	server   *http.Server
}

// New builds the router. Call Run to start listening.
func New(svc Service, opts ...Option) *Server {
	s := &Server{svc: svc}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "api-server")

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(s.logger))
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api", bearerAuth(s.token))
	api.GET("/providers", s.handleProviders)
	api.POST("/resolve", s.handleResolve)
	api.POST("/scan", s.handleScan)
	s.router = router

	s.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound address once Run has started listening.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Run listens on the bind address and serves until ctx ends, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address required")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.token != ""),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		s.logger.Info("api server stopped")
		return nil
	}
}
