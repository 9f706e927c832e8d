// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/auth"
	"github.com/vyrodovalexey/shopcart/internal/catalog"
	"github.com/vyrodovalexey/shopcart/internal/config"
	"github.com/vyrodovalexey/shopcart/internal/handler"
	"github.com/vyrodovalexey/shopcart/internal/middleware"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer    *http.Server
	router        *mux.Router
	handler       http.Handler
	config        *config.Config
	logger        *zap.Logger
	registry      *prometheus.Registry
	httpMetrics   *middleware.HTTPMetrics
	wsHandler     *handler.WebSocketHandler
	stopObserving func()
}

// New creates a Server serving cat and cart. A nil authenticator disables
// authentication.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	cat catalog.Catalog,
	cart store.Cart,
	authenticator auth.Authenticator,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		config:        cfg,
		logger:        logger,
		stopObserving: func() {},
	}

	if cfg.MetricsEnabled {
		s.setupMetrics(cart)
	}

	s.setupMiddleware(authenticator)
	s.setupRoutes(cat, cart)
	s.setupHTTPServer()

	return s
}

// setupMetrics creates the server registry with runtime, HTTP and cart
// collectors and subscribes the cart collectors.
func (s *Server) setupMetrics(cart store.Cart) {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.httpMetrics = middleware.NewHTTPMetrics(s.registry)

	cartMetrics := store.NewCartMetrics(s.registry)
	cartMetrics.SetContents(cart.Items())
	s.stopObserving = cart.Subscribe(cartMetrics.Observe)
}

// setupMiddleware installs the route-aware middleware on the router and
// builds the outer chain that also covers preflight and unmatched requests.
func (s *Server) setupMiddleware(authenticator auth.Authenticator) {
	allowedOrigins := []string{"*"}
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		"Authorization",
		auth.APIKeyHeader,
		middleware.RequestIDHeader,
	}

	if s.httpMetrics != nil {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics(s.httpMetrics)))
	}

	if authenticator != nil {
		s.logger.Info("authentication enabled", zap.String("method", string(authenticator.Method())))
		s.router.Use(mux.MiddlewareFunc(middleware.Auth(authenticator, s.logger)))
	}

	// First applied = outermost.
	s.handler = middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(allowedOrigins, allowedMethods, allowedHeaders),
	)(s.router)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(cat catalog.Catalog, cart store.Cart) {
	restHandler := handler.NewRESTHandler(cat, cart, s.logger)
	restHandler.RegisterRoutes(s.router)

	handler.NewCartHandler(cat, cart, s.logger).RegisterRoutes(s.router)

	s.wsHandler = handler.NewWebSocketHandler(cart, s.logger)
	s.wsHandler.RegisterRoutes(s.router)

	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	// Router middleware does not run for unmatched requests.
	var notFound http.Handler = http.HandlerFunc(restHandler.NotFound)
	if s.httpMetrics != nil {
		notFound = middleware.Metrics(s.httpMetrics)(notFound)
	}
	s.router.NotFoundHandler = notFound
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown closes WebSocket streams, detaches cart observers and gracefully
// shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}
	s.stopObserving()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
