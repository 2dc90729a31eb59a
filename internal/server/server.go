// Package server is the composition root: it opens the configured store,
// builds the service and handlers on top of it, mounts the routes and runs
// the HTTP server until it is told to stop.
//
// DEPENDENCY FLOW:
//
//	config.Config → repository.Store (memory | sqlite | neo4j)
//	              → service.SocialService
//	              → handler.UserHandler / ConnectionHandler / HealthHandler
//
// Handlers only see the service facade and the service only sees the
// repository interfaces, so the backend is swapped by configuration alone.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/social-connections/internal/config"
	"github.com/sakif/social-connections/internal/handler"
	"github.com/sakif/social-connections/internal/metrics"
	"github.com/sakif/social-connections/internal/middleware"
	"github.com/sakif/social-connections/internal/repository"
	"github.com/sakif/social-connections/internal/repository/memory"
	"github.com/sakif/social-connections/internal/repository/neo4jstore"
	sqliteRepo "github.com/sakif/social-connections/internal/repository/sqlite"
	"github.com/sakif/social-connections/internal/service"
)

// Server owns the router and the store. The store is closed when Start
// returns, or by Close if Start is never called.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	store   repository.Store
	metrics *metrics.Collector
}

// New opens the store named by cfg.Store.Driver and wires every route.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, logger, store), nil
}

// NewWithStore wires the server around an already open store. The server
// takes ownership of store.
func NewWithStore(cfg config.Config, logger *slog.Logger, store repository.Store) *Server {
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		metrics: collector,
	}
	s.setupRoutes()
	return s
}

func openStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil

	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			dir := filepath.Dir(cfg.SQLitePath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil

	case config.DriverNeo4j:
		st, err := neo4jstore.New(ctx, neo4jstore.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("opening neo4j: %w", err)
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	POST   /api/users                                  → register a user
//	GET    /api/users/{userStrID}/friends              → direct friends
//	GET    /api/users/{userStrID}/friends-of-friends   → two hops away
//	POST   /api/connections                            → connect two users
//	DELETE /api/connections                            → disconnect two users
//	GET    /api/connections/degree                     → degree of separation
//	GET    /health                                     → store liveness
//	GET    /metrics                                    → Prometheus scrape
//
// MIDDLEWARE ORDER:
// RequestID runs first so the logger can print it. Recoverer sits inside
// Logger and Metrics, so a recovered panic is still logged and counted as
// the 500 it becomes.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(chimiddleware.Recoverer)

	social := service.NewSocialService(s.store, s.store, s.logger, s.metrics)
	users := handler.NewUserHandler(social, s.logger)
	conns := handler.NewConnectionHandler(social, s.logger)
	health := handler.NewHealthHandler(s.store, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.HandleCreate)
			r.Get("/{userStrID}/friends", users.HandleFriends)
			r.Get("/{userStrID}/friends-of-friends", users.HandleFriendsOfFriends)
		})
		r.Route("/connections", func(r chi.Router) {
			r.Post("/", conns.HandleCreate)
			r.Delete("/", conns.HandleRemove)
			r.Get("/degree", conns.HandleDegree)
		})
	})

	s.router.Get("/health", health.HandleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
}

// Handler returns the fully wired router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves HTTP until SIGINT or SIGTERM, then drains in-flight requests
// for up to ShutdownTimeout and closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("store", s.config.Store.Driver),
			slog.Bool("metrics", s.metrics != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
