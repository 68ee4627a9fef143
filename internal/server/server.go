// Package server wires the application together: it owns the database, runs
// the one-time OIDC discovery, assembles the router, and handles graceful
// shutdown. All dependency injection happens here — handlers, services and
// repositories never construct each other.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/codevault/internal/auth"
	"github.com/sakif/codevault/internal/handler"
	"github.com/sakif/codevault/internal/middleware"
	sqliteRepo "github.com/sakif/codevault/internal/repository/sqlite"
	"github.com/sakif/codevault/internal/service"
)

// Version is reported by the instance metadata endpoint.
const Version = "0.1.0"

// Config is the immutable configuration for one server process, assembled
// once in main and passed by value. There is no other configuration state.
type Config struct {
	Port         int
	DBPath       string
	JWTSecret    string
	ClientID     string
	ClientSecret string
	IssuerURL    string
	RedirectURI  string
}

// Server owns the HTTP router and the resources behind it.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, discovers the identity provider's endpoints, and
// wires all routes. Discovery failure is fatal: a process that cannot reach
// its identity provider must not start serving.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger.Info("discovering identity provider configuration",
		slog.String("issuer", cfg.IssuerURL),
	)
	provider, err := auth.Discover(ctx, cfg.IssuerURL, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("discovering identity provider: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(provider); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes assembles middleware and routes.
//
// Two route groups: the open group (instance metadata, OAuth callback,
// metrics) and the authenticated group (everything touching user data),
// which sits behind auth.RequireAuth.
func (s *Server) setupRoutes(provider *auth.Provider) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(registry))

	accountRepo := s.db.Accounts()
	codeRepo := s.db.Codes()

	accountService := service.NewAccountService(accountRepo, s.logger)
	codeService := service.NewCodeService(codeRepo, s.logger)

	authHandler := handler.NewAuthHandler(
		provider, tokens, accountService, s.config.RedirectURI, Version, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, codeService, s.logger)
	codeHandler := handler.NewCodeHandler(codeService, s.logger)

	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.router.Route("/v1", func(r chi.Router) {
		// Unauthenticated: login initiation metadata and the OAuth callback.
		r.Get("/", authHandler.HandleInstanceMetadata)
		r.Get("/oauth", authHandler.HandleOAuthCallback)

		// Everything below requires a resolvable session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, accountRepo, s.logger))

			r.Get("/code", codeHandler.HandleList)
			r.Put("/code", codeHandler.HandleAdd)
			r.Patch("/code/{id}", codeHandler.HandleEdit)
			r.Delete("/code/{id}", codeHandler.HandleDelete)

			r.Delete("/user", accountHandler.HandleDelete)
			r.Get("/user/checksum", accountHandler.HandleChecksum)
		})
	})

	return nil
}

// Router exposes the assembled handler, used by integration tests to drive
// the server through httptest without opening a socket.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully: stop
// accepting, drain in-flight requests (30s budget), close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
