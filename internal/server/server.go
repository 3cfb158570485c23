// Package server wires storage, services, handlers and middleware into an
// HTTP server and runs it with graceful shutdown.
//
// Routes:
//
//	GET   /health
//	POST  /auth/login                 (rate limited per client IP)
//	POST  /auth/logout
//	GET   /auth/github/login          (when GitHub sign-in is configured)
//	GET   /auth/github/callback
//	GET   /api/me                     (requires a session)
//	GET   /api/{ownerID}/lists
//	POST  /api/{ownerID}/lists
//	GET   /api/{ownerID}/lists/{slug}
//	PATCH /api/{ownerID}/lists/{slug}
//	GET   /api/{ownerID}/lists/{slug}/items
//	POST  /api/{ownerID}/lists/{slug}/items
//	GET   /api/{ownerID}/lists/{slug}/items/{itemID}
//	PATCH /api/{ownerID}/lists/{slug}/items/{itemID}
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

	"github.com/sakif/esther/internal/auth"
	"github.com/sakif/esther/internal/config"
	"github.com/sakif/esther/internal/handler"
	"github.com/sakif/esther/internal/middleware"
	sqliteRepo "github.com/sakif/esther/internal/repository/sqlite"
	"github.com/sakif/esther/internal/service"
)

// Server owns the router and the database connection, which it closes on
// shutdown. Background work started by middleware runs until then.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	cancel context.CancelFunc
}

// New opens the database and builds every route.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		cancel: cancel,
	}

	if err := s.setupRoutes(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// DB returns the database the server runs on.
func (s *Server) DB() *sqliteRepo.DB {
	return s.db
}

// Close stops background work and releases the database.
func (s *Server) Close() error {
	s.cancel()
	return s.db.Close()
}

// setupRoutes applies the global middleware (request ID, real IP, request
// logging, panic recovery, in that order) and registers the routes.
// Middleware background work stops when ctx is cancelled.
func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	todoService := service.NewTodoService(s.db, s.db, s.db, s.config.Location, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, tokens, s.config.IsProduction(), s.logger)
	todoHandler := handler.NewTodoHandler(todoService, s.logger)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(ctx, s.config.LoginRate, s.config.LoginBurst)).
			Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)

		r.Route("/{ownerID}/lists", func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Get("/", todoHandler.HandleLists)
			r.Post("/", todoHandler.HandleCreateList)
			r.Get("/{slug}", todoHandler.HandleGetList)
			r.Patch("/{slug}", todoHandler.HandlePatchList)
			r.Get("/{slug}/items", todoHandler.HandleItems)
			r.Post("/{slug}/items", todoHandler.HandleCreateItem)
			r.Get("/{slug}/items/{itemID}", todoHandler.HandleGetItem)
			r.Patch("/{slug}/items/{itemID}", todoHandler.HandlePatchItem)
		})
	})

	return nil
}

// Start serves HTTP until SIGINT or SIGTERM, then stops accepting
// connections, waits up to 30 seconds for in-flight requests and closes
// the server.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         ":" + s.config.Port,
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
			slog.String("port", s.config.Port),
			slog.String("url", "http://localhost:"+s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("env", s.config.Env),
			slog.Bool("github", s.config.GitHubEnabled()),
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
