// Package server wires the dependency graph and runs the HTTP server.
// It is the composition root: everything is constructed in New, and main
// stays minimal.
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
	"github.com/go-chi/cors"

	"github.com/tahsin/matricare/internal/assistant/gemini"
	"github.com/tahsin/matricare/internal/auth"
	"github.com/tahsin/matricare/internal/config"
	"github.com/tahsin/matricare/internal/handler"
	"github.com/tahsin/matricare/internal/middleware"
	sqliteRepo "github.com/tahsin/matricare/internal/repository/sqlite"
	"github.com/tahsin/matricare/internal/service"
)

// Server owns the router and the resources the handlers depend on. The
// database connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
// config → db/token/password/google/gemini → services → handlers → routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	google, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating google verifier: %w", err)
	}

	chatClient, err := gemini.New(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	authService := service.NewAuthService(db, tokens, auth.NewPasswordService(), google, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	chatHandler := handler.NewChatHandler(chatClient, logger)

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(authHandler, chatHandler, tokens)

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// Middleware order: request ID first so everything downstream can correlate,
// then real-IP, panic recovery, CORS, and finally our request logger.
func (s *Server) setupRoutes(authHandler *handler.AuthHandler, chatHandler *handler.ChatHandler, tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.AllowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	s.router.Use(middleware.Logger(s.logger))

	// Liveness probe, same body the frontend has always checked for.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Backend running successfully"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/google", authHandler.HandleGoogle)
			r.Get("/verify", authHandler.HandleVerify)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
		})

		r.Post("/ai/chat", chatHandler.HandleChat)
	})
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // chat requests wait on the upstream model
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
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

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
