package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/config"
)

// Routes регистрирует конечные маршруты в роутере приложения
type Routes interface {
	RegisterRoutes(router chi.Router)
}

type Middleware func(http.Handler) http.Handler

type Server struct {
	server *http.Server
	logger zerolog.Logger
	router *chi.Mux
}

// New chi запрещает Use после регистрации маршрутов, поэтому middleware
// навешиваются на корневой роутер до монтирования приложения.
func New(cfg config.ServerConfig, routes Routes, logger zerolog.Logger, mws ...Middleware) *Server {
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(middleware.StripSlashes)
	root.Use(middleware.CleanPath)
	root.Use(middleware.GetHead)
	root.Use(middleware.Compress(5))

	for _, mw := range mws {
		if mw != nil {
			root.Use(mw)
		}
	}

	app := chi.NewRouter()
	routes.RegisterRoutes(app)
	root.Mount("/", app)

	return &Server{
		logger: logger,
		router: root,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      root,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start блокируется до Shutdown; штатная остановка не считается ошибкой
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("Starting server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve то же, что Start, но на готовом listener
func (s *Server) Serve(l net.Listener) error {
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server")
	return s.server.Shutdown(ctx)
}
