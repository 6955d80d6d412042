package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VladKvetkin/mygameserver/internal/config"
	"github.com/VladKvetkin/mygameserver/internal/handler"
	"github.com/VladKvetkin/mygameserver/internal/payment"
	"github.com/VladKvetkin/mygameserver/internal/ratelimiter"
	"github.com/VladKvetkin/mygameserver/internal/storage"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

type Server struct {
	config  config.Config
	mux     chi.Router
	server  *http.Server
	limiter *ratelimiter.Limiter
}

func NewServer(config config.Config, storage storage.Storage, manager *payment.Manager) *Server {
	mux := chi.NewMux()

	s := &Server{
		config:  config,
		mux:     mux,
		limiter: ratelimiter.NewLimiter(),
		server: &http.Server{
			Addr:              config.Server.Addr(),
			Handler:           mux,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}

	s.setupRoutes(handler.NewHandler(config, storage, manager))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	zap.L().Info("starting server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("error starting server: %w", err)
	}

	return nil
}

func (s *Server) Stop() error {
	zap.L().Info("stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error stopping server: %w", err)
	}

	return nil
}
