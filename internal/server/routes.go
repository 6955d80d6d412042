package server

import (
	"compress/gzip"
	"net/http"

	"github.com/VladKvetkin/mygameserver/internal/handler"
	"github.com/VladKvetkin/mygameserver/internal/middleware"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes(handler *handler.Handler) {
	s.setupMiddleware()

	var (
		limits = s.config.RateLimit
		admin  = middleware.AdminGate(s.config.Security)
	)

	s.mux.Route("/", func(r chi.Router) {
		r.Get("/", http.HandlerFunc(handler.Index))
		r.Get("/healthz", http.HandlerFunc(handler.Health))

		r.Handle("/mygame/*", http.StripPrefix("/mygame/", http.FileServer(http.Dir(s.config.Game.AssetsDir))))

		r.Route("/api", func(r chi.Router) {
			r.Post("/login", http.HandlerFunc(handler.Login))

			r.With(middleware.PlayerAuth(s.config.Security.SessionSecret)).
				Post("/battle/start", http.HandlerFunc(handler.StartBattle))
		})

		r.Route("/pay", func(r chi.Router) {
			r.With(s.rateLimit("pay_submit", limits.PaySubmitLimit)).
				Post("/submit", http.HandlerFunc(handler.SubmitPayment))

			r.Group(func(r chi.Router) {
				r.Use(s.rateLimit("pay_status", limits.PayStatusLimit))

				r.Get("/status", http.HandlerFunc(handler.PaymentStatus))
				r.Get("/qr", http.HandlerFunc(handler.PaymentQR))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/pay", func(r chi.Router) {
				r.Use(s.rateLimit("admin", limits.AdminLimit), admin)

				r.Post("/review", http.HandlerFunc(handler.ReviewPayment))
				r.Get("/list", http.HandlerFunc(handler.ListPayments))
			})

			r.With(s.rateLimit("grant", limits.GrantLimit), admin).
				Post("/grant-item", http.HandlerFunc(handler.GrantItem))
		})
	})
}

func (s *Server) setupMiddleware() {
	s.mux.Use(chiMiddleware.RequestID)

	// Rate limits key on RemoteAddr, so forwarding headers are honoured only
	// when a trusted proxy sets them.
	if s.config.Server.TrustForwarded {
		s.mux.Use(chiMiddleware.RealIP)
	}

	s.mux.Use(
		middleware.Logger,
		chiMiddleware.Recoverer,
		middleware.DecompressBodyReader,
		middleware.BodyLimit(s.config.MaxBodyBytes),
		chiMiddleware.Compress(gzip.BestCompression, "application/json", "text/html", "text/plain"),
	)
}

func (s *Server) rateLimit(name string, limit int) func(http.Handler) http.Handler {
	return middleware.RateLimit(s.limiter, name, limit, s.config.RateLimit.Window)
}
