package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/parley-chat/parley/internal/api/middleware"
	"github.com/parley-chat/parley/internal/chat"
	"github.com/parley-chat/parley/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, chatSrv *chat.Server) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins; the chat UI may be served from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)

	// Real-time surface
	r.Get("/ws", chatSrv.HandleWS)

	// Request/response surface
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.Stats)

		r.Get("/rooms", h.ListRooms)
		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms/{roomID}", h.GetRoom)
		r.Post("/rooms/{roomID}/join", h.JoinRoom)
		r.Get("/rooms/{roomID}/messages", h.ListMessages)
		r.Post("/rooms/{roomID}/messages", h.PostMessage)

		// Legacy endpoints pinned to the general room
		r.Get("/messages", h.ListGeneralMessages)
		r.Post("/messages", h.PostGeneralMessage)
	})

	return r
}
