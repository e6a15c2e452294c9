/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the registrar frontend

SECURITY NOTE:
  Authentication lives in the host application in front of this API; the
  ledger core treats credentials as an external concern.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)

			r.Route("/{student}/{term}", func(r chi.Router) {
				r.Get("/", h.GetStatement)

				r.Post("/fees", h.AddFee)
				r.Delete("/fees/{code}", h.RemoveFee)
				r.Post("/scholarship", h.ApplyScholarship)

				r.Post("/payments", h.RecordPayment)
				r.Post("/refresh", h.RefreshStatuses)

				r.Get("/eligibility", h.GetEligibility)
				r.Get("/eligibility/{period}", h.GetEligibilityPeriod)
			})
		})
	})

	return r
}
