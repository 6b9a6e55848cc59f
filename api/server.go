/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web client

SECURITY NOTE:
  No authentication middleware here. Session handling lives in front of this
  service; the investor ID in the path is trusted input from that layer.

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
		// Wallet routes
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", h.Deposit)
			r.Get("/{id}", h.GetWallet)
			r.Post("/{id}/withdrawals", h.Withdraw)
			r.Post("/{id}/investments", h.Invest)
		})

		// Investment routes
		r.Route("/investments", func(r chi.Router) {
			r.Get("/{id}", h.GetInvestment)
			r.Get("/{id}/payments", h.ListPayments)
		})

		// Investor routes (post-login refresh + explicit reconciliation)
		r.Route("/investors", func(r chi.Router) {
			r.Get("/{id}/wallets", h.ListWallets)
			r.Post("/{id}/reconcile", h.Reconcile)
		})

		// Miner catalog routes
		r.Route("/miners", func(r chi.Router) {
			r.Get("/", h.ListMiners)
			r.Post("/", h.CreateMiner)
			r.Get("/{name}", h.GetMiner)
		})
	})

	return r
}
