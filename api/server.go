/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/ledgers/*   Ledger, item, summary, and reporting operations

SECURITY NOTE:
  No authentication middleware. Auth and session handling are external
  collaborators of this engine.

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
		r.Route("/ledgers", func(r chi.Router) {
			r.Get("/", h.ListLedgers)
			r.Post("/", h.CreateLedger)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetLedger)
				r.Put("/budget", h.UpdateBudget)
				r.Get("/summary", h.GetSummary)
				r.Get("/categories", h.CategoryTotals)
				r.Get("/months", h.MonthlyTotals)

				r.Route("/items", func(r chi.Router) {
					r.Get("/", h.QueryItems)
					r.Post("/", h.InsertItem)
					r.Get("/partition", h.PartitionItems)
					r.Put("/{itemID}", h.ReplaceItem)
					r.Delete("/{itemID}", h.RemoveItem)
				})
			})
		})
	})

	return r
}
