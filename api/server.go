/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

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
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/accounts/*    Vault account management
  /api/balances      Balance report
  /api/transfers/*   Money movement between vaults
  /api/invoices/*    Purchase and sales invoices
  /api/expenses/*    Expenses and partial payments
  /api/warehouse/*   Purchase/sale commits and valuation
  /api/products/*    Per-product stock cards
  /api/audit         Audit trail
  /api/reset         Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Account routes
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Put("/{id}/opening-balance", h.SetOpeningBalance)
			r.Post("/{id}/deactivate", h.DeactivateAccount)
			r.Get("/{id}/transfers", h.ListAccountTransfers)
		})

		// Balance report
		r.Get("/balances", h.GetBalances)

		// Transfer routes
		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", h.ListTransfers)
			r.Post("/", h.CreateTransfer)
		})

		// Invoice routes
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/{id}", h.GetInvoice)
			r.Post("/{id}/payments", h.PayInvoice)
		})

		// Expense routes
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.CreateExpense)
			r.Get("/{id}", h.GetExpense)
			r.Post("/{id}/payments", h.PayExpense)
		})

		// Warehouse routes
		r.Route("/warehouse", func(r chi.Router) {
			r.Post("/purchases", h.CommitPurchase)
			r.Post("/sales", h.CommitSale)
			r.Get("/valuation", h.GetValuation)
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/{id}/stock-card", h.GetStockCard)
			r.Get("/{id}/movements", h.ListProductMovements)
			r.Post("/{id}/adjustments", h.CreateAdjustment)
		})

		// Audit routes
		r.Get("/audit", h.QueryAudit)

		// Reset route (dev only)
		r.Post("/reset", h.ResetDatabase)
	})

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
