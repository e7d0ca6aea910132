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
  1. Logger:    Request logging
  2. Recoverer: Panic recovery (500 instead of crash)
  3. RequestID: Unique ID per request for tracing
  4. CORS:      Cross-origin requests for frontend
  5. Tenant:    Requires X-Tenant-ID and puts it on the request context

TENANT BOUNDARY:
  Authorization is an external collaborator. The middleware only requires
  that an already-authorized tenant id is present; it performs no checks
  of its own.

ROUTE GROUPS:
  /api/weeks/*      Weekly tips, hours, payout, reconciliation
  /api/history      Historical aggregation
  /api/employees/*  Directory reads + minimal writes
  /api/seed         Demo dataset (dev only)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type contextKey string

const tenantKey contextKey = "tenant"

// TenantID returns the tenant id placed on the context by the middleware.
func TenantID(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey).(string)
	return id
}

// RequireTenant rejects requests without an X-Tenant-ID header.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := r.Header.Get("X-Tenant-ID")
		if tenant == "" {
			writeError(w, http.StatusBadRequest, "Missing X-Tenant-ID header", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey, tenant)))
	})
}

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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"},
		AllowCredentials: true,
	}))

	r.Get("/api/health", h.Health)

	// API routes (tenant-scoped)
	r.Route("/api", func(r chi.Router) {
		r.Use(RequireTenant)

		// Week routes: tips, hours, payout, reconciliation
		r.Route("/weeks/{week}", func(r chi.Router) {
			r.Get("/tips", h.GetWeekTips)
			r.Put("/tips", h.SaveWeekTips)
			r.Get("/hours", h.GetWeekHours)
			r.Put("/hours/{employeeID}", h.UpsertHours)
			r.Delete("/hours/{employeeID}", h.DeleteHours)
			r.Post("/payout", h.ComputePayout)
			r.Post("/reconcile", h.ReconcileHours)
		})

		// Historical aggregation
		r.Get("/history", h.GetHistory)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Post("/{id}/deactivate", h.DeactivateEmployee)
		})

		// Demo data
		r.Post("/seed", h.Seed)
	})

	return r
}
