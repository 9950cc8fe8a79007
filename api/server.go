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
  /api/periods/*        Pay period resolution and navigation
  /api/employees/*      Employee profiles
  /api/entries          Time entries
  /api/tasks            Task directory
  /api/policy           Firm sick leave policy
  /api/payroll/runs/*   Payroll runs, approval, export
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. The approver identity comes
  from the X-Actor header and is recorded in the audit trail verbatim.

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
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Period routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/resolve", h.ResolvePeriod)
			r.Get("/navigate", h.NavigatePeriod)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.SaveEmployee)
		})

		// Timesheet routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.SaveTask)
		})

		// Policy routes
		r.Route("/policy", func(r chi.Router) {
			r.Get("/", h.GetPolicy)
			r.Put("/", h.PutPolicy)
		})

		// Payroll run routes
		r.Route("/payroll/runs", func(r chi.Router) {
			r.Post("/", h.CreateRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetRun)
				r.Put("/sick-override/{employeeID}", h.SetSickOverride)
				r.Post("/approve", h.ApproveRun)
				r.Post("/lock", h.LockRun)
				r.Post("/unlock", h.UnlockRun)
				r.Get("/export.csv", h.ExportCSV)
				r.Get("/payslips/{employeeID}", h.Payslip)
				r.Get("/audit", h.RunAudit)
			})
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	// Minimal landing page listing the API surface.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Payroll Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Payroll Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li><a href="/api/tasks">/api/tasks</a> - Task directory</li>
<li><a href="/api/policy">/api/policy</a> - Sick leave policy</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
