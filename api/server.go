/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

SECURITY NOTE:
  No authentication middleware. Authentication and role guarding are owned
  by the surrounding admin application, not this service.

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
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Instructor routes
		r.Route("/instructors", func(r chi.Router) {
			r.Get("/", h.ListInstructors)
			r.Post("/", h.CreateInstructor)
			r.Get("/{id}", h.GetInstructor)
			r.Get("/{id}/activities", h.ListInstructorActivities)
			r.Get("/{id}/settlements/daily", h.GetDailySettlement)
			r.Get("/{id}/settlements/monthly", h.GetMonthlySettlement)
		})

		// Institution routes
		r.Route("/institutions", func(r chi.Router) {
			r.Get("/", h.ListInstitutions)
			r.Post("/", h.CreateInstitution)
			r.Get("/{id}", h.GetInstitution)
		})

		// Activity routes
		r.Route("/activities", func(r chi.Router) {
			r.Post("/", h.CreateActivity)
		})

		// Configuration routes
		r.Route("/distances", func(r chi.Router) {
			r.Get("/", h.GetDistances)
			r.Put("/", h.ReplaceDistances)
		})
		r.Route("/fee-schedule", func(r chi.Router) {
			r.Get("/", h.GetFeeSchedule)
			r.Put("/", h.PutFeeSchedule)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"service":"dispatch-settlement-engine","api":"/api"}`))
	})

	return r
}
