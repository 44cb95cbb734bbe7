package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/taskhive/taskhive-api/internal/api/middleware"
	"github.com/taskhive/taskhive-api/internal/api/shared"
)

// routes builds the full HTTP route tree. Fixed-segment routes are mounted
// before their sibling /{id} patterns so "status", "priority" and friends are
// never captured as identifiers.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.authHandler.Register)
			r.Post("/login", app.authHandler.Login)
			r.Post("/refresh", app.authHandler.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(app.authMiddleware.Authenticate)
				r.Get("/profile", app.authHandler.Profile)
				r.Put("/profile", app.authHandler.UpdateProfile)
				r.Put("/change-password", app.authHandler.ChangePassword)
				r.Post("/logout", app.authHandler.Logout)
			})
		})

		// Relational tasks are a global collection with no ownership model.
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", app.taskHandler.List)
			r.Post("/", app.taskHandler.Create)
			r.Get("/status/{completed}", app.taskHandler.ByStatus)
			r.Get("/priority/{priority}", app.taskHandler.ByPriority)
			r.Get("/{id}", app.taskHandler.Get)
			r.Put("/{id}", app.taskHandler.Update)
			r.Delete("/{id}", app.taskHandler.Delete)
			r.Patch("/{id}/complete", app.taskHandler.Complete)
			r.Patch("/{id}/uncomplete", app.taskHandler.Uncomplete)
		})

		// Document tasks are owner-scoped; every route requires a bearer token.
		r.Route("/v2/tasks", func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)
			r.Get("/", app.docTaskHandler.List)
			r.Post("/", app.docTaskHandler.Create)
			r.Get("/stats", app.docTaskHandler.Stats)
			r.Get("/overdue", app.docTaskHandler.Overdue)
			r.Get("/status/{completed}", app.docTaskHandler.ByStatus)
			r.Get("/priority/{priority}", app.docTaskHandler.ByPriority)
			r.Get("/category/{category}", app.docTaskHandler.ByCategory)
			r.Get("/{id}", app.docTaskHandler.Get)
			r.Put("/{id}", app.docTaskHandler.Update)
			r.Delete("/{id}", app.docTaskHandler.Delete)
			r.Patch("/{id}/complete", app.docTaskHandler.Complete)
			r.Patch("/{id}/uncomplete", app.docTaskHandler.Uncomplete)
		})
	})

	return r
}

// handleHealth is a liveness probe. It reports process health only and does
// not touch the datastores.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithData(w, r, http.StatusOK, "Service healthy", map[string]string{
		"status": "ok",
	})
}
