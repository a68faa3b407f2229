package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/middleware"
)

// NewRouter constructs the dev server's HTTP handler: request logging,
// bearer-token auth on everything but /api/login, and the resource routes
// with their endpoint-specific envelopes.
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.BearerAuth(h.Secret))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Get("/user", h.CurrentUser)
		r.Put("/user", h.UpdateProfile)

		r.Get("/activities", h.ListActivities)
		r.Post("/activities", h.CreateActivity)
		r.Get("/activities/{id}", h.GetActivity)

		r.Get("/groups", h.ListGroups)

		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{id}", h.GetProject)
		r.Put("/projects/{id}", h.UpdateProject)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Put("/tasks/{id}", h.UpdateTask)

		r.Get("/repository", h.ListRepository)
		r.Get("/repository/{id}", h.GetRepositoryItem)
	})

	return r
}
