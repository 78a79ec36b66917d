package main

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/restriden/simpli-immo-sub002/internal/infra/http/handlers"
	"github.com/restriden/simpli-immo-sub002/internal/infra/http/middleware"
)

type routerDeps struct {
	Contact  *handlers.ContactHandler
	Media    *handlers.MediaHandler
	Workflow *handlers.WorkflowHandler
	Extract  *handlers.ExtractHandler
	Health   *handlers.HealthHandler
}

func newRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
	}))

	r.Post("/create-contact", deps.Contact.Handle)
	r.Options("/create-contact", handlers.Options)

	r.Post("/send-media", deps.Media.Handle)
	r.Options("/send-media", handlers.Options)

	// Automation platforms probe this hook with GET/HEAD and empty bodies,
	// so every method lands on the same handler.
	r.HandleFunc("/workflow-triggered", deps.Workflow.Handle)

	r.Post("/extract-document", deps.Extract.Handle)
	r.Options("/extract-document", handlers.Options)

	r.Get("/health", deps.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
