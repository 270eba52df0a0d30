// Route registration and go-chi router setup.
// Public route: /api/v1/health. Everything else under /api/v1/* requires a
// Bearer JWT.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/plantcopilot/plantcopilot/internal/api/handlers"
	apmiddleware "github.com/plantcopilot/plantcopilot/internal/api/middleware"
	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
)

// Deps carries the wired services the API layer exposes.
type Deps struct {
	Assistant         handlers.AssistantService
	Router            *llm.Router
	Store             handlers.DocumentStore
	Health            map[string]handlers.HealthChecker
	DB                handlers.Pinger
	DefaultCollection string
}

// NewRouter creates and configures a chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(apmiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apmiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	assistantHandler := handlers.NewAssistantHandler(deps.Assistant)
	knowledgeHandler := handlers.NewKnowledgeHandler(deps.Router, deps.Store, deps.DefaultCollection)
	healthHandler := handlers.NewHealthHandler(deps.Health, deps.DB)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check — unauthenticated, used by load balancers and probes
		r.Get("/health", healthHandler.Health)

		// All other /api/v1/* routes require a valid Bearer JWT.
		r.Group(func(r chi.Router) {
			r.Use(apmiddleware.AuthMiddleware)

			r.Post("/assistant/chat", assistantHandler.Chat)        // POST /api/v1/assistant/chat
			r.Post("/knowledge/documents", knowledgeHandler.Ingest) // POST /api/v1/knowledge/documents
		})
	})

	return r
}
