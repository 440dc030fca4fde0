package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthTimeout bounds each dependency check of /health.
const healthTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		if s.metrics != nil {
			r.Handle("/metrics", s.metrics.Handler())
		}

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(limitBody(maxImportBodySize)).Post("/imports", s.handleImport)

			r.Group(func(r chi.Router) {
				r.Use(limitBody(maxRequestBodySize))

				r.Get("/catalog", s.handleCatalog)

				r.Route("/projects", func(r chi.Router) {
					r.Get("/", s.handleListProjects)
					r.Post("/", s.handleCreateProject)

					r.Route("/{projectID}", func(r chi.Router) {
						r.Use(s.projectMiddleware)

						r.Get("/", s.handleGetProject)
						r.Delete("/", s.handleDeleteProject)
						r.Get("/graph", s.handleGetGraph)
						r.Get("/export", s.handleExport)
						r.Get("/history", s.handleHistory)

						r.Get("/areas", s.handleListAreas)
						r.Post("/areas", s.handleCreateArea)
						r.Get("/rooms", s.handleListRooms)
						r.Post("/rooms", s.handleCreateRoom)
						r.Get("/boards", s.handleListBoards)
						r.Post("/boards", s.handleCreateBoard)

						r.Route("/circuits", func(r chi.Router) {
							r.Get("/", s.handleListCircuits)
							r.Post("/", s.handleCreateCircuit)
							r.Route("/{circuitID}", func(r chi.Router) {
								r.Get("/", s.handleGetCircuit)
								r.Delete("/", s.handleDeleteCircuit)
								r.Put("/link", s.handleLinkCircuit)
								r.Delete("/link", s.handleUnlinkCircuit)
							})
						})

						r.Route("/modules", func(r chi.Router) {
							r.Get("/", s.handleListModules)
							r.Post("/", s.handleCreateModule)
							r.Route("/{moduleID}", func(r chi.Router) {
								r.Get("/", s.handleGetModule)
								r.Delete("/", s.handleDeleteModule)
								r.Get("/channels", s.handleFreeChannels)
							})
						})

						r.Get("/links", s.handleListLinks)

						r.Route("/keypads", func(r chi.Router) {
							r.Get("/", s.handleListKeypads)
							r.Post("/", s.handleCreateKeypad)
							r.Route("/{keypadID}", func(r chi.Router) {
								r.Get("/", s.handleGetKeypad)
								r.Delete("/", s.handleDeleteKeypad)
								r.Put("/buttons", s.handleSetButtonCount)
								r.Put("/buttons/{ordinal}", s.handleUpdateButton)
							})
						})

						r.Route("/scenes", func(r chi.Router) {
							r.Get("/", s.handleListScenes)
							r.Post("/", s.handleCreateScene)
							r.Route("/{sceneID}", func(r chi.Router) {
								r.Get("/", s.handleGetScene)
								r.Delete("/", s.handleDeleteScene)
							})
						})
					})
				})
			})
		})
	})

	return r
}

// handleHealth reports the version and the state of every dependency.
// Any failing dependency turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.health))
	for name := range s.health {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		err := s.health[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status":  overall,
		"version": s.version,
		"checks":  checks,
	})
}
