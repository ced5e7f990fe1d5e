package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHandler wires the sync API. metricsHandler may be nil.
func NewHandler(syncHandler *SyncHandler, votersHandler *VotersHandler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", syncHandler.Status)
			r.Post("/", syncHandler.SyncAll)
		})

		r.Route("/elections/{id}", func(r chi.Router) {
			r.Get("/voters", votersHandler.ElectionVoters)
			r.Post("/sync", syncHandler.SyncElection)
		})

		r.Route("/centers/{id}", func(r chi.Router) {
			r.Get("/voters", votersHandler.CenterVoters)
			r.Post("/sync", syncHandler.SyncCenter)
		})
	})

	return r
}
