// Package httpapi exposes the question answering service as a JSON REST API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/YorHaaa/ATAI/pkg/kgqa"
)

// NewRouter builds the REST routes over svc.
func NewRouter(svc *kgqa.Service, opts Options) http.Handler {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)
	r.Use(corsMiddleware(opts.CORSOrigins))

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(opts))
		r.Post("/answer", h.Answer)
		r.Post("/consensus", h.Consensus)
		r.Post("/recommend", h.Recommend)
		r.Get("/resolve", h.Resolve)
	})
	return r
}
