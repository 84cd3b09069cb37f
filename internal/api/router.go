// Package api exposes result lookups over HTTP and serves the results page.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campus-tools/results-viewer/internal/query"
)

// Options configures the router's cross-cutting middleware.
type Options struct {
	AllowedOrigins []string
	RateLimit      float64 // requests per second across all clients; 0 disables
	RateBurst      int
}

// NewRouter builds the HTTP handler for the results service.
func NewRouter(svc *query.Service, opts Options) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Get("/", h.index)

	r.Route("/api/results/{year}/{department}/{number}", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(rateLimit(opts.RateLimit, opts.RateBurst))
		}
		r.Get("/", h.results)
		r.Get("/export.xlsx", h.exportXLSX)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r
}
