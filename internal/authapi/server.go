package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenantgate/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(), chimw.RealIP)
	r.Use(middleware.Logging(a.log), middleware.Recover(a.log, a.render))
	r.Use(middleware.Tracing(a.cfg, a.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/health", a.health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/auth/login", a.login)

	r.Route("/protected", func(pr chi.Router) {
		pr.Use(a.guard.Handler)
		pr.Get("/me", a.me)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"error": "NotFound", "message": "Route not found", "statusCode": http.StatusNotFound}, http.StatusNotFound)
	})
	return r
}
