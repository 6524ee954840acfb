package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the full HTTP surface: middleware, CORS from the
// configuration, the API routes and the Prometheus endpoint.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.Config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("schemaforge is running"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(h.Registry, promhttp.HandlerOpts{}))

	h.RegisterRoutes(r)
	return r
}

// requestLogger records one line per served request.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// Serve blocks on ListenAndServe at the configured address.
func (h *Handler) Serve() error {
	addr := fmt.Sprintf("%s:%d", h.Config.Server.Host, h.Config.Server.Port)
	h.Log.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, NewRouter(h))
}
