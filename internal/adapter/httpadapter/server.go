// Package httpadapter serves the dashboard: the page, the chart markup and its spec,
// plus health, readiness, and metrics endpoints.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/squirrel-census/internal/chart"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/observability"
)

// DatasetProvider supplies the dataset charts are built from and reports readiness.
type DatasetProvider interface {
	sharedobs.ReadinessChecker
	Dataset() *domain.Dataset
}

// Options configures the dashboard routes.
type Options struct {
	DefaultBehavior    domain.BehaviorCategory
	CORSAllowedOrigins []string
}

// Server exposes the dashboard and the operational endpoints.
type Server struct {
	httpServer *http.Server
	data       DatasetProvider
	composer   *chart.Composer
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the dashboard routes and /healthz, /readyz,
// and /metrics.
func NewServer(addr string, data DatasetProvider, composer *chart.Composer, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Server {
	if opts.DefaultBehavior == "" {
		opts.DefaultBehavior = domain.DefaultCategory
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}

	s := &Server{
		data:     data,
		composer: composer,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handlePage)
	r.Get("/chart", s.handleChart)
	r.Get("/snapshot/{behavior}.svg", s.handleSnapshot)
	r.Route("/api", func(api chi.Router) {
		api.Get("/spec", s.handleSpec)
		api.Get("/zones", s.handleZones)
	})

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(s.data))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
