// Package server exposes a family chart over HTTP.
//
// The server loads one family snapshot in the background at startup and
// serves it, its layout, person details and rendered charts:
//
//	GET /health
//	GET /api/family
//	GET /api/layout
//	GET /api/people/{id}?symmetric=true
//	GET /api/chart.{format}        svg, png, dot or json
//	GET /metrics                   with [WithMetrics]
//
// While the snapshot is loading, data endpoints answer 503. If loading
// failed they answer 502 with the loader's message. File inputs can be
// watched with [Server.Watch]; a changed file replaces the snapshot once the
// new one has loaded.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// PeoplePath is the prefix of the person detail endpoint. SVG charts served
// by the API link each card to it.
const PeoplePath = "/api/people/"

// Server serves one family snapshot.
type Server struct {
	runner *pipeline.Runner
	src    family.Source
	loader atomic.Pointer[family.Loader]
	opts   pipeline.Options
	logger *log.Logger
	router chi.Router

	corsOrigins []string
	metrics     *observability.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithCORS allows cross-origin GET requests from origins. "*" allows any
// origin.
func WithCORS(origins ...string) Option {
	return func(s *Server) { s.corsOrigins = append(s.corsOrigins, origins...) }
}

// WithMetrics serves m's registry at /metrics. Install m as the hook
// implementation to have it record events.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a server for opts.Input. The snapshot is not fetched until
// [Server.Start] or [Server.ListenAndServe] is called.
func New(runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger, options ...Option) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	src, err := pipeline.Source(opts.Input, runner.Store)
	if err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if opts.LinkPrefix == "" {
		opts.LinkPrefix = PeoplePath
	}

	s := &Server{
		runner: runner,
		src:    src,
		opts:   opts,
		logger: logger,
	}
	for _, o := range options {
		o(s)
	}
	s.loader.Store(s.newLoader())
	s.router = s.routes()
	return s, nil
}

func (s *Server) newLoader() *family.Loader {
	return family.NewLoader(runnerSource{runner: s.runner, opts: s.opts, src: s.src})
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/family", s.getFamily)
		r.Get("/layout", s.getLayout)
		r.Get("/people/{personID}", s.getPerson)
		r.Get("/chart.{format}", s.getChart)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins loading the snapshot.
func (s *Server) Start(ctx context.Context) { s.Loader().Start(ctx) }

// Loader exposes the loader of the snapshot currently being served.
func (s *Server) Loader() *family.Loader { return s.loader.Load() }

// Reload fetches the input again and swaps the new snapshot in once it is
// ready. A failed reload leaves the current snapshot in place and returns the
// fetch error.
func (s *Server) Reload(ctx context.Context) error {
	next := s.newLoader()
	st, err := next.Wait(ctx)
	if err != nil {
		return err
	}
	if st.Status == family.StatusFailed {
		return next.Err()
	}
	s.loader.Store(next)
	s.logger.Info("reloaded family data", "input", s.opts.Input, "people", len(st.Data.People))
	return nil
}

// watchPath returns the file backing the input, or an error if the input is
// not a local file.
func (s *Server) watchPath() (string, error) {
	file, ok := s.src.(family.FileSource)
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupported, "only file inputs can be watched, got %s", s.src)
	}
	return file.Path, nil
}

// ListenAndServe starts loading, serves on addr, and shuts down gracefully
// when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "input", s.opts.Input)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	}
}

// runnerSource loads through the runner so URL inputs use the fetch cache
// and pipeline hooks fire.
type runnerSource struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	src    family.Source
}

func (r runnerSource) Fetch(ctx context.Context) (*family.FamilyData, error) {
	data, _, err := r.runner.Load(ctx, r.opts)
	return data, err
}

func (r runnerSource) String() string { return r.src.String() }
