// Package server exposes stored mind maps over HTTP.
//
// Maps live in a [storage.Store]. A map is loaded into an [editor.Editor] on
// first use and kept in a bounded, expiring LRU; every edit is written back
// to the store in the map's original format.
//
// Routes:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /maps
//	GET    /maps/{id}                      ?format=node_tree|node_array|freemind
//	PUT    /maps/{id}
//	DELETE /maps/{id}
//	POST   /maps/{id}/nodes
//	PATCH  /maps/{id}/nodes/{nodeID}
//	DELETE /maps/{id}/nodes/{nodeID}
//	POST   /maps/{id}/nodes/{nodeID}/move
//	POST   /maps/{id}/nodes/{nodeID}/toggle
//	GET    /maps/{id}/layout
//	GET    /maps/{id}/render.svg
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mindtree/pkg/editor"
	"github.com/matzehuels/mindtree/pkg/pipeline"
	"github.com/matzehuels/mindtree/pkg/storage"
)

// Defaults for [Options].
const (
	DefaultAddr     = ":8080"
	DefaultOpenMaps = 128
	DefaultIdleTTL  = 30 * time.Minute

	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 8 << 20
)

// Options configures a [Server].
type Options struct {
	Addr string
	// Editor is the policy applied to every loaded map. Its Bus is ignored;
	// each map gets a private one.
	Editor editor.Options
	// OpenMaps bounds the loaded editors; IdleTTL evicts idle ones.
	OpenMaps int
	IdleTTL  time.Duration
	// Metrics serves GET /metrics. Nil answers 404.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server is the HTTP API. It is safe for concurrent use.
type Server struct {
	opts    Options
	store   storage.Store
	runner  *pipeline.Runner
	logger  *log.Logger
	loadMu  sync.Mutex
	maps    *expirable.LRU[string, *session]
	handler http.Handler
}

// New creates a server over store. A nil runner renders without a cache.
func New(store storage.Store, runner *pipeline.Runner, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.OpenMaps <= 0 {
		opts.OpenMaps = DefaultOpenMaps
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	s := &Server{
		opts:   opts,
		store:  store,
		runner: runner,
		logger: opts.Logger,
	}
	s.maps = expirable.NewLRU[string, *session](opts.OpenMaps, func(id string, sess *session) {
		sess.close()
		s.logger.Debug("unloaded map", "id", id)
	}, opts.IdleTTL)
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/maps", func(r chi.Router) {
		r.Get("/", s.handleListMaps)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetMap)
			r.Put("/", s.handlePutMap)
			r.Delete("/", s.handleDeleteMap)
			r.Get("/layout", s.handleLayout)
			r.Get("/render.svg", s.handleRenderSVG)

			r.Post("/nodes", s.handleAddNode)
			r.Route("/nodes/{nodeID}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateNode)
				r.Delete("/", s.handleRemoveNode)
				r.Post("/move", s.handleMoveNode)
				r.Post("/toggle", s.handleToggleNode)
			})
		})
	})
	return r
}

// ListenAndServe serves on opts.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	s.Close()
	return err
}

// Close unloads every open map.
func (s *Server) Close() {
	s.maps.Purge()
}
