// Package server is the HTTP backend of the interactive preview.
//
// It lays out posted outlines, stores uploaded documents and renders stored
// layouts on demand:
//
//	GET    /health
//	POST   /api/layout                       lines in, geometry out (nothing stored)
//	POST   /api/upload                       multipart file in, stored document out
//	GET    /api/layouts                      stored document summaries, newest first
//	GET    /api/layouts/{id}                 one stored document
//	DELETE /api/layouts/{id}
//	GET    /api/layouts/{id}/render/{format} svg, pdf, docx, png, json or tree
//
// Errors are JSON objects {"code": ..., "error": ...} whose status follows
// the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/wbsgen/pkg/config"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
	"github.com/matzehuels/wbsgen/pkg/store"
)

// DefaultMaxUploadBytes caps request bodies.
const DefaultMaxUploadBytes = 32 << 20

// Options configures a Server.
type Options struct {
	// Settings are the defaults for requests that carry no config.
	Settings config.Settings
	// MaxUploadBytes caps request bodies; 0 means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	// RenderTimeout bounds a single render request; 0 means 60s.
	RenderTimeout time.Duration
}

// Server is the HTTP API server for wbsgen.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	store  store.Store
	log    *log.Logger
	opts   Options
}

// New creates and configures the HTTP server.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 60 * time.Second
	}
	if opts.Settings.Layout.CanvasWidth == 0 {
		opts.Settings = config.Default()
	}
	s := &Server{
		runner: runner,
		store:  st,
		log:    logger,
		opts:   opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(bodyLimit(s.opts.MaxUploadBytes))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/upload", s.handleUpload)

		r.Get("/layouts", s.handleList)
		r.Route("/layouts/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/render/{format}", s.handleRender)
		})
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests ten seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
