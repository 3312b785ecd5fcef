// Package server exposes the metrics engine, the workout codec, the library
// and the editing session over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/smart-trainer/workout-builder/internal/events"
	"github.com/lowaak/smart-trainer/workout-builder/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/workout-builder/internal/history"
	"github.com/lowaak/smart-trainer/workout-builder/internal/library"
	"github.com/lowaak/smart-trainer/workout-builder/internal/metrics"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server holds dependencies for HTTP handlers
type Server struct {
	engine        *metrics.Engine
	store         library.Store
	session       *history.History
	libraryEvents *events.Stream[library.Update]
	cancelUpdates func()
	defaultFTP    float64
	logger        *log.Logger
	router        chi.Router
}

// New creates a Server with all routes configured. session is the workout
// being edited through the /api/v1/current routes.
func New(engine *metrics.Engine, store library.Store, session *history.History, defaultFTP float64, logger *log.Logger) *Server {
	if engine == nil {
		panic("Server: engine cannot be nil")
	}
	if store == nil {
		panic("Server: store cannot be nil")
	}
	if session == nil {
		panic("Server: session cannot be nil")
	}
	if logger == nil {
		panic("Server: logger cannot be nil")
	}

	s := &Server{
		engine:        engine,
		store:         store,
		session:       session,
		libraryEvents: events.NewStream[library.Update](),
		defaultFTP:    defaultFTP,
		logger:        logger,
		router:        chi.NewRouter(),
	}
	s.cancelUpdates = store.OnUpdated(func(u library.Update) {
		s.libraryEvents.Publish(u)
	})
	s.routes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close detaches the server from the library's update notifications
func (s *Server) Close() {
	s.cancelUpdates()
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.logger))
	s.router.Use(Recover(s.logger))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/timeline", s.handleTimeline)
		r.Post("/summary", s.handleSummary)
		r.Post("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Get("/zones", s.handleZones)
		r.Get("/presets", s.handleListPresets)
		r.Get("/presets/{id}", s.handleGetPreset)

		r.Get("/library", s.handleListLibrary)
		r.Post("/library", s.handleSaveLibrary)
		r.Get("/library/events", s.handleLibraryEvents)
		r.Get("/library/{id}", s.handleGetLibrary)
		r.Delete("/library/{id}", s.handleDeleteLibrary)

		r.Get("/current", s.handleGetCurrent)
		r.Put("/current", s.handlePutCurrent)
		r.Post("/current/undo", s.handleUndo)
		r.Post("/current/redo", s.handleRedo)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go_func_utils.SafeGo(s.logger, func() {
		s.logger.Printf("Server: listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Println("Server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Println("Server: stopped")
	return nil
}
