// Package server provides the HTTP server for the handrps game.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/handrps/internal/server/api"
	"github.com/ayusman/handrps/internal/store"
	"github.com/ayusman/handrps/internal/tracker"
)

// Config holds the server configuration. Nil fields leave their routes
// unregistered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Game      api.GameController
	Preview   *Preview
	Hub       *Hub
	Stats     func() tracker.Stats
}

// Server represents the HTTP server for the handrps application.
type Server struct {
	config Config
	router *mux.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	if s.config.Game != nil {
		api.NewGameHandler(s.config.Game).Register(s.router)
	}

	if s.config.Store != nil {
		api.NewMatchesHandler(s.config.Store).Register(s.router)
	}

	if s.config.Preview != nil {
		s.router.Handle("/api/stream", NewStreamHandler(s.config.Preview)).Methods(http.MethodGet)
	}

	if s.config.Hub != nil {
		s.router.Handle("/api/events", s.config.Hub).Methods(http.MethodGet)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string         `json:"status"`
	Uptime  string         `json:"uptime"`
	Tracker *tracker.Stats `json:"tracker,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Stats != nil {
		stats := s.config.Stats()
		response.Tracker = &stats
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Request contexts derive from ctx so open streams end with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:     s,
		Addr:        addr,
		ReadTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
