package trace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"navscope/internal/route"

	"go.uber.org/zap"
)

// DefaultPort is the default driver server port
const DefaultPort = 9876

// NavigateRequest is the body of POST /navigate.
type NavigateRequest struct {
	Label string `json:"label"`
}

// ResultResponse is returned by GET /result and by successful navigations.
type ResultResponse struct {
	Current string `json:"current"`
	Result  string `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server lets an external harness drive a Navigator over HTTP:
//
//	POST /navigate   {"label": "test1"}
//	POST /back
//	GET  /result
//	GET  /navigations
type Server struct {
	nav     *route.Navigator
	manager *Manager
	logger  *zap.Logger
	server  *http.Server
	port    int

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a driver server for nav. manager may be nil, in which
// case /navigations returns an empty list. port 0 picks a free port on Start.
func NewServer(nav *route.Navigator, manager *Manager, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		nav:     nav,
		manager: manager,
		logger:  logger,
		port:    port,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/navigate", s.handleNavigate)
	mux.HandleFunc("/back", s.handleBack)
	mux.HandleFunc("/result", s.handleResult)
	mux.HandleFunc("/navigations", s.handleNavigations)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the port and serves in a background goroutine.
// Bind errors are returned; serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("driver server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("driver server listening", zap.Int("port", s.Port()))
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Port returns the configured port, or the bound port once started.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// handleNavigate handles POST /navigate requests
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Label == "" {
		http.Error(w, "label is required", http.StatusBadRequest)
		return
	}

	if err := s.nav.SelectLink(r.Context(), req.Label); err != nil {
		s.writeNavError(w, err)
		return
	}
	s.writeResult(w)
}

// handleBack handles POST /back requests
func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.nav.Back(r.Context()); err != nil {
		s.writeNavError(w, err)
		return
	}
	s.writeResult(w)
}

// handleResult handles GET /result requests
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeResult(w)
}

// handleNavigations handles GET /navigations requests
func (s *Server) handleNavigations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	navs := []*Navigation{}
	if s.manager != nil {
		navs = s.manager.Recent()
	}
	s.writeJSON(w, http.StatusOK, navs)
}

func (s *Server) writeResult(w http.ResponseWriter) {
	current, result := s.nav.Snapshot()
	s.writeJSON(w, http.StatusOK, ResultResponse{Current: current, Result: result})
}

func (s *Server) writeNavError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, route.ErrUnknownLink):
		status = http.StatusNotFound
	case errors.Is(err, route.ErrNoHistory):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	s.logger.Debug("navigation request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
