// Package server provides the HTTP API server for atomgraph
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shivavenkatesh/atomgraph/internal/service"
	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/internal/store"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// maxBodyBytes bounds request bodies
const maxBodyBytes = 32 << 20

// Server is the HTTP API server
type Server struct {
	svc    service.Service
	config Config
	logger *zap.Logger
	server *http.Server
}

// Config configures the server
type Config struct {
	Host string
	Port int
}

// New creates a new server
func New(svc service.Service, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:    svc,
		config: cfg,
		logger: logger,
	}
}

// Handler returns the API routes wrapped in middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/split", s.handleSplit)
	mux.HandleFunc("/graphs", s.handleGraphs)
	mux.HandleFunc("/graphs/", s.handleGraphByID)
	mux.HandleFunc("/index", s.handleIndex)
	mux.HandleFunc("/strategies", s.handleStrategies)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)

	return corsMiddleware(s.logRequests(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// handleSplit handles POST /split
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req types.SplitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.svc.Split(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// handleGraphs handles POST /graphs (build) and GET /graphs (list)
func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req types.BuildRequest
		if !decodeBody(w, r, &req) {
			return
		}

		graph, err := s.svc.Build(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, graph, http.StatusCreated)

	case http.MethodGet:
		opts, err := listOptions(r)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		graphs, err := s.svc.List(r.Context(), opts)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{"graphs": graphs, "total": len(graphs)}, http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGraphByID handles GET/DELETE /graphs/:id
func (s *Server) handleGraphByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/graphs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, "Graph ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		graph, err := s.svc.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, graph, http.StatusOK)

	case http.MethodDelete:
		if err := s.svc.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]bool{"deleted": true}, http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleIndex handles POST /index
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req types.IndexRequest
	if !decodeBody(w, r, &req) {
		return
	}

	graph, err := s.svc.Index(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, graph, http.StatusCreated)
}

// handleStrategies handles GET /strategies
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"strategies": splitter.Strategies(),
		"default":    splitter.DefaultStrategy,
	}, http.StatusOK)
}

// handleStats handles GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": Version}, http.StatusOK)
}

// listOptions reads GET /graphs query parameters
func listOptions(r *http.Request) (store.ListOptions, error) {
	q := r.URL.Query()
	opts := store.ListOptions{
		Strategy:   q.Get("strategy"),
		Name:       q.Get("name"),
		OrderBy:    q.Get("order_by"),
		Descending: q.Get("desc") == "true",
	}

	var err error
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil || opts.Limit < 0 {
			return opts, fmt.Errorf("invalid limit: %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil || opts.Offset < 0 {
			return opts, fmt.Errorf("invalid offset: %q", v)
		}
	}

	return opts, nil
}

// decodeBody decodes a JSON request body, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps an error onto an HTTP status by kind
func statusFor(err error) int {
	switch {
	case errors.Is(err, splitter.ErrInvalidArgument),
		errors.Is(err, splitter.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, splitter.ErrMalformedPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, err.Error(), status)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
