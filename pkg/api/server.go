// Package api exposes the record store over a small REST surface.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mstovari/framstore/pkg/store"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecordResponse carries a loaded record.
type RecordResponse struct {
	Payload []byte `json:"payload"` // base64 in JSON
}

// RecordRequest carries a record to store.
type RecordRequest struct {
	Payload []byte `json:"payload"` // base64 in JSON
}

// StatusResponse describes the store instance.
type StatusResponse struct {
	ID          string `json:"id"`
	Dirty       bool   `json:"dirty"`
	LastSeq     uint32 `json:"last_seq"`
	Slots       int    `json:"slots"`
	SlotSize    uint32 `json:"slot_size"`
	PayloadSize int    `json:"payload_size"`
	BaseAddress uint32 `json:"base_address"`
}

// Server serves the record store over HTTP. The store performs no
// internal locking, so every handler runs under the server's mutex.
type Server struct {
	store  *store.Store
	logger *zap.Logger
	reg    *prometheus.Registry
	router chi.Router

	mu sync.Mutex
}

// NewServer builds a server around s. reg may be nil to disable the
// /metrics endpoint.
func NewServer(s *store.Store, logger *zap.Logger, reg *prometheus.Registry) *Server {
	srv := &Server{
		store:  s,
		logger: logger,
		reg:    reg,
	}
	srv.router = srv.routes()

	return srv
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("api server listening",
		zap.String("addr", addr),
		zap.String("store_id", s.store.ID()))

	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)

	if s.reg != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/record", s.handleGetRecord)
		r.Put("/record", s.handlePutRecord)
		r.Post("/record/deferred", s.handleDeferRecord)
		r.Post("/flush", s.handleFlush)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// requestLogger logs each request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
