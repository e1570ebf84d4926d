// Package api exposes the HTTP interface for the news pipeline service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/geo"
	"github.com/newspulse/newspulse/internal/metrics"
	"github.com/newspulse/newspulse/internal/news"
	"github.com/newspulse/newspulse/internal/pipeline"
)

// Runner executes one pipeline run per request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (news.Result, error)
}

// Config controls server behavior.
type Config struct {
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the pipeline service.
type Server struct {
	router chi.Router
	runner Runner
	mapper *geo.Mapper
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. mapper may be
// nil to disable the markers endpoint.
func NewServer(runner Runner, mapper *geo.Mapper, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	s := &Server{
		runner: runner,
		mapper: mapper,
		logger: logger,
	}
	metrics.Init()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(cfg.RequestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/news", s.getNews)
		r.Get("/news/markers", s.getMarkers)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) getNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	period := news.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = news.Period1d
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	minArticles := 0
	if raw := r.URL.Query().Get("min_articles"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "min_articles must be a positive integer")
			return
		}
		minArticles = n
	}

	result, err := s.runner.Run(r.Context(), pipeline.Request{
		Query:       query,
		Period:      period,
		MinArticles: minArticles,
	})
	if err != nil {
		var invalid *pipeline.InvalidPeriodError
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, invalid.Error())
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "pipeline run timed out")
		default:
			writeError(w, http.StatusInternalServerError, "pipeline run failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getMarkers runs the pipeline (served from cache on repeat calls) and
// geocodes the run's place entities into map markers.
func (s *Server) getMarkers(w http.ResponseWriter, r *http.Request) {
	if s.mapper == nil {
		writeError(w, http.StatusNotImplemented, "geocoding is not configured")
		return
	}
	query := r.URL.Query().Get("query")
	period := news.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = news.Period1d
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	result, err := s.runner.Run(r.Context(), pipeline.Request{Query: query, Period: period})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pipeline run failed")
		return
	}
	markers := s.mapper.Markers(r.Context(), result.TopEntities)
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  result.RunID,
		"markers": markers,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
