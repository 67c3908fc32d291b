package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/storefront-insights/internal/config"
	"github.com/JakeFAU/storefront-insights/internal/engine"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
	"github.com/JakeFAU/storefront-insights/internal/telemetry"
	"github.com/JakeFAU/storefront-insights/internal/urlcheck"
)

const maxRequestBody = 1 << 16

// Analyzer is the engine surface the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (engine.Result, error)
	Validate(ctx context.Context, rawURL string) (bool, error)
}

// Server wires HTTP handlers to the analysis engine.
type Server struct {
	router   chi.Router
	analyzer Analyzer
	clock    storefront.Clock
	cfg      config.ServerConfig
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(analyzer Analyzer, clk storefront.Clock, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer: analyzer,
		clock:    clk,
		cfg:      cfg,
		logger:   logger.Named("api"),
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(telemetry.Middleware)

	r.Get("/metrics", telemetry.Handler().ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Group(func(r chi.Router) {
			if cfg.HandlerTimeout > 0 {
				r.Use(timeoutMiddleware(cfg.HandlerTimeout))
			}
			r.Post("/analyze", s.analyze)
			r.Post("/validate-url", s.validateURL)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

type urlRequest struct {
	WebsiteURL string `json:"website_url"`
}

type analyzeResponse struct {
	Data     storefront.StoreProfile   `json:"data"`
	Analysis storefront.AnalysisReport `json:"analysis"`
}

type validateResponse struct {
	IsValidShopifyStore bool   `json:"is_valid_shopify_store"`
	WebsiteURL          string `json:"website_url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]string{"status": "healthy"}
	if s.clock != nil {
		payload["time"] = s.clock.Now().UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	res, err := s.analyzer.Analyze(r.Context(), req.WebsiteURL)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Data: res.Profile, Analysis: res.Report})
}

func (s *Server) validateURL(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	valid, err := s.analyzer.Validate(r.Context(), req.WebsiteURL)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	websiteURL := req.WebsiteURL
	if normalized, err := urlcheck.Normalize(req.WebsiteURL); err == nil {
		websiteURL = normalized
	}
	writeJSON(w, http.StatusOK, validateResponse{IsValidShopifyStore: valid, WebsiteURL: websiteURL})
}

func (s *Server) decodeURLRequest(w http.ResponseWriter, r *http.Request) (urlRequest, bool) {
	var req urlRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err.Error())
		return req, false
	}
	if strings.TrimSpace(req.WebsiteURL) == "" {
		writeError(w, http.StatusBadRequest, "website_url is required", "")
		return req, false
	}
	return req, true
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Info("request rejected", fields...)
	}
	writeError(w, status, msg, err.Error())
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	var (
		invalid  *storefront.InvalidURLError
		notStore *storefront.NotAStoreError
		fetchErr *storefront.FetchError
		schema   *storefront.SchemaViolationError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid website_url"
	case errors.As(err, &notStore):
		return http.StatusUnprocessableEntity, "not a Shopify store"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "analysis timed out"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "failed to fetch store"
	case errors.As(err, &schema):
		return http.StatusInternalServerError, "invalid analysis output"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.String("request_id", RequestID(r.Context())),
					zap.Any("panic", rec),
				)
				writeError(w, http.StatusInternalServerError, "internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(allowed []string) func(http.Handler) http.Handler {
	wildcard := false
	for _, origin := range allowed {
		if origin == "*" {
			wildcard = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case isAllowedOrigin(origin, allowed):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(errorResponse{Error: "request timed out"})
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, string(body))
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

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
