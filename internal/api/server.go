// Package api serves the Z-scan plotter over HTTP: uploads come in as
// multipart forms and leave as JSON, PNG, HTML or zip responses.
package api

import (
	"embed"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/zscan.report/internal/batch"
	"github.com/banshee-data/zscan.report/internal/config"
	"github.com/banshee-data/zscan.report/internal/monitoring"
	"github.com/banshee-data/zscan.report/internal/timeutil"
)

//go:embed static/index.html
var staticFiles embed.FS

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// Server holds the handlers of the plotter service. It keeps no state
// between requests.
type Server struct {
	cfg    *config.ServerConfig
	runner *batch.Runner
	clock  timeutil.Clock
}

// NewServer returns a Server using cfg. A nil cfg uses all defaults.
func NewServer(cfg *config.ServerConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyServerConfig()
	}
	return &Server{
		cfg:    cfg,
		runner: batch.NewRunner(),
		clock:  timeutil.RealClock{},
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/plot", s.handlePlot)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/api/archive", s.handleArchive)
	mux.HandleFunc("/api/version", s.handleVersion)
	return mux
}

// Handler returns the route table wrapped in request ID and logging middleware.
func (s *Server) Handler() http.Handler {
	return RequestIDMiddleware(LoggingMiddleware(s.ServeMux()))
}

// HTTPServer returns an http.Server for the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.GetListen(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.GetReadTimeout(),
		WriteTimeout: s.cfg.GetWriteTimeout(),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs request ID, status, method, path and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms id=%s",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
			w.Header().Get(RequestIDHeader),
		)
	})
}

// RequestIDMiddleware echoes a caller-supplied X-Request-ID or assigns a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
