// ABOUTME: HTTP server wiring: routes and request logging
// ABOUTME: Long timeouts because an analysis can take minutes
package server

import (
	"log/slog"
	"net/http"
	"time"
)

// New creates the HTTP server for addr
func New(addr string, h *Handlers) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Routes(h),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Minute,
	}
}

// Routes returns the API handler
func Routes(h *Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", h.HandleAnalyze)
	mux.HandleFunc("POST /api/ask", h.HandleAsk)
	mux.HandleFunc("POST /api/search", h.HandleSearch)
	mux.HandleFunc("GET /api/session", h.HandleSession)
	mux.HandleFunc("GET /api/history", h.HandleHistory)
	mux.HandleFunc("GET /download/{file}", h.HandleDownload)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	return logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)))
	})
}
