// Package trace tags every request with an id and logs its start and end.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"flock/internal/log"
)

// HeaderRequestID is echoed on every response and honoured when the caller
// already set a well-formed one.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 64

type requestIDKey struct{}

// Metrics are cumulative since the middleware was built.
type Metrics struct {
	TotalRequests   int64
	ServerErrors    int64
	ClientErrors    int64
	AverageDuration time.Duration
}

type Middleware struct {
	extractIP func(*http.Request) string
	events    *log.StructuredLogger

	requests     atomic.Int64
	serverErrors atomic.Int64
	clientErrors atomic.Int64
	totalMicros  atomic.Int64
}

func NewMiddleware(extractIP func(*http.Request) string, logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	if extractIP == nil {
		extractIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Middleware{
		extractIP: extractIP,
		events:    log.NewStructuredLogger(logger.WithComponent(log.ComponentTrace)),
	}
}

// Middleware assigns the request id and logs the request around next.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := m.extractIP(r)

		id := r.Header.Get(HeaderRequestID)
		if !validRequestID(id) {
			id = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := WithRequestID(r.Context(), id)
		r = r.WithContext(ctx)
		m.events.LogHTTPStart(ctx, r, clientIP)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		took := time.Since(start)
		m.record(sw.status, took)
		m.events.LogHTTPEnd(ctx, r, sw.status, took.Milliseconds(), clientIP)
	})
}

func (m *Middleware) record(status int, took time.Duration) {
	m.requests.Add(1)
	m.totalMicros.Add(took.Microseconds())
	switch {
	case status >= 500:
		m.serverErrors.Add(1)
	case status >= 400:
		m.clientErrors.Add(1)
	}
}

func (m *Middleware) GetMetrics() Metrics {
	n := m.requests.Load()
	out := Metrics{
		TotalRequests: n,
		ServerErrors:  m.serverErrors.Load(),
		ClientErrors:  m.clientErrors.Load(),
	}
	if n > 0 {
		out.AverageDuration = time.Duration(m.totalMicros.Load()/n) * time.Microsecond
	}
	return out
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// GenerateRequestID returns a fresh "req_" prefixed id.
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the id stored by the middleware, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDFromRequest suits log.RequestIDMiddleware.
func RequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}
