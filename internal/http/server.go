// Package http exposes the dashboard over a small JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"flock/internal/identity"
	"flock/internal/log"
	"flock/internal/middleware/ratelimit"
	"flock/internal/middleware/security"
	"flock/internal/middleware/trace"
)

type ServerConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	TrustedProxies     []string
	// RetryAfter is advertised when a data source is temporarily failing.
	RetryAfter time.Duration
}

// Server wraps http.Server with the background helpers its middleware
// starts.
type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer builds the router and returns a ready to run server.
func NewServer(addr string, h *Handler, cfg ServerConfig, logger *log.Logger) (*Server, error) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	router, err := NewRouter(h, limiter, cfg, logger)
	if err != nil {
		limiter.Stop()
		return nil, err
	}
	return &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        router,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		limiter: limiter,
	}, nil
}

// NewRouter wires middleware and routes. Reads resolve the organization from
// the X-Organization-ID header; POSTs are rate limited per client IP.
func NewRouter(h *Handler, limiter *ratelimit.Limiter, cfg ServerConfig, logger *log.Logger) (*chi.Mux, error) {
	if logger == nil {
		logger = log.Discard()
	}
	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		return nil, err
	}
	if cfg.RetryAfter > 0 {
		h.retryAfter = cfg.RetryAfter
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	tracer := trace.NewMiddleware(detector.ExtractClientIP, logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware(logger))
	r.Use(tracer.Middleware)
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(log.ComponentMiddleware(log.ComponentHTTP))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", identity.HeaderName, trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(identity.Middleware)
		if limiter != nil {
			r.Use(limiter.Middleware(detector.ExtractClientIP, rateLimited, http.MethodPost))
		}

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Get("/giving-trend", h.GetGivingTrend)
		})
		r.Post("/contributions", h.CreateContribution)
		r.Route("/cache", func(r chi.Router) {
			r.Post("/invalidate", h.InvalidateCache)
			r.Post("/invalidate-all", h.InvalidateAllCaches)
		})
	})

	return r, nil
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
