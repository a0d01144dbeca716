// Package web provides the HTTP server and JSON handlers for the registry.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stringauthority/registry/internal/catalog"
	"github.com/stringauthority/registry/internal/config"
	"github.com/stringauthority/registry/internal/postgres"
	"github.com/stringauthority/registry/internal/web/middleware"
)

// Server is the HTTP front end over the ingestion engine and the catalog
// read queries.
type Server struct {
	db        *postgres.DB
	processor *catalog.Processor
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
}

// NewServer wires the router, middleware, and routes.
func NewServer(db *postgres.DB, processor *catalog.Processor, cfg *config.Config) *Server {
	s := &Server{
		db:        db,
		processor: processor,
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/submissions", s.handleSubmissions)
		r.Get("/manufacturers", s.handleListManufacturers)
		r.Get("/models/search", s.handleSearchModels)
		r.Get("/guitars/search", s.handleSearchGuitars)
		r.Get("/batches", s.handleListBatches)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a token bucket per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.mu.Lock()
		v, ok := rl.visitors[r.RemoteAddr]
		if !ok || time.Since(v.lastReset) > rl.window {
			v = &visitor{tokens: rl.rate, lastReset: time.Now()}
			rl.visitors[r.RemoteAddr] = v
		}
		if v.tokens <= 0 {
			rl.mu.Unlock()
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		v.tokens--
		rl.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// cleanup drops visitors that have been idle for several windows.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for addr, v := range rl.visitors {
			if time.Since(v.lastReset) > 3*rl.window {
				delete(rl.visitors, addr)
			}
		}
		rl.mu.Unlock()
	}
}
