// Package router sets up all HTTP routes and middleware chains for the
// TasteTrail API. Read-only content routes are open; reader routes load the
// session and require CSRF tokens on writes.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tastetrail/internal/handlers"
	"tastetrail/internal/middleware"
)

// Handlers holds the handler groups the router dispatches to.
type Handlers struct {
	Content     *handlers.Content
	Search      *handlers.Search
	Comments    *handlers.Comments
	Collections *handlers.Collections
	Likes       *handlers.Likes
	Auth        *handlers.Auth
}

// Options tunes the middleware stack.
type Options struct {
	// SecureCookies marks the CSRF cookie Secure and sends HSTS.
	SecureCookies bool
	CORSOrigins   []string

	// Per-IP limit on /api; zero disables it.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Checks are the backing services /ready pings.
	Checks []Check
}

// Check is one dependency probed by the readiness endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessions middleware.SessionGetter, opts Options, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.SecureCookies))

	// Health check and metrics: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(opts.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(opts.CORSOrigins))
		r.Use(middleware.RateLimit(opts.RateLimitRequests, opts.RateLimitWindow))
		r.Use(middleware.LoadSession(sessions))

		// Content lookups use POST for their bodies but change nothing.
		r.Post("/getPosts", h.Content.GetPosts)
		r.Get("/search", h.Search.Query)
		r.Post("/search", h.Search.Taxonomies)
		r.Get("/comments", h.Comments.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRF(middleware.CSRFOptions{
				Secure:         opts.SecureCookies,
				TrustedOrigins: opts.CORSOrigins,
			}))

			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/auth/logout", h.Auth.Logout)

			// Collections may be read publicly; the service decides.
			r.Get("/collections/{id}", h.Collections.Get)
			r.Get("/collections/{id}/posts", h.Collections.Posts)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)

				r.Get("/auth/me", h.Auth.Me)
				r.Post("/auth/logout-all", h.Auth.LogoutAll)

				r.Route("/search/recent", func(r chi.Router) {
					r.Get("/", h.Search.Recent)
					r.Post("/", h.Search.AddRecent)
					r.Delete("/", h.Search.DeleteRecent)
				})

				r.Post("/comments", h.Comments.Upsert)
				r.Delete("/comments", h.Comments.Delete)
				r.Get("/ratings", h.Comments.Ratings)

				r.Get("/collections", h.Collections.List)
				r.Post("/collections", h.Collections.Create)
				r.Put("/collections/{id}", h.Collections.Update)
				r.Delete("/collections/{id}", h.Collections.Delete)
				r.Post("/collections/{id}/posts", h.Collections.MutatePost)

				r.Get("/likes", h.Likes.Feed)
				r.Post("/likes", h.Likes.Toggle)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyTimeout bounds each readiness probe.
const readyTimeout = 2 * time.Second

// readyHandler pings every check and answers 503 if any fails.
func readyHandler(checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			err := c.Ping(ctx)
			cancel()
			if err != nil {
				status = http.StatusServiceUnavailable
				results[c.Name] = err.Error()
				continue
			}
			results[c.Name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		body, _ := json.Marshal(map[string]any{"status": state, "checks": results})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}
}
