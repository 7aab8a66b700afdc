// Package main is the entry point for the TasteTrail API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tastetrail/internal/cache"
	"tastetrail/internal/collections"
	"tastetrail/internal/comments"
	"tastetrail/internal/config"
	"tastetrail/internal/database"
	"tastetrail/internal/docstore"
	"tastetrail/internal/feed"
	"tastetrail/internal/gateway"
	"tastetrail/internal/handlers"
	"tastetrail/internal/likes"
	"tastetrail/internal/router"
	"tastetrail/internal/search"
	"tastetrail/internal/session"
	"tastetrail/internal/store"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	ctx := context.Background()

	// Connect to PostgreSQL (CMS content, taxonomies, comments).
	db, err := database.Connect(ctx, cfg.DSN(), database.DefaultPool)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (document store, sessions, response cache).
	valkeyClient, err := cache.ConnectValkey(ctx, cache.ValkeyOptions{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	})
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	postsCache := cache.NewResponseCache(valkeyClient, "posts", cfg.CacheTTL)
	searchCache := cache.NewResponseCache(valkeyClient, "search", cfg.CacheTTL)

	// Seed development content (no-op if data already exists). Cached
	// responses may predate the seed, so drop them.
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
		postsCache.InvalidateAll(ctx)
		searchCache.InvalidateAll(ctx)
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// CMS stores.
	contentStore := store.NewContentStore(db)
	taxonomyStore := store.NewTaxonomyStore(db)
	commentStore := store.NewCommentStore(db)

	// Document stores.
	collectionStore := docstore.NewCollectionStore(valkeyClient)
	readerStore := docstore.NewReaderStore(valkeyClient)
	recentStore := search.NewRecentStore(valkeyClient)

	// Services.
	gw := gateway.New(contentStore, gateway.DefaultBreakerConfig())
	merger := feed.NewMerger(gw)
	aggregator := search.NewAggregator(contentStore, taxonomyStore)
	collectionService := collections.NewService(collectionStore)
	commentService := comments.NewService(commentStore)
	likeService := likes.NewService(readerStore, merger)

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, router.Options{
		SecureCookies:     secureCookies,
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		Checks: []router.Check{
			{Name: "postgres", Ping: db.PingContext},
			{Name: "valkey", Ping: func(ctx context.Context) error { return valkeyClient.Ping(ctx).Err() }},
		},
	}, router.Handlers{
		Content:     handlers.NewContent(gw, postsCache),
		Search:      handlers.NewSearch(aggregator, recentStore, searchCache),
		Comments:    handlers.NewComments(commentService),
		Collections: handlers.NewCollections(collectionService, merger),
		Likes:       handlers.NewLikes(likeService),
		Auth:        handlers.NewAuth(readerStore, sessionStore),
	})

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
