package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/ddanglyx/finalweb/internal/api"
	"github.com/ddanglyx/finalweb/internal/cache"
	"github.com/ddanglyx/finalweb/internal/config"
	"github.com/ddanglyx/finalweb/internal/ratelimit"
	"github.com/ddanglyx/finalweb/internal/store"
)

// Embeds the migration files INTO the go bin

//go:embed migrations/*.sql
var migrationsDir embed.FS

// loadDotenv loads the nearest .env file, if any. Local dev convenience;
// deployed environments set real env vars.
func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			slog.Info("loaded env file", "path", p)
			return
		}
	}
}

func main() {
	loadDotenv()

	// Load config first so we can set log level
	cfg, err := config.LoadConfig()
	if err != nil {
		// Fallback logger before config is available
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}

	// Include source location in log entries at debug level only.
	addSrc := cfg.LogLevel == slog.LevelDebug

	// Set up slog to output as json with configured level
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: addSrc,
	})))

	// Cancel ctx on SIGINT/SIGTERM; run() shuts down when ctx is done.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run() is a separate func so deferred closes always execute before os.Exit.
	if err := run(ctx, cfg, nil); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run holds all server logic and returns error instead of calling os.Exit,
// so deferred resource cleanup (ps.Close, rdb.Close) always runs.
// Shuts down when ctx is cancelled (signal handling is the caller's concern).
// If ready is non-nil, the server's base URL is sent on it once the listener is bound.
func run(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	// Create new postgres store, return errors if any
	ps, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to set up postgres store: %w", err)
	}
	// Close at end of run func
	defer ps.Close()

	// Run database migrations
	migrationsFS, err := fs.Sub(migrationsDir, "migrations")
	if err != nil {
		return fmt.Errorf("failed to access embedded migrations: %w", err)
	}
	if err := ps.Migrate(ctx, migrationsFS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Shared Redis client for the rate-limit counter store.
	rdb, err := store.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to set up redis client: %w", err)
	}
	defer rdb.Close()

	rl := ratelimit.New(store.NewRedisCounterStore(rdb), cfg.RateCeiling, cfg.RateWindow)

	h := &api.Handler{
		DB:    ps,
		RL:    rl,
		TV:    api.NewJWTVerifier(cfg.JWTSecret),
		Cache: cache.NewSearchCache(cfg.SearchCacheCapacity, cfg.SearchCacheTTL),
	}

	// Bind listener; ":0" picks a free port (useful in tests).
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	server := &http.Server{Handler: buildRouter(h, cfg)}

	// Counter sweep goroutine; removes rate-limit buckets older than the
	// retention window. The limiter component is caller-agnostic -- this
	// goroutine is the scheduler. Cancelled via sweepCtx when run() returns.
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := rl.Sweep(sweepCtx, time.Now().Add(-cfg.SweepRetention))
				if err != nil {
					slog.Warn("rate counter sweep failed", "error", err)
				} else {
					slog.Info("rate counter sweep complete", "deleted", n)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// Start server in a goroutine; run() continues past this.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", ln.Addr().String())
		// Send error only if server stops for a reason other than explicit shutdown.
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Signal readiness to caller (used by tests; nil in production).
	if ready != nil {
		ready <- "http://" + ln.Addr().String()
	}

	// Wait for server error or shutdown signal from ctx.
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown: stop accepting conns, drain in-flight requests,
	// give up after 30s.
	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildRouter wires all routes and middleware.
// Separate from run() for smoke tests.
func buildRouter(h *api.Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(api.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Every API route requires a verified bearer token and counts against
	// the subject's quota, in that order.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(h.RateLimit)

		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.CreateMessage)
		r.Patch("/messages/{id}", h.UpdateMessage)
		r.Delete("/messages/{id}", h.DeleteMessage)

		r.Get("/guitars/search", h.SearchGuitars)

		// Moderation routes additionally require the admin role.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Get("/admin/messages", h.AdminListMessages)
		})
	})

	return r
}
