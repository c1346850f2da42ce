package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	apiMiddleware "github.com/phrazzld/taskmaster/internal/api/middleware"
	"github.com/phrazzld/taskmaster/internal/api/shared"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
	"github.com/phrazzld/taskmaster/internal/relay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthTimeout bounds the database ping behind /health.
const healthTimeout = 2 * time.Second

// rootMessage is returned from "/" when no client bundle is served.
const rootMessage = "TaskMaster backend is running"

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(apiMiddleware.Trace(app.logger))

	r.NotFound(app.notFound)

	r.Get("/health", app.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/ws", relay.NewHandler(app.hub, app.jwtService, app.config.Server.AllowedOrigins, app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	app.handlers.Mount(r, authMiddleware.Authenticate, app.loginLimiter.Middleware)

	if app.config.Server.StaticDir == "" {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(rootMessage))
		})
	}

	return r
}

// health reports whether the database is reachable.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), app.logger).Warn("health check failed",
			slog.String("error", err.Error()))
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// notFound serves the client bundle for unknown GET paths when a static
// directory is configured. API and upload paths always get a JSON 404.
func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	dir := app.config.Server.StaticDir
	if dir == "" || !isClientRoute(r) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}
	serveStatic(w, r, dir)
}

func isClientRoute(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	for _, prefix := range []string{"/api/", "/uploads/", "/ws"} {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

// serveStatic serves the file under dir named by the request path, falling
// back to index.html so client-side routes load the app.
func serveStatic(w http.ResponseWriter, r *http.Request, dir string) {
	name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}

	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}
	http.ServeFile(w, r, index)
}
