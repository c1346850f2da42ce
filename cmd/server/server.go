package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// startHTTPServer serves router on the configured port until ctx is
// cancelled, then shuts down gracefully.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.serve(ctx, ln, router)
}

// serve runs the HTTP server on ln. It returns nil after a clean shutdown
// triggered by ctx, or the error that stopped the server. Hijacked relay
// connections are not waited for; the hub closes them afterwards.
func (app *application) serve(ctx context.Context, ln net.Listener, router http.Handler) error {
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
