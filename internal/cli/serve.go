package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/tutorgraph/pkg/adapters/http"
	mcpadapter "github.com/aretw0/tutorgraph/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// NewHTTPHandler builds the HTTP API for app.
func NewHTTPHandler(app *App) (http.Handler, error) {
	return httpadapter.NewHandler(app.Chat, app.Sessions,
		httpadapter.WithMetrics(app.Metrics.Handler()),
		httpadapter.WithLogger(app.Logger),
	)
}

// Serve runs the HTTP API on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *App, addr string) error {
	handler, err := NewHTTPHandler(app)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting HTTP server", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		app.Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if cerr := srv.Close(); cerr != nil {
				app.Logger.Error("Error killing server", "err", cerr)
			}
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}

// ServeMCP runs the MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, app *App, transport, addr string) error {
	srv := mcpadapter.NewServer(app.Chat, app.Engine.Graphs(), mcpadapter.WithLogger(app.Logger))
	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
	}
}
