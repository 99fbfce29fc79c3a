// Package server exposes the liveness probe required by the hosting
// platform; the bot itself uses long polling, not webhooks.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Health is the liveness probe HTTP server.
type Health struct {
	server *http.Server
}

// NewHealth creates a Health server listening on port.
func NewHealth(port int) *Health {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Health{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (h *Health) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("health check server listening", "addr", h.server.Addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server.ListenAndServe > %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown > %w", err)
		}
		return ctx.Err()
	}
}
