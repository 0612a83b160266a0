package httpserver

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/imposter-project/imposter-expect/internal/adapter"
	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/internal/handler"
	"github.com/imposter-project/imposter-expect/internal/server"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal
const shutdownTimeout = 10 * time.Second

// HTTPAdapter runs the standalone HTTP server
type HTTPAdapter struct {
	srv *server.Server
}

// NewAdapter creates a new HTTP server adapter instance
func NewAdapter(imposterConfig *config.ImposterConfig, h *handler.Handler) adapter.Adapter {
	return &HTTPAdapter{srv: server.NewServer(imposterConfig, h)}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *HTTPAdapter) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *HTTPAdapter) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infoln("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
