package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
)

// HTTPServer matches the lifecycle of httpapi.Server.
type HTTPServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts an HTTPServer to suture.Service.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve runs the server until ctx is cancelled, then shuts it down
// gracefully. http.ErrServerClosed is not an error.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPService) String() string { return "http-server" }

// WarmupService retries fn until it succeeds once, then leaves the tree.
type WarmupService struct {
	name  string
	fn    func(ctx context.Context) error
	retry time.Duration
}

func NewWarmupService(name string, retry time.Duration, fn func(ctx context.Context) error) *WarmupService {
	if retry <= 0 {
		retry = 10 * time.Second
	}
	return &WarmupService{name: name, fn: fn, retry: retry}
}

func (w *WarmupService) Serve(ctx context.Context) error {
	for {
		err := w.fn(ctx)
		if err == nil {
			return suture.ErrDoNotRestart
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retry):
		}
	}
}

func (w *WarmupService) String() string { return w.name }
