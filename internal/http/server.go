package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/runtimeconfig"
	"github.com/nycb2b/site/pkg/interfaces"
)

// NewHandler mounts the public and admin APIs on a fresh mux wrapped with the
// request middleware. A nil admin API leaves the admin surface unmounted.
func NewHandler(cfg runtimeconfig.HTTPConfig, public *PublicAPI, admin *AdminAPI, logger interfaces.Logger) (http.Handler, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	mux := http.NewServeMux()
	if public != nil {
		if err := public.Register(mux); err != nil {
			return nil, err
		}
	}
	if admin != nil {
		if err := admin.Register(mux); err != nil {
			return nil, err
		}
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return Chain(mux, Recoverer(logger), RequestLogger(logger), LimitBody(cfg.MaxBodyBytes)), nil
}

// NewServer builds an http.Server with the configured address and timeouts.
func NewServer(cfg runtimeconfig.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// Serve runs server until ctx is cancelled, then shuts it down within the
// configured shutdown timeout.
func Serve(ctx context.Context, server *http.Server, cfg runtimeconfig.HTTPConfig, logger interfaces.Logger) error {
	if logger == nil {
		logger = logging.NoOp()
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.server.listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, cfg.ShutdownTimeout)
		defer cancel()
	}
	logger.Info("http.server.shutdown")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
