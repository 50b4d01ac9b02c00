package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/hitscope/internal/shared"
)

// NewRouter builds the API router wrapped in the standard middleware chain:
// CORS, request id, panic recovery, access log and metrics, then per-IP rate limiting.
//
// The chain wraps the whole router, so preflight OPTIONS requests are answered before
// method matching and requests that match no route are still logged and counted.
func NewRouter(cfg shared.ServerConfig, api *APIHandler, logger *log.Logger) http.Handler {
	r := NewBasicRouter()
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(api.Health))
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handler(api)

	return Chain(r,
		CORS(cfg.AllowedOrigins),
		RequestID(),
		Recover(logger),
		AccessLog(logger),
		RateLimit(cfg.RateLimit),
	)
}

// Serve listens on addr until ctx is canceled, then drains in-flight requests for up to five seconds.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
