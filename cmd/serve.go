package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/analytics"
	"github.com/desertthunder/hitscope/internal/server"
	"github.com/desertthunder/hitscope/internal/shared"
)

// Serve exposes the artist table over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d", shared.ErrInvalidFlag, cfg.Port)
	}

	rows, err := r.table(ctx)
	if err != nil {
		return err
	}
	revenue, err := analytics.NewRevenueModel(r.config.Revenue)
	if err != nil {
		return err
	}

	var info server.InfoCache
	if cache := r.infoCache(); cache != nil {
		info = cache
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	api := server.NewAPIHandler(rows, info, revenue, logger)
	handler := server.NewRouter(cfg, api, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr()
	r.writePlain("Serving %d artists on http://%s\n", len(rows), addr)
	return server.Serve(ctx, addr, handler, logger)
}
