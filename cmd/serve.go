package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/hearify/internal/server"
	"github.com/desertthunder/hearify/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web interface until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}
	if r.catalog == nil {
		r.logger.Warn("Spotify credentials not configured, catalog fallback disabled")
	}

	app, err := web.New(web.Opts{
		Searcher:          r.search,
		Logger:            r.logger,
		SessionSecret:     cfg.SessionSecret,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Secure:            cmd.Bool("secure"),
	})
	if err != nil {
		return fmt.Errorf("failed to build web app: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Addr(), app)
	r.writePlain("Serving on http://%s\n", cfg.Addr())
	return server.ListenAndServe(ctx, srv, r.logger)
}
