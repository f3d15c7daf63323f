package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/internal/server"
)

// newServeCmd creates the serve command for running the HTTP render
// service.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long:  `Serve exposes rendering over HTTP: POST a profile document to /render and receive the colored tree, DOT, or SVG output. Rendered output is cached using the configured cache backend.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if addr == "" {
				addr = cfg.Server.Addr
			}
			return runServe(cmd.Context(), addr, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func runServe(ctx context.Context, addr string, cfg Config) error {
	logger := loggerFromContext(ctx)

	store := openCache(ctx, cfg.Cache)
	defer store.Close()

	srv := server.New(server.Config{
		Addr:     addr,
		Cache:    store,
		CacheTTL: cfg.Cache.TTLDuration(),
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
