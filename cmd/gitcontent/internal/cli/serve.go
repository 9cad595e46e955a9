package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-gitcontent/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered page and keep it refreshed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Bool("watch", false, "reload when files under the local root change")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	module, err := a.module()
	if err != nil {
		return err
	}
	logger := logging.CLILogger(module.Container().LoggerProvider())
	if a.configUsed != "" {
		logger.Info("cli.config.loaded", "path", a.configUsed)
	}

	// The page renders an error panel for a failed first load, so the
	// server still comes up.
	if err := module.Start(ctx); err != nil {
		logger.Warn("cli.initial_load.failed", "error", err)
	}
	defer module.Stop()

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           module.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cli.server.listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logger.Info("cli.server.shutdown")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
