// Package cli wires the homehelp processes behind cobra subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homehelp/homehelp-api/config"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal
const shutdownTimeout = 10 * time.Second

var portFlag string

var rootCmd = &cobra.Command{
	Use:   "homehelp",
	Short: "Home-service marketplace: gateway, identity, booking and notifier processes",
	Long: `homehelp runs one of the marketplace processes. The gateway authenticates
requests and proxies them to the identity and booking services, which share a
PostgreSQL database. The booking service sends confirmations to the notifier.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "Port to listen on (overrides PORT)")
}

// Execute runs the root command until it returns or the process is signalled
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration and builds the process logger
func loadConfig(component string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	return cfg, cfg.NewLogger(component), nil
}

// serve runs handler on addr until ctx is cancelled, then drains connections
func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr))
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
