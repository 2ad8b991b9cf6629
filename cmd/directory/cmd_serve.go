package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/staffdir/internal/directory/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, true, func(_ context.Context, a *app, _ io.Writer) error {
			handler := handlers.NewEmployeeHandler(a.service, a.languages, logger)
			server := handlers.NewServer(cfg.Server.GRPCPort, cfg.Server.HTTPPort, logger)
			server.SetShutdownTimeout(cfg.Server.ShutdownTimeout)
			if err := server.RegisterHTTPHandlers(handler, cfg.Auth.JWTSecret); err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				logger.Warn("auth.jwt_secret is empty, mutating routes are not protected")
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			return waitForShutdown(server, errCh)
		})
	},
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, or the
// servers fail, then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			server.Stop()
			return err
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
	return <-errCh
}
