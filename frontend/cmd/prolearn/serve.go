package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prolearn/prolearn/frontend/internal/router"
	"github.com/prolearn/prolearn/frontend/internal/setup"
	"github.com/prolearn/prolearn/shared/logger"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 2 * time.Minute // submits stream up to 90MB to the backend
	shutdownTimeout = 15 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the frontend HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Public.ListenAddr = addr
			}

			deps, err := setup.SetupDependencies(c.cfg)
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			server := &http.Server{
				Addr:         c.cfg.Public.ListenAddr,
				Handler:      router.New(deps),
				ReadTimeout:  readTimeout,
				WriteTimeout: writeTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Log.Info("starting frontend", "addr", server.Addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Log.Info("shutting down frontend")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides listen_addr")
	return cmd
}
