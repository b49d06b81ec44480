package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gogotex/docserve/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			if a.Config.Server.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:         fmt.Sprintf("%s:%s", a.Config.Server.Host, a.Config.Server.Port),
				Handler:      a.Router(),
				ReadTimeout:  a.Config.Server.ReadTimeout,
				WriteTimeout: a.Config.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("docserve listening on %s", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
