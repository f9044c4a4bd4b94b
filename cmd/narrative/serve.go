package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wh0isdsmith/narr-ai-tive/internal/api"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
)

func newServeCommand(app *appContext) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chapter generation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(app)
			if err != nil {
				return err
			}
			defer eng.Close()

			if eng.cfg.Server.APIKey == "" {
				return fmt.Errorf("NARRATIVE_API_KEY is not set")
			}
			if port == "" {
				port = eng.cfg.Server.Port
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			orch := pipeline.NewOrchestrator(eng.ctrl, eng.cfg.Ingest.Workers, eng.log)
			orch.Start(ctx)

			srv := api.NewServer(orch, eng.client, eng.cfg.Server.APIKey, eng.log)
			httpServer := &http.Server{
				Addr:         ":" + port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				eng.log.Info("shutting down...")

				orch.Stop()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			eng.log.Info("starting narrative server", "port", port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (defaults to the configured port)")
	return cmd
}
