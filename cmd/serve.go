package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdftools/internal/handlers"
	"github.com/lehigh-university-libraries/pdftools/internal/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the PDF tools JSON API",
		Long: `Starts the pdftools HTTP API on the configured port.

Clients create a session, select a tool, upload or describe files and
start processing. Progress is polled from the session resource.`,
		Example: `  # Start server on default port 8888
  pdftools serve

  # Start server on custom port
  pdftools serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			hist, err := opts.openHistory()
			if err != nil {
				return err
			}
			var lister handlers.HistoryLister
			if hist != nil {
				defer hist.Close()
				lister = hist
			}

			ctx := cmd.Context()
			store := storage.New()
			service := opts.newService(hist)
			if cfg.Sessions.TTL > 0 {
				go store.Sweep(ctx, cfg.Sessions.TTL, cfg.Sessions.SweepInterval)
			}

			handler := handlers.New(handlers.Options{
				BaseContext:    ctx,
				Store:          store,
				Service:        service,
				History:        lister,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
			})

			// Set up routes
			mux := http.NewServeMux()
			handler.Register(mux)

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("pdftools API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				// in-flight operations end with the base context
				service.Wait()
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (overrides server.port)")

	return cmd
}
