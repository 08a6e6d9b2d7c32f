package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/YorHaaa/ATAI/internal/httpapi"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
	"github.com/YorHaaa/ATAI/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server and, optionally, the REST API",
		RunE:  runServe,
	}
	cmd.Flags().String("transport", "stdio", "MCP transport: stdio or sse")
	cmd.Flags().String("addr", ":8080", "Address to listen on when using SSE transport")
	cmd.Flags().String("sse-endpoint", "/sse", "SSE endpoint path when using SSE transport")
	cmd.Flags().String("http-addr", "", "Address of the REST API (disabled when empty)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing service")
		}
	}()

	if err := metrics.Init(cfg.Metrics.Prometheus, cfg.Metrics.Addr); err != nil {
		return err
	}

	errc := make(chan error, 2)
	if cfg.Server.HTTPAddr != "" {
		srv := &http.Server{
			Addr: cfg.Server.HTTPAddr,
			Handler: httpapi.NewRouter(svc, httpapi.Options{
				CORSOrigins:       cfg.Server.CORSOrigins,
				RateLimitRequests: cfg.Server.RateLimitRequests,
				RateLimitWindow:   cfg.Server.RateLimitWindow,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		go func() {
			logging.Info().Str("addr", cfg.Server.HTTPAddr).Msg("REST API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	mcpServer := server.NewMCPServer(svc)
	logging.Info().Str("transport", cfg.Server.Transport).Msg("Starting MCP server")
	go func() {
		switch cfg.Server.Transport {
		case "sse":
			errc <- mcpServer.RunSSE(ctx, cfg.Server.Addr, cfg.Server.SSEEndpoint)
		default:
			errc <- mcpServer.Run(ctx)
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, closing server")
	case err := <-errc:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Server error")
			return err
		}
	}
	logging.Info().Msg("Server stopped")
	return nil
}
