package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/chepyr/go-task-list/internal/handlers"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

func serveCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), load)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				a.cfg.ServerPort = port
			}
			return runServer(cmd.Context(), a)
		},
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SERVER_PORT)")

	return cmd
}

func initHandlers(a *app) *handlers.Handler {
	return &handlers.Handler{
		Tasks:          a.tasks,
		Settings:       a.settings,
		RateLimiter:    handlers.NewRateLimiter(a.cfg.RateLimit, a.cfg.RateWindow),
		WSHub:          handlers.NewWSHub(),
		AllowedOrigins: a.cfg.AllowedOrigins,
	}
}

func initServer(a *app, h *handlers.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func runServer(ctx context.Context, a *app) error {
	h := initHandlers(a)
	server := initServer(a, h)

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.Close()
		h.RateLimiter.Stop()
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	log.Printf("Starting tasklist server on %s (storage: %s)", listener.Addr(), a.cfg.StorageDriver)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, a.cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Println("Shutting down server")
			h.WSHub.CloseAll()
			h.RateLimiter.Stop()
			return server.Shutdown(ctx)
		},
	})

	exitCode := <-wait
	if err := a.Close(); err != nil {
		log.Printf("Failed to close storage: %v", err)
	}
	log.Printf("Server stopped with code %d", exitCode)
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", exitCode)
	}
	return nil
}
