package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/photocrop/internal/config"
	"github.com/example/photocrop/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editing API server",
	Long: `Start the Photocrop web server.
The server exposes editing sessions over HTTP: upload photos, apply
pinch/pan gestures, reorder by drag, and export the cropped results.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	host := cfg.Web.Host
	port := cfg.Web.Port
	if v := mustGetString(cmd, "host"); v != "" {
		host = v
	}
	if v := mustGetInt(cmd, "port"); v != 0 {
		port = v
	}

	server := web.NewServer(cfg, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Photocrop API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
