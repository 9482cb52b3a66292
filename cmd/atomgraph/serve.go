package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shivavenkatesh/atomgraph/internal/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server exposing splitting and graph building over a JSON API.

Examples:
  atomgraph serve
  atomgraph serve --port 3457
  atomgraph serve --host 0.0.0.0 --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := initService()
	if err != nil {
		return err
	}
	defer a.Close()

	host, port := a.cfg.Server.Host, a.cfg.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(a.svc, server.Config{
		Host: host,
		Port: port,
	}, a.logger)

	// Handle graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		fmt.Println("\nShutting down...")
		srv.Shutdown()
	}()

	fmt.Printf("atomgraph server listening on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  POST   /split       - Split text into atoms")
	fmt.Println("  POST   /graphs      - Build a graph from payloads")
	fmt.Println("  GET    /graphs      - List graphs")
	fmt.Println("  GET    /graphs/:id  - Get a graph")
	fmt.Println("  DELETE /graphs/:id  - Delete a graph")
	fmt.Println("  POST   /index       - Build a graph from a file or directory")
	fmt.Println("  GET    /strategies  - List splitting strategies")
	fmt.Println("  GET    /stats       - Get statistics")
	fmt.Println("  GET    /health      - Health check")

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
