package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// Run runs the app by making the HTTP server listen and serve
func (a *App) Run() error {

	// Create a notification channel to receive a signal
	// from when a shutdown is complete
	done := make(chan struct{})

	// Listen for SIGINT SIGTERM in a separate goroutine
	// Gracefully shut down the server there if needed.
	go a.Shutdown(done)

	fmt.Printf("Server running on: http://%s\n", a.server.Addr)
	fmt.Printf("Sitemaps available at: %s\n", a.config.SiteURL)

	// If the HTTP server was shut down, meaning
	// a.server.Shutdown(ctx) method was called,
	// ListenAndServe will return ErrServerClosed.
	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	<-done // Wait for the graceful shutdown to complete
	log.Println("Graceful shutdown complete.")

	return nil
}

// Shutdown listens for SIGINT and SIGTERM signals,
// shuts down the server, closes the connections and
// informs the Run goroutine
func (a *App) Shutdown(done chan<- struct{}) {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Blocks until an interruption signal is received
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// Stop watching for termination signals,
	// a second Ctrl+C kills the process immediately
	stop()

	// Give the server 5 seconds to finish the requests it is handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if err := a.Close(); err != nil {
		log.Printf("Error during cleanup: %v", err)
	}

	log.Println("Server exiting...")

	// Notify the Run goroutine that the shutdown is complete
	done <- struct{}{}
}
