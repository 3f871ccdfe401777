package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vlatan/sitemap-builder/internal/config"
	"github.com/vlatan/sitemap-builder/internal/worker"
)

func main() {

	out := flag.String("out", "", "directory the sitemaps are written to")
	upload := flag.Bool("upload", false, "upload the sitemaps to the R2 bucket")
	prefix := flag.String("prefix", "", "key prefix of the uploaded sitemaps")
	envFile := flag.String("env", "", "optional .env file to load")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("couldn't load '%s': %v", *envFile, err)
		}
	}

	// Listen for interruption signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New()

	w, err := worker.New(ctx, cfg, *upload)
	if err != nil {
		log.Fatalf("failed to create the worker: %v", err)
	}
	defer w.Close()

	opts := worker.Options{OutDir: *out, Upload: *upload, Prefix: *prefix}
	if err = w.Run(ctx, opts); err != nil {
		log.Println(err)
		w.Close()
		os.Exit(1)
	}
}
