package main

import (
	"log"

	"github.com/vlatan/sitemap-builder/internal/app"
	"github.com/vlatan/sitemap-builder/internal/config"
)

func main() {

	// Exits on an unusable config
	cfg := config.New()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to create the app: %v", err)
	}

	if err = a.Run(); err != nil {
		log.Fatalf("http server error: %v", err)
	}
}
