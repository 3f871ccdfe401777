package app

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/vlatan/sitemap-builder/internal/sitemap"
)

// RegisterRoutes registers routes and
// assigns custom handler to the HTTP server
func (a *App) RegisterRoutes() *App {
	mux := http.NewServeMux()

	// Sitemaps
	mux.HandleFunc("GET /sitemap.xml", a.mw.PublicCache(a.sitemaps.SitemapHandler))
	mux.HandleFunc("GET /"+sitemap.IndexFile, a.mw.PublicCache(a.sitemaps.SitemapIndexHandler))
	mux.HandleFunc("GET /{file}", a.mw.PublicCache(a.sitemaps.SitemapPartHandler))
	mux.HandleFunc("GET "+sitemap.StylesheetPath, a.mw.PublicCache(a.sitemaps.SitemapStyleHandler))

	// Simple health check
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Robots-Tag", "noindex")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write response on '%s'; %v", r.URL.Path, err)
		}
	})

	// Health of the backing services
	mux.HandleFunc("GET /health/{$}", a.healthHandler)

	// Serve the routes under the base path
	var handler http.Handler = mux
	if base := strings.TrimSuffix("/"+strings.Trim(a.config.BaseURL, "/"), "/"); base != "" {
		handler = http.StripPrefix(base, mux)
	}

	// Chain middlewares that apply to all requests.
	// The order is important.
	a.server.Handler = a.mw.ApplyToAll(
		a.mw.RecoverPanic,
		a.mw.Logging,
		a.mw.AddHeaders,
		a.mw.Compress,
	)(handler)

	return a
}

// Report the health of the DB and Redis, when in use
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {

	stats := map[string]any{"status": "up"}

	if a.db != nil {
		stats["db"] = a.db.Health(r.Context())
	}

	if a.rdb != nil {
		stats["redis"] = a.rdb.Health(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("Failed to write response on '%s'; %v", r.URL.Path, err)
	}
}
