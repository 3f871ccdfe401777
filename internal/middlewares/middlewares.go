package middlewares

import (
	"log"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/vlatan/sitemap-builder/internal/config"
)

type Service struct {
	config *config.Config
}

func New(config *config.Config) *Service {
	return &Service{config: config}
}

// Do not crash the app on panic, serve 500 error to the client
func (s *Service) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If in production recover panic
		if !s.config.Debug {
			defer func() {
				if err := recover(); err != nil {
					// Log the panic with stack trace
					log.Printf("Panic in %s %s: %#v", r.Method, r.URL.Path, err)

					// Return 500 to client
					http.Error(w, "Something went wrong", http.StatusInternalServerError)
				}
			}()
		}

		next.ServeHTTP(w, r)
	})
}

// Log every request with its status and duration
func (s *Service) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		recorder := NewStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		log.Printf(
			"%s %s %d %dB %v",
			r.Method, r.URL.Path, recorder.status, recorder.size, time.Since(start),
		)
	})
}

// Add headers common to every response
func (s *Service) AddHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Sitemaps are for crawlers, not for search results
		w.Header().Set("X-Robots-Tag", "noindex")

		next.ServeHTTP(w, r)
	})
}

// Let clients and proxies cache the documents, except when debugging
func (s *Service) PublicCache(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.config.Debug {
			w.Header().Set("Cache-Control", "max-age=600, must-revalidate")
		}
		next(w, r)
	}
}

// Compress provides gzip compression to the responses
func (s *Service) Compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// Chain middlewares that apply to all handlers
func (s *Service) ApplyToAll(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		// Apply middlewares in reverse order
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
