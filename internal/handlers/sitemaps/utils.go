package sitemaps

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/vlatan/sitemap-builder/internal/cache"
)

const xmlContentType = "text/xml; charset=UTF-8"

// getOrRender caches documents under the config version and file name
func (s *Service) getOrRender(ctx context.Context, file string, render func() (string, error)) (string, error) {
	key := cache.Key(s.version, file)
	return cache.GetOrRender(ctx, s.store, key, s.config.CacheTTL, render)
}

// minify compacts the document when enabled
func (s *Service) minify(doc string) (string, error) {
	if s.minifier == nil {
		return doc, nil
	}

	out, err := s.minifier.String("text/xml", doc)
	if err != nil {
		return "", fmt.Errorf("couldn't minify the document; %w", err)
	}

	return out, nil
}

// writeXML writes an XML body with an ETag,
// answering conditional requests with 304
func writeXML(w http.ResponseWriter, r *http.Request, body []byte) {

	etag := fmt.Sprintf(`"%x"`, md5.Sum(body))
	w.Header().Set("Content-Type", xmlContentType)
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		return
	}

	if _, err := w.Write(body); err != nil {
		log.Printf("Failed to write response on '%s'; %v", r.URL.Path, err)
	}
}
