package sitemaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vlatan/sitemap-builder/internal/cache"
	"github.com/vlatan/sitemap-builder/internal/config"
	"github.com/vlatan/sitemap-builder/internal/models"
	"github.com/vlatan/sitemap-builder/internal/sitemap"
)

func newTestService(t *testing.T, cfg *config.Config, input InputFunc) *Service {
	t.Helper()

	engine, err := sitemap.New(sitemap.Options{
		SiteURL:  cfg.SiteURL,
		Root:     models.SitemapConfig{Include: []string{"/**"}},
		Sitemaps: cfg.Sitemaps.Value,
		Credits:  true,
	})
	if err != nil {
		t.Fatalf("failed to create the engine; %v", err)
	}

	store, err := cache.NewMemory(8)
	if err != nil {
		t.Fatalf("failed to create the store; %v", err)
	}

	return New(engine, input, store, cfg)
}

func TestDocument(t *testing.T) {

	calls := 0
	input := func(ctx context.Context) (sitemap.Input, error) {
		calls++
		return sitemap.Input{URLs: []models.URLInput{{Path: "/about"}}}, nil
	}

	tests := []struct {
		name      string
		cacheTTL  time.Duration
		minify    bool
		wantCalls int
	}{
		{"cached", time.Minute, false, 1},
		{"not cached", 0, false, 3},
		{"minified", time.Minute, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			cfg := &config.Config{SiteURL: "https://example.com", CacheTTL: tt.cacheTTL, MinifyXML: tt.minify}
			s := newTestService(t, cfg, input)

			render := func(ctx context.Context, input sitemap.Input) (string, error) {
				return s.engine.Sitemap(ctx, sitemap.SingleName, input)
			}

			var doc string
			for range 3 {
				var err error
				doc, err = s.Document(context.Background(), "sitemap.xml", render)
				if err != nil {
					t.Fatalf("unexpected error; %v", err)
				}
			}

			if calls != tt.wantCalls {
				t.Errorf("got %d input calls, want %d", calls, tt.wantCalls)
			}

			if !strings.Contains(doc, "https://example.com/about") {
				t.Errorf("document misses the entry:\n%s", doc)
			}

			plain, err := render(context.Background(), sitemap.Input{URLs: []models.URLInput{{Path: "/about"}}})
			if err != nil {
				t.Fatalf("unexpected error; %v", err)
			}

			if minified := len(doc) < len(plain); minified != tt.minify {
				t.Errorf("got minified = %t, want %t", minified, tt.minify)
			}
		})
	}
}

func TestSitemapPartHandler(t *testing.T) {

	cfg := &config.Config{SiteURL: "https://example.com", CacheTTL: time.Minute, Stylesheet: true}
	cfg.Sitemaps.Value = models.Sitemaps{Auto: true}

	failing := false
	s := newTestService(t, cfg, func(ctx context.Context) (sitemap.Input, error) {
		if failing {
			return sitemap.Input{}, errors.New("down")
		}
		return sitemap.Input{URLs: []models.URLInput{{Path: "/about"}}}, nil
	})

	tests := []struct {
		name    string
		file    string
		failing bool
		status  int
	}{
		{"default sitemap", "pages-sitemap.xml", false, http.StatusOK},
		{"unknown sitemap", "posts-sitemap.xml", false, http.StatusNotFound},
		{"not a sitemap", "robots.txt", false, http.StatusNotFound},
		{"failing input", "other-sitemap.xml", true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing = tt.failing

			recorder := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/"+tt.file, nil)
			req.SetPathValue("file", tt.file)

			s.SitemapPartHandler(recorder, req)

			if recorder.Code != tt.status {
				t.Errorf("got status %d, want %d", recorder.Code, tt.status)
			}
		})
	}
}

func TestSitemapStyleHandler(t *testing.T) {

	tests := []struct {
		name       string
		stylesheet bool
		status     int
	}{
		{"enabled", true, http.StatusOK},
		{"disabled", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{SiteURL: "https://example.com", Stylesheet: tt.stylesheet}
			s := newTestService(t, cfg, nil)

			recorder := httptest.NewRecorder()
			s.SitemapStyleHandler(recorder, httptest.NewRequest("GET", sitemap.StylesheetPath, nil))

			if recorder.Code != tt.status {
				t.Errorf("got status %d, want %d", recorder.Code, tt.status)
			}
		})
	}
}
