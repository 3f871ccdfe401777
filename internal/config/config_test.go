package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vlatan/sitemap-builder/internal/models"
)

func TestParse(t *testing.T) {

	t.Setenv("SITE_URL", "https://example.com")
	t.Setenv("SITEMAP_EXCLUDE", `["/admin/**", "/drafts/**"]`)
	t.Setenv("SITEMAP_DEFAULTS", `{"changefreq": "weekly", "lastmod": "2023-06-01"}`)
	t.Setenv("SITEMAP_URLS", `["/about", {"loc": "/blog", "priority": 0.7}]`)
	t.Setenv("SITEMAP_SITEMAPS", `{"posts": {"include": ["/blog/**"]}, "pages": {}}`)
	t.Setenv("SITEMAP_ROUTE_RULES", `{"/blog/**": {"sitemap": {"priority": 0.5}}}`)
	t.Setenv("CACHE_TTL", "10m")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error; %v", err)
	}

	if err = cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error; %v", err)
	}

	if diff := cmp.Diff(Patterns{"/**"}, cfg.Include); diff != "" {
		t.Errorf("include mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(Patterns{"/admin/**", "/drafts/**"}, cfg.Exclude); diff != "" {
		t.Errorf("exclude mismatch (-want +got):\n%s", diff)
	}

	if cfg.Defaults.Value.ChangeFreq != models.Weekly || cfg.Defaults.Value.Lastmod == nil {
		t.Errorf("unexpected defaults %+v", cfg.Defaults.Value)
	}

	if len(cfg.URLs.Value) != 2 || cfg.URLs.Value[1].Path != "/blog" {
		t.Errorf("unexpected urls %+v", cfg.URLs.Value)
	}

	if diff := cmp.Diff([]string{"posts", "pages"}, cfg.Sitemaps.Value.Names); diff != "" {
		t.Errorf("sitemap names mismatch (-want +got):\n%s", diff)
	}

	if len(cfg.RouteRules.Value) != 1 || cfg.RouteRules.Value[0].Pattern != "/blog/**" {
		t.Errorf("unexpected route rules %+v", cfg.RouteRules.Value)
	}

	checks := []struct {
		name     string
		got      any
		expected any
	}{
		{"auto lastmod", cfg.AutoLastmod, true},
		{"stylesheet", cfg.Stylesheet, true},
		{"credits", cfg.Credits, true},
		{"base", cfg.BaseURL, "/"},
		{"auto name", cfg.AutoName, "pages"},
		{"cache ttl", cfg.CacheTTL, 10 * time.Minute},
		{"cache store", cfg.CacheStore, MemoryStore},
	}

	for _, c := range checks {
		if c.got != c.expected {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.expected)
		}
	}
}

func TestValidate(t *testing.T) {

	valid := Config{SiteURL: "https://example.com", AutoName: "pages", CacheStore: MemoryStore}

	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr bool
	}{
		{"valid", func(cfg *Config) {}, false},
		{"missing site url", func(cfg *Config) { cfg.SiteURL = "" }, true},
		{"relative site url", func(cfg *Config) { cfg.SiteURL = "/about" }, true},
		{"bad sitemap name", func(cfg *Config) {
			cfg.Sitemaps.Value = models.Sitemaps{Names: []string{"a/b"}}
		}, true},
		{"empty auto name", func(cfg *Config) { cfg.AutoName = " " }, true},
		{"unknown cache store", func(cfg *Config) { cfg.CacheStore = "disk" }, true},
		{"negative concurrency", func(cfg *Config) { cfg.Concurrency = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("got error = %v, want error = %t", err, tt.wantErr)
			}
		})
	}
}

func TestPatternsUnmarshalText(t *testing.T) {

	tests := []struct {
		name     string
		text     string
		expected Patterns
		wantErr  bool
	}{
		{"json", `["/a/**", "/{b,c}"]`, Patterns{"/a/**", "/{b,c}"}, false},
		{"fields", " /a/**  /b ", Patterns{"/a/**", "/b"}, false},
		{"broken json", `["/a"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Patterns
			err := got.UnmarshalText([]byte(tt.text))
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Fatalf("got error = %v, want error = %t", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Patterns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVersion(t *testing.T) {

	base := Config{SiteURL: "https://example.com", Include: Patterns{"/**"}, AutoName: "pages"}

	same := base
	changed := base
	changed.Exclude = Patterns{"/admin/**"}
	unrelated := base
	unrelated.Port = 8080

	if base.Version() != same.Version() {
		t.Errorf("equal configs got different versions")
	}

	if base.Version() == changed.Version() {
		t.Errorf("changed config kept version %s", base.Version())
	}

	if base.Version() != unrelated.Version() {
		t.Errorf("unrelated setting changed the version")
	}
}
