package sitemap

import (
	"errors"
	"net/url"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url '%s'; %v", raw, err)
	}
	return u
}

func TestNormalize(t *testing.T) {

	site := mustParseURL(t, "https://example.com")

	tests := []struct {
		name          string
		base          string
		trailingSlash bool
		raw           string
		expected      string
		wantErr       bool
	}{
		{"root", "", false, "/", "/", false},
		{"simple path", "", false, "/about", "/about", false},
		{"missing leading slash", "", false, "about", "/about", false},
		{"duplicate slashes", "", false, "/blog//post-1", "/blog/post-1", false},
		{"trailing slash removed", "", false, "/about/", "/about", false},
		{"trailing slash added", "", true, "/about", "/about/", false},
		{"root keeps slash", "", true, "/", "/", false},
		{"file never gets slash", "", true, "/feed.xml", "/feed.xml", false},
		{"file trailing slash removed", "", false, "/releases/v1.2/", "/releases/v1.2", false},
		{"file trailing slash kept", "", true, "/releases/v1.2/", "/releases/v1.2/", false},
		{"query kept, fragment dropped", "", false, "/search?q=go#top", "/search?q=go", false},
		{"same site absolute", "", false, "https://example.com/about/", "/about", false},
		{"other site absolute", "", false, "https://other.com/x/", "https://other.com/x/", false},
		{"base applied", "/docs", false, "/about", "/docs/about", false},
		{"base applied once", "/docs", false, "/docs/about", "/docs/about", false},
		{"base root", "/docs", false, "/", "/docs", false},
		{"route equal to base is the base root", "/docs", false, "/docs/", "/docs", false},
		{"base with slashes", "docs/", true, "/about", "/docs/about/", false},
		{"empty", "", false, "", "", true},
		{"whitespace", "", false, "/a b", "", true},
		{"unsupported scheme", "", false, "ftp://example.com/a", "", true},
		{"missing host", "", false, "https:///a", "", true},
		{"invalid utf-8", "", false, "https://other.com/\xff", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(site, tt.base, tt.trailingSlash)

			got, err := n.Normalize(tt.raw)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Fatalf("got error = %v, want error = %t", err, tt.wantErr)
			}

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLoc) {
					t.Errorf("got error = %v, want %v", err, ErrInvalidLoc)
				}
				return
			}

			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}

			again, err := n.Normalize(got)
			if err != nil {
				t.Fatalf("failed to normalize %q again; %v", got, err)
			}

			if again != got {
				t.Errorf("not idempotent, got %q, then %q", got, again)
			}
		})
	}
}

func TestLoc(t *testing.T) {

	tests := []struct {
		name     string
		site     string
		base     string
		raw      string
		expected string
	}{
		{"root", "https://example.com", "", "/", "https://example.com/"},
		{"page", "https://example.com/", "", "/about", "https://example.com/about"},
		{"site with path", "https://example.com/app", "", "/about", "https://example.com/app/about"},
		{"same site path stripped", "https://example.com/app", "", "https://example.com/app/about", "https://example.com/app/about"},
		{"base", "https://example.com", "/docs", "/intro", "https://example.com/docs/intro"},
		{"external", "https://example.com", "", "https://cdn.com/a.png", "https://cdn.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(mustParseURL(t, tt.site), tt.base, false)
			got, err := n.Loc(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error; %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRoutePath(t *testing.T) {

	n := NewNormalizer(mustParseURL(t, "https://example.com"), "/docs", true)

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"base root", "/", "/"},
		{"page", "/intro", "/intro"},
		{"query", "/intro?x=1", "/intro"},
		{"nested", "/guide/setup/", "/guide/setup"},
		{"route equal to base", "/docs", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := n.Normalize(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error; %v", err)
			}
			if got := n.RoutePath(p); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
