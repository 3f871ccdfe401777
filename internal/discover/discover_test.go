package discover

import (
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vlatan/sitemap-builder/internal/models"
)

var site, _ = url.Parse("https://example.com")

func TestImages(t *testing.T) {

	tests := []struct {
		name     string
		html     string
		expected []models.Image
	}{
		{
			"outside main",
			`<header><img src="/logo.png"></header><main><p>text</p></main>`,
			nil,
		},
		{
			"no main",
			`<body><img src="/a.png"></body>`,
			nil,
		},
		{
			"relative and absolute",
			`<main><img src="/a.png"><img src="b.jpg"><img src="https://cdn.example.org/c.webp"></main>`,
			[]models.Image{
				{Loc: "https://example.com/a.png"},
				{Loc: "https://example.com/b.jpg"},
				{Loc: "https://cdn.example.org/c.webp"},
			},
		},
		{
			"repeated images kept, data uris skipped",
			`<main><img src="/a.png"><img src="data:image/png;base64,AAAA"><img src="/a.png"><img alt="x"></main>`,
			[]models.Image{{Loc: "https://example.com/a.png"}, {Loc: "https://example.com/a.png"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Images(strings.NewReader(tt.html), site)
			if err != nil {
				t.Fatalf("unexpected error; %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Images mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollect(t *testing.T) {

	pages := []Page{
		{Route: "/", Body: strings.NewReader(`<main><img src="/hero.png"></main>`)},
		{Route: "/about", Body: strings.NewReader(`<main></main>`)},
	}

	got, err := Collect(pages, site)
	if err != nil {
		t.Fatalf("unexpected error; %v", err)
	}

	expected := map[string][]models.Image{
		"/": {{Loc: "https://example.com/hero.png"}},
	}

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Collect mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteFromFile(t *testing.T) {

	tests := []struct {
		name     string
		file     string
		expected string
		ok       bool
	}{
		{"root index", "index.html", "/", true},
		{"nested index", "blog/post-1/index.html", "/blog/post-1", true},
		{"flat file", "about.html", "/about", true},
		{"error page", "404.html", "", false},
		{"spa fallback", "200.html", "", false},
		{"private file", "blog/_draft.html", "", false},
		{"not html", "robots.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RouteFromFile(tt.file)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("got (%q, %t), want (%q, %t)", got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestFromDir(t *testing.T) {

	dir := t.TempDir()
	files := map[string]string{
		"index.html":       `<main><img src="/hero.png"></main>`,
		"about/index.html": `<main><p>about</p></main>`,
		"blog/post-1.html": `<main><img src="cover.jpg"></main>`,
		"404.html":         `<main><img src="/lost.png"></main>`,
		"_nuxt/entry.html": `<main></main>`,
		"styles/main.css":  `main{}`,
	}

	modTime := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}

	routes, discovered, err := FromDir(dir, site)
	if err != nil {
		t.Fatalf("unexpected error; %v", err)
	}

	slices.Sort(routes)
	if diff := cmp.Diff([]string{"/", "/about", "/blog/post-1"}, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}

	expectedImages := map[string][]models.Image{
		"/":            {{Loc: "https://example.com/hero.png"}},
		"/blog/post-1": {{Loc: "https://example.com/cover.jpg"}},
	}

	if diff := cmp.Diff(expectedImages, discovered.Images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}

	for _, route := range routes {
		if got := discovered.Lastmod[route]; !got.Equal(modTime) {
			t.Errorf("route %s: got lastmod %v, want %v", route, got, modTime)
		}
	}

	if _, _, err := FromDir(filepath.Join(dir, "missing"), site); err == nil {
		t.Errorf("got no error for a missing directory")
	}
}
