package sitemap

import (
	"log"
	"strings"

	"github.com/gobwas/glob"
)

// Filter decides whether a route path belongs in a sitemap.
// A path is kept iff it matches at least one include pattern
// and no exclude pattern. Without include patterns everything matches.
type Filter struct {
	includeAll bool
	include    []glob.Glob
	exclude    []glob.Glob
}

// NewFilter compiles the include and exclude patterns.
// Patterns that fail to compile are logged and skipped.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{
		includeAll: len(include) == 0,
		include:    compilePatterns(include),
		exclude:    compilePatterns(exclude),
	}
}

// Allow reports whether the route path passes the filter
func (f *Filter) Allow(routePath string) bool {

	for _, g := range f.exclude {
		if g.Match(routePath) {
			return false
		}
	}

	if f.includeAll {
		return true
	}

	for _, g := range f.include {
		if g.Match(routePath) {
			return true
		}
	}

	return false
}

// Apply keeps the allowed paths, in order and with duplicates
func (f *Filter) Apply(routePaths []string) []string {
	kept := make([]string, 0, len(routePaths))
	for _, p := range routePaths {
		if f.Allow(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func compilePatterns(patterns []string) []glob.Glob {
	var compiled []glob.Glob
	for _, pattern := range patterns {
		g, err := compileGlob(pattern)
		if err != nil {
			log.Printf("Skipping sitemap filter pattern '%s': %v", pattern, err)
			continue
		}
		compiled = append(compiled, g)
	}
	return compiled
}

// compileGlob compiles a slash separated glob.
// A trailing "/**" also matches the directory itself.
func compileGlob(pattern string) (glob.Glob, error) {

	pattern = strings.TrimSpace(pattern)
	if pattern != "/" && pattern != "/**" {
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if root, ok := strings.CutSuffix(pattern, "/**"); ok {
		if root == "" {
			root = "/"
		}
		pattern = "{" + root + "," + pattern + "}"
	}

	return glob.Compile(pattern, '/')
}
