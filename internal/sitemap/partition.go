package sitemap

import (
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"github.com/vlatan/sitemap-builder/internal/models"
)

const (
	// SingleName is the name of the only sitemap when multi-sitemap mode is off
	SingleName = "sitemap"
	// DefaultAutoName receives untagged entries when partitioning automatically
	DefaultAutoName = "pages"

	IndexFile  = "sitemap_index.xml"
	fileSuffix = "-sitemap.xml"
)

// FileName returns the document file name of a sitemap
func FileName(name string) string {
	if name == SingleName {
		return SingleName + ".xml"
	}
	return name + fileSuffix
}

// NameFromFile extracts the sitemap name from "<name>-sitemap.xml"
func NameFromFile(file string) (string, bool) {
	name, ok := strings.CutSuffix(strings.TrimPrefix(file, "/"), fileSuffix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// target is one sitemap built independently through
// normalization, filtering, rule resolution and entry building
type target struct {
	name     string
	filter   *Filter
	defaults models.EntryFields
	urls     []models.URLInput
}

func newTarget(name string, cfg models.SitemapConfig) target {
	return target{
		name:     name,
		filter:   NewFilter(cfg.Include, cfg.Exclude),
		defaults: cfg.Defaults,
		urls:     cfg.URLs,
	}
}

// effectiveConfig layers a named sitemap's config over the root one.
// Include and exclude lists replace the root lists when set,
// defaults are merged and URLs appended.
func effectiveConfig(root, sub models.SitemapConfig) models.SitemapConfig {

	cfg := root

	if len(sub.Include) > 0 {
		cfg.Include = sub.Include
	}

	if len(sub.Exclude) > 0 {
		cfg.Exclude = sub.Exclude
	}

	cfg.Defaults = MergeFields(root.Defaults, sub.Defaults)
	cfg.URLs = append(slices.Clip(root.URLs), sub.URLs...)

	return cfg
}

// partition buckets entries by their sitemap tag.
// Untagged entries land in the automatic default sitemap.
// Names are returned in first-seen order.
func (e *Engine) partition(items []built) ([]string, map[string][]models.SitemapEntry) {

	var names []string
	buckets := make(map[string][]models.SitemapEntry)

	for _, item := range items {
		name := e.autoSitemapName(item.tag)
		if _, ok := buckets[name]; !ok {
			names = append(names, name)
		}
		buckets[name] = append(buckets[name], item.entry)
	}

	return names, buckets
}

func (e *Engine) autoSitemapName(tag string) string {
	if tag == "" {
		return e.autoName
	}
	if name := slug.Make(tag); name != "" {
		return name
	}
	return e.autoName
}
