// Package sitemap computes the URLs a site exposes
// and renders them into sitemap and sitemap index documents.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"net/url"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/vlatan/sitemap-builder/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingSiteURL = errors.New("a site URL is required to generate absolute sitemap URLs")
	ErrInvalidSiteURL = errors.New("invalid site URL")
	ErrUnknownSitemap = errors.New("unknown sitemap")
	ErrNoIndex        = errors.New("sitemap index requires multi-sitemap mode")
)

// Options configure an Engine
type Options struct {
	SiteURL       string
	Base          string
	TrailingSlash bool
	AutoLastmod   bool

	// Root applies to the single sitemap and is
	// the fallback configuration of every named sitemap
	Root     models.SitemapConfig
	Sitemaps models.Sitemaps
	AutoName string

	RouteRules []models.RouteRule
	// Matcher, when set, replaces the matcher compiled from RouteRules
	Matcher Matcher

	Stylesheet  bool
	Credits     bool
	Concurrency int

	Now func() time.Time
}

// Discovered is data found outside of configuration,
// keyed by route path. It must be complete before a build starts.
type Discovered struct {
	Images  map[string][]models.Image
	Lastmod map[string]time.Time
}

// Input is everything a build consumes besides the Options
type Input struct {
	URLs       []models.URLInput
	Discovered Discovered
}

type built struct {
	entry models.SitemapEntry
	tag   string
}

// Engine builds sitemap documents. It holds only read-only state
// and is safe for concurrent use.
type Engine struct {
	opts        Options
	normalizer  *Normalizer
	resolver    *Resolver
	root        target
	named       map[string]target
	autoName    string
	concurrency int
	now         func() time.Time
}

// New validates the options and precompiles filters and route rules
func New(opts Options) (*Engine, error) {

	site, err := parseSiteURL(opts.SiteURL)
	if err != nil {
		return nil, err
	}

	matcher := opts.Matcher
	if matcher == nil {
		matcher = NewRuleMatcher(opts.RouteRules)
	}

	e := &Engine{
		opts:        opts,
		normalizer:  NewNormalizer(site, opts.Base, opts.TrailingSlash),
		resolver:    NewResolver(matcher),
		root:        newTarget(SingleName, opts.Root),
		named:       make(map[string]target, len(opts.Sitemaps.Names)),
		autoName:    opts.AutoName,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}

	if e.autoName == "" {
		e.autoName = DefaultAutoName
	}

	if e.concurrency <= 0 {
		e.concurrency = runtime.GOMAXPROCS(0)
	}

	if e.now == nil {
		e.now = time.Now
	}

	for _, name := range opts.Sitemaps.Names {
		cfg := effectiveConfig(opts.Root, opts.Sitemaps.Configs[name])
		e.named[name] = newTarget(name, cfg)
	}

	return e, nil
}

func parseSiteURL(raw string) (*url.URL, error) {

	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingSiteURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w '%s'; %v", ErrInvalidSiteURL, raw, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w '%s'; must be an absolute http(s) URL", ErrInvalidSiteURL, raw)
	}

	return u, nil
}

// Mode returns the multi-sitemap mode of the engine
func (e *Engine) Mode() models.SitemapsMode {
	return e.opts.Sitemaps.Mode()
}

// Normalizer exposes the path normalizer the engine uses
func (e *Engine) Normalizer() *Normalizer {
	return e.normalizer
}

// RenderOptions returns the document wrapping options
func (e *Engine) RenderOptions() RenderOptions {
	opts := RenderOptions{Credits: e.opts.Credits}
	if e.opts.Stylesheet {
		opts.StylesheetURL = e.normalizer.Base() + StylesheetPath
	}
	return opts
}

// Names lists the sitemaps the input produces
func (e *Engine) Names(ctx context.Context, input Input) ([]string, error) {

	switch e.Mode() {
	case models.NamedSitemaps:
		return slices.Clone(e.opts.Sitemaps.Names), nil
	case models.AutoSitemaps:
		items, err := e.build(ctx, e.root, input)
		if err != nil {
			return nil, err
		}
		names, _ := e.partition(items)
		if len(names) == 0 {
			names = []string{e.autoName}
		}
		return names, nil
	default:
		return []string{SingleName}, nil
	}
}

// Entries builds the entries of the named sitemap
func (e *Engine) Entries(ctx context.Context, name string, input Input) ([]models.SitemapEntry, error) {

	switch e.Mode() {
	case models.NamedSitemaps:
		t, ok := e.named[name]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownSitemap, name)
		}
		items, err := e.build(ctx, t, input)
		if err != nil {
			return nil, err
		}
		return entriesOf(items), nil

	case models.AutoSitemaps:
		items, err := e.build(ctx, e.root, input)
		if err != nil {
			return nil, err
		}
		_, buckets := e.partition(items)
		if entries, ok := buckets[name]; ok {
			return entries, nil
		}
		if name == e.autoName {
			return nil, nil
		}
		return nil, fmt.Errorf("%w '%s'", ErrUnknownSitemap, name)

	default:
		if name != SingleName {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownSitemap, name)
		}
		items, err := e.build(ctx, e.root, input)
		if err != nil {
			return nil, err
		}
		return entriesOf(items), nil
	}
}

// Sitemap renders the named sitemap document
func (e *Engine) Sitemap(ctx context.Context, name string, input Input) (string, error) {
	entries, err := e.Entries(ctx, name, input)
	if err != nil {
		return "", err
	}
	return RenderSitemap(entries, e.RenderOptions()), nil
}

// IndexEntries builds one index record per sitemap
func (e *Engine) IndexEntries(ctx context.Context, input Input) ([]models.IndexEntry, error) {

	names, docs, err := e.collect(ctx, input)
	if err != nil {
		return nil, err
	}

	return e.indexEntries(names, docs)
}

// Index renders the sitemap index document
func (e *Engine) Index(ctx context.Context, input Input) (string, error) {
	entries, err := e.IndexEntries(ctx, input)
	if err != nil {
		return "", err
	}
	return RenderIndex(entries, e.RenderOptions()), nil
}

// Build renders every document, keyed by file name
func (e *Engine) Build(ctx context.Context, input Input) (map[string]string, error) {

	opts := e.RenderOptions()

	if e.Mode() == models.SingleSitemap {
		doc, err := e.Sitemap(ctx, SingleName, input)
		if err != nil {
			return nil, err
		}
		return map[string]string{FileName(SingleName): doc}, nil
	}

	names, docs, err := e.collect(ctx, input)
	if err != nil {
		return nil, err
	}

	index, err := e.indexEntries(names, docs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(names)+1)
	out[IndexFile] = RenderIndex(index, opts)
	for _, name := range names {
		out[FileName(name)] = RenderSitemap(docs[name], opts)
	}

	return out, nil
}

// collect builds the entries of every sitemap in multi-sitemap mode
func (e *Engine) collect(ctx context.Context, input Input) ([]string, map[string][]models.SitemapEntry, error) {

	switch e.Mode() {
	case models.NamedSitemaps:
		docs := make(map[string][]models.SitemapEntry, len(e.named))
		for _, name := range e.opts.Sitemaps.Names {
			items, err := e.build(ctx, e.named[name], input)
			if err != nil {
				return nil, nil, err
			}
			docs[name] = entriesOf(items)
		}
		return slices.Clone(e.opts.Sitemaps.Names), docs, nil

	case models.AutoSitemaps:
		items, err := e.build(ctx, e.root, input)
		if err != nil {
			return nil, nil, err
		}
		names, docs := e.partition(items)
		if len(names) == 0 {
			names = []string{e.autoName}
		}
		return names, docs, nil

	default:
		return nil, nil, ErrNoIndex
	}
}

func (e *Engine) indexEntries(names []string, docs map[string][]models.SitemapEntry) ([]models.IndexEntry, error) {

	now := e.now().UTC()
	index := make([]models.IndexEntry, 0, len(names))

	for _, name := range names {
		loc, err := e.normalizer.Loc("/" + FileName(name))
		if err != nil {
			return nil, fmt.Errorf("invalid sitemap name '%s'; %w", name, err)
		}

		index = append(index, models.IndexEntry{
			Name:    name,
			Loc:     loc,
			Lastmod: IndexLastmod(docs[name], now),
		})
	}

	return index, nil
}

// build runs the per-path pipeline for a target concurrently
// and returns the kept entries in input order.
// Entries sharing a loc are folded into their first occurrence.
func (e *Engine) build(ctx context.Context, t target, input Input) ([]built, error) {

	urls := make([]models.URLInput, 0, len(t.urls)+len(input.URLs))
	urls = append(urls, t.urls...)
	urls = append(urls, input.URLs...)

	images := imagesByRoute(e.normalizer, input.Discovered.Images)
	lastmods := lastmodsByRoute(e.normalizer, input.Discovered.Lastmod)

	results := make([]*built, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.buildOne(t, u, images, lastmods)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]built, 0, len(results))
	seen := make(map[string]int, len(results))

	for _, r := range results {
		if r == nil {
			continue
		}

		if i, ok := seen[r.entry.Loc]; ok {
			out[i].entry = mergeDuplicate(out[i].entry, r.entry)
			if out[i].tag == "" {
				out[i].tag = r.tag
			}
			continue
		}

		seen[r.entry.Loc] = len(out)
		out = append(out, *r)
	}

	return out, nil
}

func (e *Engine) buildOne(
	t target,
	u models.URLInput,
	images map[string][]models.Image,
	lastmods map[string]time.Time,
) *built {

	p, err := e.normalizer.Normalize(u.Path)
	if err != nil {
		log.Printf("Skipping sitemap url '%s': %v", u.Path, err)
		return nil
	}

	routePath := e.normalizer.RoutePath(p)
	if !t.filter.Allow(routePath) {
		return nil
	}

	rule, excluded := e.resolver.Resolve(routePath, images[routePath])
	if excluded {
		return nil
	}

	loc, err := e.normalizer.Loc(p)
	if err != nil {
		log.Printf("Skipping sitemap url '%s': %v", u.Path, err)
		return nil
	}

	src := EntrySources{Defaults: t.defaults, URL: u.EntryFields, Rule: rule}
	if e.opts.AutoLastmod {
		if lastmod, ok := lastmods[routePath]; ok {
			src.Discovered = &lastmod
		}
	}

	tag := rule.Sitemap
	if tag == "" {
		tag = u.Sitemap
	}

	return &built{entry: e.absolutize(BuildEntry(loc, src)), tag: tag}
}

// absolutize resolves relative alternate, image and video URLs against the site.
// Lists are copied, they may be shared with the configuration.
func (e *Engine) absolutize(entry models.SitemapEntry) models.SitemapEntry {

	if len(entry.Alternates) > 0 {
		entry.Alternates = slices.Clone(entry.Alternates)
		for i := range entry.Alternates {
			entry.Alternates[i].Href = e.href(entry.Alternates[i].Href)
		}
	}

	if len(entry.Images) > 0 {
		entry.Images = slices.Clone(entry.Images)
		for i := range entry.Images {
			entry.Images[i].Loc = e.href(entry.Images[i].Loc)
		}
	}

	if len(entry.Videos) > 0 {
		entry.Videos = slices.Clone(entry.Videos)
		for i := range entry.Videos {
			v := &entry.Videos[i]
			v.ThumbnailLoc = e.href(v.ThumbnailLoc)
			v.ContentLoc = e.href(v.ContentLoc)
			v.PlayerLoc = e.href(v.PlayerLoc)
		}
	}

	return entry
}

func (e *Engine) href(raw string) string {
	if raw == "" || isAbsolute(raw) {
		return raw
	}
	loc, err := e.normalizer.Loc(raw)
	if err != nil {
		return raw
	}
	return loc
}

func entriesOf(items []built) []models.SitemapEntry {
	entries := make([]models.SitemapEntry, len(items))
	for i, item := range items {
		entries[i] = item.entry
	}
	return entries
}

// imagesByRoute rekeys discovered images by route path.
// Keys normalizing to the same route are concatenated in key order.
func imagesByRoute(n *Normalizer, in map[string][]models.Image) map[string][]models.Image {

	out := make(map[string][]models.Image, len(in))
	keys := slices.Sorted(maps.Keys(in))

	for _, key := range keys {
		p, err := n.Normalize(key)
		if err != nil {
			log.Printf("Skipping discovered images for '%s': %v", key, err)
			continue
		}
		route := n.RoutePath(p)
		out[route] = append(out[route], in[key]...)
	}

	return out
}

// lastmodsByRoute rekeys discovered lastmods by route path, keeping the most recent
func lastmodsByRoute(n *Normalizer, in map[string]time.Time) map[string]time.Time {

	out := make(map[string]time.Time, len(in))
	for key, t := range in {
		p, err := n.Normalize(key)
		if err != nil {
			log.Printf("Skipping discovered lastmod for '%s': %v", key, err)
			continue
		}
		route := n.RoutePath(p)
		if prev, ok := out[route]; !ok || t.After(prev) {
			out[route] = t
		}
	}

	return out
}
