package build

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/vlatan/sitemap-builder/internal/config"
	"github.com/vlatan/sitemap-builder/internal/discover"
	"github.com/vlatan/sitemap-builder/internal/models"
	"github.com/vlatan/sitemap-builder/internal/sitemap"
	"github.com/vlatan/sitemap-builder/internal/utils"
)

// URLSource lists stored candidate URLs
type URLSource interface {
	URLs(ctx context.Context) ([]models.URLInput, error)
}

// Source gathers the build input: prerendered routes and
// their discovered data, scanned once, plus the stored URLs
type Source struct {
	urls       URLSource
	routes     []models.URLInput
	discovered sitemap.Discovered
	retry      *utils.RetryConfig
}

// NewEngine creates the sitemap engine from the config
func NewEngine(cfg *config.Config) (*sitemap.Engine, error) {
	return sitemap.New(sitemap.Options{
		SiteURL:       cfg.SiteURL,
		Base:          cfg.BaseURL,
		TrailingSlash: cfg.TrailingSlash,
		AutoLastmod:   cfg.AutoLastmod,
		Root:          cfg.Sitemap(),
		Sitemaps:      cfg.Sitemaps.Value,
		AutoName:      cfg.AutoName,
		RouteRules:    cfg.RouteRules.Value,
		Stylesheet:    cfg.Stylesheet,
		Credits:       cfg.Credits,
		Concurrency:   cfg.Concurrency,
	})
}

// NewSource scans the discover directory, if any.
// A nil URL source means no stored URLs.
func NewSource(cfg *config.Config, urls URLSource) (*Source, error) {

	s := &Source{
		urls:  urls,
		retry: &utils.RetryConfig{MaxRetries: 3, Delay: 200 * time.Millisecond, MaxJitter: 100 * time.Millisecond},
	}

	if cfg.DiscoverDir == "" {
		return s, nil
	}

	site, err := url.Parse(cfg.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL '%s'; %w", cfg.SiteURL, err)
	}

	routes, discovered, err := discover.FromDir(cfg.DiscoverDir, site)
	if err != nil {
		return nil, fmt.Errorf("couldn't discover the prerendered routes; %w", err)
	}

	for _, route := range routes {
		s.routes = append(s.routes, models.URLInput{Path: route})
	}

	s.discovered = discovered
	log.Printf("Discovered %d prerendered routes in '%s'", len(routes), cfg.DiscoverDir)

	return s, nil
}

// Input returns the prerendered routes followed by the stored URLs
func (s *Source) Input(ctx context.Context) (sitemap.Input, error) {

	input := sitemap.Input{
		URLs:       append([]models.URLInput(nil), s.routes...),
		Discovered: s.discovered,
	}

	if s.urls == nil {
		return input, nil
	}

	stored, err := utils.Retry(ctx, s.retry, func() ([]models.URLInput, error) {
		return s.urls.URLs(ctx)
	})

	if err != nil {
		return input, fmt.Errorf("couldn't fetch the stored URLs; %w", err)
	}

	input.URLs = append(input.URLs, stored...)
	return input, nil
}
