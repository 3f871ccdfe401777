package config

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/vlatan/sitemap-builder/internal/models"
)

// versioned is the part of the config the rendered documents depend on
type versioned struct {
	SiteURL       string               `json:"siteUrl"`
	BaseURL       string               `json:"baseUrl"`
	TrailingSlash bool                 `json:"trailingSlash"`
	AutoLastmod   bool                 `json:"autoLastmod"`
	Root          models.SitemapConfig `json:"root"`
	Sitemaps      models.Sitemaps      `json:"sitemaps"`
	AutoName      string               `json:"autoName"`
	RouteRules    models.RouteRules    `json:"routeRules"`
	Stylesheet    bool                 `json:"xsl"`
	Credits       bool                 `json:"credits"`
	MinifyXML     bool                 `json:"minify"`
}

// Version returns a token that changes whenever a setting
// affecting the rendered documents changes
func (cfg *Config) Version() string {

	data, err := json.Marshal(versioned{
		SiteURL:       cfg.SiteURL,
		BaseURL:       cfg.BaseURL,
		TrailingSlash: cfg.TrailingSlash,
		AutoLastmod:   cfg.AutoLastmod,
		Root:          cfg.Sitemap(),
		Sitemaps:      cfg.Sitemaps.Value,
		AutoName:      cfg.AutoName,
		RouteRules:    cfg.RouteRules.Value,
		Stylesheet:    cfg.Stylesheet,
		Credits:       cfg.Credits,
		MinifyXML:     cfg.MinifyXML,
	})

	if err != nil {
		log.Printf("Error encoding the config version: %v", err)
		return "unversioned"
	}

	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
