package sitemaps

import (
	"context"
	"regexp"

	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/xml"
	"github.com/vlatan/sitemap-builder/internal/cache"
	"github.com/vlatan/sitemap-builder/internal/config"
	"github.com/vlatan/sitemap-builder/internal/sitemap"
)

// InputFunc gathers the candidate URLs and the discovered data of a build
type InputFunc func(ctx context.Context) (sitemap.Input, error)

type Service struct {
	engine   *sitemap.Engine
	input    InputFunc
	store    cache.Store
	config   *config.Config
	version  string
	minifier *minify.M
}

var validXML = regexp.MustCompile("[/+]xml$")

func New(
	engine *sitemap.Engine,
	input InputFunc,
	store cache.Store,
	config *config.Config,
) *Service {

	s := &Service{
		engine:  engine,
		input:   input,
		store:   store,
		config:  config,
		version: config.Version(),
	}

	if config.MinifyXML {
		s.minifier = minify.New()
		s.minifier.AddFuncRegexp(validXML, xml.Minify)
	}

	return s
}
