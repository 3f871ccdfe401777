package sitemaps

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/vlatan/sitemap-builder/internal/models"
	"github.com/vlatan/sitemap-builder/internal/sitemap"
	"github.com/vlatan/sitemap-builder/internal/utils"
)

// Serve the single sitemap or point to the index
func (s *Service) SitemapHandler(w http.ResponseWriter, r *http.Request) {

	if s.engine.Mode() != models.SingleSitemap {
		target := s.engine.Normalizer().Base() + "/" + sitemap.IndexFile
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	s.serveDocument(w, r, sitemap.FileName(sitemap.SingleName), func(ctx context.Context, input sitemap.Input) (string, error) {
		return s.engine.Sitemap(ctx, sitemap.SingleName, input)
	})
}

// Handle the sitemap index
func (s *Service) SitemapIndexHandler(w http.ResponseWriter, r *http.Request) {

	if s.engine.Mode() == models.SingleSitemap {
		http.NotFound(w, r)
		return
	}

	s.serveDocument(w, r, sitemap.IndexFile, s.engine.Index)
}

// Handle a named sitemap, "<name>-sitemap.xml"
func (s *Service) SitemapPartHandler(w http.ResponseWriter, r *http.Request) {

	name, ok := sitemap.NameFromFile(r.PathValue("file"))
	if !ok || s.engine.Mode() == models.SingleSitemap {
		http.NotFound(w, r)
		return
	}

	s.serveDocument(w, r, sitemap.FileName(name), func(ctx context.Context, input sitemap.Input) (string, error) {
		return s.engine.Sitemap(ctx, name, input)
	})
}

// Serve the xml style, which is xsl
func (s *Service) SitemapStyleHandler(w http.ResponseWriter, r *http.Request) {

	if !s.config.Stylesheet {
		http.NotFound(w, r)
		return
	}

	writeXML(w, r, sitemap.Stylesheet())
}

// serveDocument renders a document through the cache and writes it
func (s *Service) serveDocument(
	w http.ResponseWriter,
	r *http.Request,
	file string,
	render func(ctx context.Context, input sitemap.Input) (string, error),
) {

	ctx := r.Context()
	doc, err := s.Document(ctx, file, render)

	switch {
	case errors.Is(err, sitemap.ErrUnknownSitemap):
		http.NotFound(w, r)
		return
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		log.Printf("Error rendering '%s': %v", file, err)
		utils.HttpError(w, http.StatusInternalServerError)
		return
	}

	writeXML(w, r, []byte(doc))
}

// Document returns the cached document or renders and caches it
func (s *Service) Document(
	ctx context.Context,
	file string,
	render func(ctx context.Context, input sitemap.Input) (string, error),
) (string, error) {

	return s.getOrRender(ctx, file, func() (string, error) {

		input, err := s.input(ctx)
		if err != nil {
			return "", err
		}

		doc, err := render(ctx, input)
		if err != nil {
			return "", err
		}

		return s.minify(doc)
	})
}
