package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vlatan/sitemap-builder/internal/build"
	"github.com/vlatan/sitemap-builder/internal/config"
	"github.com/vlatan/sitemap-builder/internal/drivers/database"
	"github.com/vlatan/sitemap-builder/internal/integrations/r2"
	"github.com/vlatan/sitemap-builder/internal/repositories/urls"
	"github.com/vlatan/sitemap-builder/internal/sitemap"
)

// Options of a single generate run
type Options struct {
	// Directory the documents are written to, none if empty
	OutDir string
	// Upload the documents to the R2 bucket
	Upload bool
	// Key prefix of the uploaded documents
	Prefix string
}

type Service struct {
	config *config.Config
	engine *sitemap.Engine
	source *build.Source
	db     database.Service
	r2s    r2.Service
}

// New creates the worker with the configured sources
func New(ctx context.Context, cfg *config.Config, upload bool) (*Service, error) {

	engine, err := build.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{config: cfg, engine: engine}

	var urlSource build.URLSource
	if cfg.DBURLs {
		if s.db, err = database.New(cfg); err != nil {
			return nil, fmt.Errorf("couldn't connect to the DB; %w", err)
		}
		urlSource = urls.New(s.db)
	}

	if s.source, err = build.NewSource(cfg, urlSource); err != nil {
		s.Close()
		return nil, err
	}

	if upload {
		if s.r2s, err = r2.New(ctx, cfg); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Run builds every document once, then writes and uploads it
func (s *Service) Run(ctx context.Context, opts Options) error {

	if opts.OutDir == "" && !opts.Upload {
		return errors.New("nothing to do, set an output directory or upload")
	}

	start := time.Now()
	log.Println("Worker running...")

	log.Println("Gathering the URLs...")
	input, err := s.source.Input(ctx)
	if err != nil {
		return err
	}

	log.Printf("Building sitemaps from %d URLs...", len(input.URLs))
	docs, err := s.Documents(ctx, input)
	if err != nil {
		return fmt.Errorf("couldn't build the sitemaps; %w", err)
	}

	if opts.OutDir != "" {
		names, err := r2.WriteFiles(opts.OutDir, docs)
		if err != nil {
			return err
		}
		log.Printf("Wrote %s to '%s'", strings.Join(names, ", "), opts.OutDir)
	}

	if opts.Upload {
		if s.r2s == nil {
			return errors.New("the R2 client was not created for upload")
		}

		log.Printf("Uploading %d documents to R2...", len(docs))
		if err = s.r2s.Publish(ctx, s.config.R2SitemapBucketName, opts.Prefix, docs); err != nil {
			return err
		}
	}

	log.Printf("Worker done in %v", time.Since(start))
	return nil
}

// Documents renders every document along with the stylesheet, keyed by file path
func (s *Service) Documents(ctx context.Context, input sitemap.Input) (map[string]string, error) {

	docs, err := s.engine.Build(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.config.Stylesheet {
		docs[strings.TrimPrefix(sitemap.StylesheetPath, "/")] = string(sitemap.Stylesheet())
	}

	return docs, nil
}

// Close the DB pool
func (s *Service) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
