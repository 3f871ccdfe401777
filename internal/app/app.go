package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vlatan/sitemap-builder/internal/build"
	"github.com/vlatan/sitemap-builder/internal/cache"
	"github.com/vlatan/sitemap-builder/internal/config"
	"github.com/vlatan/sitemap-builder/internal/drivers/database"
	"github.com/vlatan/sitemap-builder/internal/drivers/rdb"
	"github.com/vlatan/sitemap-builder/internal/handlers/sitemaps"
	"github.com/vlatan/sitemap-builder/internal/middlewares"
	"github.com/vlatan/sitemap-builder/internal/repositories/urls"
)

type App struct {
	config   *config.Config
	server   *http.Server
	mw       *middlewares.Service
	sitemaps *sitemaps.Service
	db       database.Service // nil without the DB URL source
	rdb      *rdb.Service     // nil with the memory cache
}

// New wires the configured sources, cache and handlers into an app
func New(cfg *config.Config) (*App, error) {

	a := &App{
		config: cfg,
		mw:     middlewares.New(cfg),
	}

	engine, err := build.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	var urlSource build.URLSource
	if cfg.DBURLs {
		a.db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("couldn't connect to the DB; %w", err)
		}
		urlSource = urls.New(a.db)
	}

	source, err := build.NewSource(cfg, urlSource)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	store, err := a.cacheStore()
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	a.sitemaps = sitemaps.New(engine, source.Input, store, cfg)
	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return a.RegisterRoutes(), nil
}

// cacheStore picks the document cache, none when debugging
func (a *App) cacheStore() (cache.Store, error) {

	if a.config.Debug || a.config.CacheTTL <= 0 {
		return nil, nil
	}

	switch a.config.CacheStore {
	case config.RedisStore:
		rs, err := rdb.New(a.config)
		if err != nil {
			return nil, fmt.Errorf("couldn't connect to Redis; %w", err)
		}
		a.rdb = rs
		return rs, nil
	default:
		return cache.NewMemory(a.config.CacheSize)
	}
}

// Close the DB pool and Redis connections
func (a *App) Close() error {

	var errs []error

	if a.db != nil {
		log.Println("Closing the DB pool...")
		a.db.Close()
	}

	if a.rdb != nil {
		log.Println("Closing the Redis connection...")
		errs = append(errs, a.rdb.Close())
	}

	return errors.Join(errs...)
}

// Handler returns the app HTTP handler
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
