package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/vlatan/sitemap-builder/internal/models"
)

// JSON is an env value holding a JSON document
type JSON[T any] struct {
	Value T
}

// Patterns is a glob list, written either as a JSON array
// or as whitespace separated patterns
type Patterns []string

type CacheStore string

const (
	MemoryStore CacheStore = "memory"
	RedisStore  CacheStore = "redis"
)

type Config struct {
	// Running localy or not
	Debug bool `env:"DEBUG" envDefault:"false"`

	// Sitemap settings
	SiteURL       string                   `env:"SITE_URL"`
	BaseURL       string                   `env:"BASE_URL" envDefault:"/"`
	TrailingSlash bool                     `env:"TRAILING_SLASH" envDefault:"false"`
	AutoLastmod   bool                     `env:"AUTO_LASTMOD" envDefault:"true"`
	Include       Patterns                 `env:"SITEMAP_INCLUDE" envDefault:"/**"`
	Exclude       Patterns                 `env:"SITEMAP_EXCLUDE"`
	Defaults      JSON[models.EntryFields] `env:"SITEMAP_DEFAULTS"`
	URLs          JSON[[]models.URLInput]  `env:"SITEMAP_URLS"`
	Sitemaps      JSON[models.Sitemaps]    `env:"SITEMAP_SITEMAPS" envDefault:"false"`
	AutoName      string                   `env:"SITEMAP_AUTO_NAME" envDefault:"pages"`
	RouteRules    JSON[models.RouteRules]  `env:"SITEMAP_ROUTE_RULES"`
	Stylesheet    bool                     `env:"SITEMAP_XSL" envDefault:"true"`
	Credits       bool                     `env:"SITEMAP_CREDITS" envDefault:"true"`
	MinifyXML     bool                     `env:"MINIFY_XML" envDefault:"false"`
	Concurrency   int                      `env:"CONCURRENCY" envDefault:"0"`

	// Prerendered HTML scanned for images and lastmod
	DiscoverDir string `env:"DISCOVER_DIR"`

	// Cache
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"600s"`
	CacheStore CacheStore    `env:"CACHE_STORE" envDefault:"memory"`
	CacheSize  int           `env:"CACHE_SIZE" envDefault:"128"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Postgres, the explicit URL source
	DBURLs     bool   `env:"SITEMAP_DB_URLS" envDefault:"false"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBDatabase string `env:"DB_DATABASE"`
	DBUsername string `env:"DB_USERNAME"`
	DBPassword string `env:"DB_PASSWORD"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"4"`

	// Cloudflare R2
	R2SitemapBucketName string `env:"R2_SITEMAP_BUCKET_NAME"`
	R2AccountId         string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyId       string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey   string `env:"R2_SECRET_ACCESS_KEY"`

	// Local app host and port
	Host string `env:"HOST" envDefault:"localhost"`
	Port int    `env:"PORT" envDefault:"5000"`
}

// New creates new config object, exits on an unusable config
func New() *Config {

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse the config; %v", err)
	}

	if err = cfg.Validate(); err != nil {
		log.Fatalf("invalid config; %v", err)
	}

	return cfg
}

// Parse reads the config from the environment
func Parse() (*Config, error) {

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	numCPU := runtime.NumCPU()
	if numCPU > math.MaxInt32 || numCPU < math.MinInt32 {
		return nil, fmt.Errorf("failed to get proper CPU cores count: %d", numCPU)
	}

	// Cap the DBMaxConns to the number of cores
	cfg.DBMaxConns = max(cfg.DBMaxConns, int32(numCPU))

	return &cfg, nil
}

// Validate reports every configuration error that prevents a build
func (cfg *Config) Validate() error {

	var errs []error

	if strings.TrimSpace(cfg.SiteURL) == "" {
		errs = append(errs, errors.New("SITE_URL is required to generate absolute sitemap URLs"))
	} else if u, err := url.Parse(cfg.SiteURL); err != nil ||
		(u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("SITE_URL '%s' must be an absolute http(s) URL", cfg.SiteURL))
	}

	for _, name := range cfg.Sitemaps.Value.Names {
		if name == "" || strings.ContainsAny(name, "/?#") || strings.TrimSpace(name) != name {
			errs = append(errs, fmt.Errorf("invalid sitemap name '%s'", name))
		}
	}

	if strings.TrimSpace(cfg.AutoName) == "" {
		errs = append(errs, errors.New("SITEMAP_AUTO_NAME must not be empty"))
	}

	if cfg.CacheStore != MemoryStore && cfg.CacheStore != RedisStore {
		errs = append(errs, fmt.Errorf("unknown CACHE_STORE '%s'", cfg.CacheStore))
	}

	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("CONCURRENCY must not be negative, got %d", cfg.Concurrency))
	}

	return errors.Join(errs...)
}

// Sitemap returns the root sitemap configuration
func (cfg *Config) Sitemap() models.SitemapConfig {
	return models.SitemapConfig{
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		Defaults: cfg.Defaults.Value,
		URLs:     cfg.URLs.Value,
	}
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// It's called by the env library to decode JSON values.
func (j *JSON[T]) UnmarshalText(text []byte) error {
	if err := json.Unmarshal(text, &j.Value); err != nil {
		return fmt.Errorf("error decoding JSON value; %w", err)
	}
	return nil
}

// MarshalJSON keeps the canonical form free of the wrapper
func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// It's called by the env library to decode the Patterns.
func (p *Patterns) UnmarshalText(text []byte) error {

	trimmed := strings.TrimSpace(string(text))
	if strings.HasPrefix(trimmed, "[") {
		var patterns []string
		if err := json.Unmarshal([]byte(trimmed), &patterns); err != nil {
			return fmt.Errorf("error decoding the patterns; %w", err)
		}
		*p = patterns
		return nil
	}

	*p = strings.Fields(trimmed)
	return nil
}
