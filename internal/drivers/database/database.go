package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"sync"

	"github.com/vlatan/sitemap-builder/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "sitemap-builder"

// Service is the Postgres pool the stored sitemap URLs are read from
type Service interface {
	// Query many rows
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	// Query single row
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// Execute a query (update, insert, delete)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// StoredURLs counts the rows of the sitemap_url table
	StoredURLs(ctx context.Context) (int64, error)
	// Health reports the pool and the sitemap_url table status
	Health(ctx context.Context) map[string]any
	// Close the pool
	Close()
}

type service struct {
	db     *pgxpool.Pool
	config *config.Config
}

var (
	dbInstance *service
	serviceErr error
	once       sync.Once
)

// New returns the singleton database service.
// The first call connects, the later ones return the same pool.
func New(cfg *config.Config) (Service, error) {

	once.Do(func() {

		if cfg == nil {
			serviceErr = errors.New("unable to create DB service with nil config")
			return
		}

		poolConfig, err := pgxpool.ParseConfig(ConnString(cfg))
		if err != nil {
			serviceErr = fmt.Errorf("invalid DB config; %w", err)
			return
		}

		// The sitemap reads are bursty, one idle connection is enough
		poolConfig.MinIdleConns = 1
		if cfg.DBMaxConns > 0 {
			poolConfig.MaxConns = cfg.DBMaxConns
		}

		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName

		db, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			serviceErr = fmt.Errorf("couldn't create the DB pool; %w", err)
			return
		}

		dbInstance = &service{db: db, config: cfg}
	})

	// Service(nil), not a nil *service
	if serviceErr != nil {
		return nil, serviceErr
	}

	return dbInstance, nil
}

// ConnString builds the postgres URL from the config,
// escaping the credentials
func ConnString(cfg *config.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DBUsername, cfg.DBPassword),
		Host:   net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
		Path:   "/" + cfg.DBDatabase,
	}
	return u.String()
}

// Query many rows
func (s *service) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return s.db.Query(ctx, query, args...)
}

// Query single row
func (s *service) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return s.db.QueryRow(ctx, query, args...)
}

// Execute a query (update, insert, delete)
func (s *service) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := s.db.Exec(ctx, query, args...)
	return result.RowsAffected(), err
}

// StoredURLs counts the rows of the sitemap_url table
func (s *service) StoredURLs(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, storedURLsQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("couldn't count the stored urls; %w", err)
	}
	return count, nil
}

// Close the pool
func (s *service) Close() {
	log.Printf("Disconnected from database: %s", s.config.DBHost)
	s.db.Close()
}
