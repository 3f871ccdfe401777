package containers

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/vlatan/sitemap-builder/internal/config"
)

// SetupTestDB starts a PostgreSQL container with the project's migrations,
// points the config at it and seeds the sitemap urls
func SetupTestDB(ctx context.Context, cfg *config.Config, projectRoot string) (Container, error) {

	initScripts, err := migrationFiles(projectRoot)
	if err != nil {
		return nil, err
	}

	container, err := postgres.Run(ctx, "postgres:16.3",
		postgres.WithSQLDriver("pgx"),
		postgres.WithInitScripts(initScripts...),
		postgres.WithDatabase(cfg.DBDatabase),
		postgres.WithUsername(cfg.DBUsername),
		postgres.WithPassword(cfg.DBPassword),
		postgres.BasicWaitStrategies(),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", abort(ctx, container, err))
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", abort(ctx, container, err))
	}

	cfg.DBHost = host
	cfg.DBPort = port.Int()

	if err := seedTestData(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to seed the database: %w", abort(ctx, container, err))
	}

	return &managed{name: "postgres", container: container}, nil
}

func seedTestData(ctx context.Context, cfg *config.Config) error {

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUsername, cfg.DBPassword),
		Host:     net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
		Path:     "/" + cfg.DBDatabase,
		RawQuery: "sslmode=disable",
	}

	pool, err := pgxpool.New(ctx, u.String())
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	queries := []string{
		`INSERT INTO sitemap_url (path, lastmod, changefreq, priority, sitemap) VALUES
			('/about', '2023-06-01T00:00:00Z', 'monthly', 0.8, NULL),
			('/blog/post-1', '2023-05-01T00:00:00Z', NULL, NULL, 'posts'),
			('/contact', NULL, NULL, NULL, NULL)`,
	}

	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	log.Println("Test data seeded successfully")
	return nil
}
