package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/vlatan/sitemap-builder/internal/config"
)

// redisArgs are the server arguments enforcing the configured credentials.
// A username gets its own ACL user, a bare password protects the default user.
func redisArgs(cfg *config.Config) []string {

	args := []string{"redis-server"}

	switch {
	case cfg.RedisUsername != "" && cfg.RedisUsername != "default":
		args = append(args,
			"--user", "default", "off",
			"--user", cfg.RedisUsername, "on", ">"+cfg.RedisPassword, "~*", "&*", "+@all",
		)
	case cfg.RedisPassword != "":
		args = append(args, "--requirepass", cfg.RedisPassword)
	}

	return args
}

// SetupTestRedis starts a Redis container requiring the configured credentials
// and points the config at it
func SetupTestRedis(ctx context.Context, cfg *config.Config) (Container, error) {

	container, err := tcredis.Run(ctx, "redis:8.0.3",
		testcontainers.WithCmd(redisArgs(cfg)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", abort(ctx, container, err))
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", abort(ctx, container, err))
	}

	cfg.RedisHost = host
	cfg.RedisPort = port.Int()

	return &managed{name: "redis", container: container}, nil
}
