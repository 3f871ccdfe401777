package containers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go"
	"github.com/vlatan/sitemap-builder/internal/config"
)

// Container is a running test dependency
type Container interface {
	Terminate(ctx context.Context)
}

// managed terminates the wrapped container, logging a failure
type managed struct {
	name      string
	container testcontainers.Container
}

func (m *managed) Terminate(ctx context.Context) {
	if err := m.container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate the %s container: %v", m.name, err)
	}
}

// abort terminates a container which failed its setup, joining both errors
func abort(ctx context.Context, c testcontainers.Container, err error) error {
	if cErr := c.Terminate(ctx); cErr != nil {
		err = errors.Join(err, cErr)
	}
	return err
}

// ProjectRoot returns the directory of the module's go.mod,
// searched upwards from this package's source directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get the caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("reached root without finding go.mod")
		}
		dir = parent
	}
}

// LoadTestConfig loads the project's .env file when present
// and parses the config for the integration tests.
func LoadTestConfig() (*config.Config, string, error) {

	projectRoot, err := ProjectRoot()
	if err != nil {
		return nil, "", err
	}

	// Only local runs have a .env file
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		log.Printf("failed to load .env file; %v", err)
	}

	cfg, err := config.Parse()
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse the config; %w", err)
	}

	return cfg, projectRoot, nil
}

// migrationFiles lists the "up" migrations of the project in lexical order
func migrationFiles(projectRoot string) ([]string, error) {

	dir := filepath.Join(projectRoot, "migrations")

	var files []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(name, ".up.sql") {
			files = append(files, filepath.Join(dir, filepath.FromSlash(name)))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("couldn't list the migrations in %s; %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations in %s", dir)
	}

	return files, nil
}
