package r2

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SecureFile is a file opened through a root,
// closing it closes the root too
type SecureFile struct {
	*os.File
	root *os.Root
}

func (sf *SecureFile) Close() error {
	fileErr := sf.File.Close()
	rootErr := sf.root.Close()

	if fileErr != nil {
		return fileErr
	}
	return rootErr
}

// SecureOpen opens a file that cannot escape the root path
func SecureOpen(rootPath, filename string) (*SecureFile, error) {
	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, err
	}

	file, err := root.Open(filename)
	if err != nil {
		root.Close()
		return nil, err
	}

	return &SecureFile{file, root}, nil
}

// SecureCreate creates or truncates a file that cannot escape the root path
func SecureCreate(rootPath, filename string) (*SecureFile, error) {
	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, err
	}

	file, err := root.Create(filename)
	if err != nil {
		root.Close()
		return nil, err
	}

	return &SecureFile{file, root}, nil
}

// WriteFiles writes every document, keyed by file name, into the directory.
// It returns the written file names in order.
func WriteFiles(dir string, docs map[string]string) ([]string, error) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("couldn't create the directory %s; %w", dir, err)
	}

	names := slices.Sorted(maps.Keys(docs))
	for _, name := range names {
		if !filepath.IsLocal(name) {
			return nil, fmt.Errorf("file name %s escapes the directory", name)
		}

		if err := os.MkdirAll(filepath.Join(dir, filepath.Dir(name)), 0o755); err != nil {
			return nil, fmt.Errorf("couldn't create the directory for %s; %w", name, err)
		}

		file, err := SecureCreate(dir, name)
		if err != nil {
			return nil, fmt.Errorf("couldn't create the file %s; %w", name, err)
		}

		_, err = io.Copy(file, strings.NewReader(docs[name]))
		closeErr := file.Close()

		if err != nil {
			return nil, fmt.Errorf("couldn't write the file %s; %w", name, err)
		}

		if closeErr != nil {
			return nil, fmt.Errorf("couldn't close the file %s; %w", name, closeErr)
		}
	}

	return names, nil
}
