package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned for object paths that would leave the storage root.
	ErrInvalidPath = errors.New("invalid object path")
	// ErrExists is returned by Put when an object is already stored at the path.
	ErrExists = errors.New("object already exists")
)

// Store keeps image bytes addressed by a relative slash separated path. Put
// never replaces an existing object.
type Store interface {
	Put(ctx context.Context, path string, r io.Reader) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// FileStore stores objects on the local filesystem and serves them from serveRoot.
type FileStore struct {
	root      string
	serveRoot *url.URL
}

type FileStoreConfig struct {
	Root      string
	ServeRoot *url.URL
}

func NewFileStore(cfg FileStoreConfig) (*FileStore, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}

	return &FileStore{
		root:      cfg.Root,
		serveRoot: cfg.ServeRoot,
	}, nil
}

// Root returns the directory objects are written to.
func (s *FileStore) Root() string {
	return s.root
}

// Put writes r to path. The object becomes visible only once fully written.
// It fails with ErrExists when path is taken.
func (s *FileStore) Put(ctx context.Context, path string, r io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}

	if err := os.Link(tmp, full); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("publish object: %w", err)
	}
	return nil
}

// Delete removes the object at path. Deleting a missing object is not an error.
func (s *FileStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// URL returns the public address of the object at path.
func (s *FileStore) URL(path string) string {
	return s.serveRoot.JoinPath(path).String()
}

func (s *FileStore) resolve(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, `\`) {
		return "", ErrInvalidPath
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}

	return filepath.Join(s.root, clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
