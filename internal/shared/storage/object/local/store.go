package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"resume-review/internal/shared/storage/object"
)

// createFile opens a file for Upload; tests replace it.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

// Store implements object.Store using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Ping makes sure the base directory exists and is writable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("local store base dir: %w", err)
	}
	return nil
}

// Upload writes the reader to disk under the owner's namespace with a random prefix.
func (s *Store) Upload(ctx context.Context, owner, name, contentType string, r io.Reader) (object.StoredFile, error) {
	storageKey, sanitized, err := object.NewObjectPath(owner, name)
	if err != nil {
		return object.StoredFile{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.StoredFile{}, err
	}

	fullPath := s.fullPath(storageKey)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.StoredFile{}, fmt.Errorf("mkdir: %w", err)
	}

	body, mimeType, err := object.SniffBody(contentType, r)
	if err != nil {
		return object.StoredFile{}, err
	}

	f, err := createFile(fullPath)
	if err != nil {
		return object.StoredFile{}, fmt.Errorf("open file: %w", err)
	}

	written, err := io.Copy(f, body)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return object.StoredFile{}, fmt.Errorf("write body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return object.StoredFile{}, fmt.Errorf("close file: %w", err)
	}

	return object.StoredFile{
		Path:        storageKey,
		Name:        sanitized,
		Size:        written,
		ContentType: mimeType,
	}, nil
}

// Read returns the full contents of a stored object.
func (s *Store) Read(ctx context.Context, owner, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := object.OwnedPath(owner, filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.fullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes a stored object. Directories are removed recursively.
func (s *Store) Delete(ctx context.Context, owner, filePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := object.OwnedPath(owner, filePath)
	if err != nil {
		return err
	}
	if key == object.OwnerRoot(owner) {
		return fmt.Errorf("refusing to delete namespace root")
	}
	full := s.fullPath(key)
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return object.ErrNotFound
		}
		return fmt.Errorf("stat %s: %w", key, err)
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ReadDir lists the direct children of dir inside the owner's namespace.
// A namespace that was never written to is empty, not missing.
func (s *Store) ReadDir(ctx context.Context, owner, dir string) ([]object.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := object.OwnedDir(owner, dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.fullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []object.FileInfo{}, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", key, err)
	}

	out := make([]object.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, object.FileInfo{
			Path:     path.Join(key, entry.Name()),
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
			IsDir:    entry.IsDir(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) fullPath(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

var _ object.Store = (*Store)(nil)
