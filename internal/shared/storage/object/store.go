package object

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"resume-review/internal/shared/util"
)

// ErrNotFound is returned when a path does not exist or lies outside the caller's namespace.
var ErrNotFound = errors.New("object not found")

// StoredFile describes a freshly uploaded blob.
type StoredFile struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// FileInfo is one directory entry returned by ReadDir.
type FileInfo struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	IsDir    bool      `json:"isDir"`
}

// Store is the blob capability. Every path is scoped to an owner; paths
// belonging to another owner behave as if they did not exist.
type Store interface {
	Upload(ctx context.Context, owner, name, contentType string, r io.Reader) (StoredFile, error)
	Read(ctx context.Context, owner, filePath string) ([]byte, error)
	Delete(ctx context.Context, owner, filePath string) error
	ReadDir(ctx context.Context, owner, dir string) ([]FileInfo, error)
}

// OwnerRoot returns the namespace directory for owner.
func OwnerRoot(owner string) string {
	return util.OwnerKey(owner)
}

// NewObjectPath builds "<owner root>/<random>_<sanitized name>".
func NewObjectPath(owner, name string) (string, string, error) {
	sanitized, err := util.SanitizeFileName(name)
	if err != nil {
		return "", "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(OwnerRoot(owner), randomID()+"_"+sanitized), sanitized, nil
}

// OwnedPath cleans p and verifies it lives under owner's root.
func OwnedPath(owner, p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(strings.TrimSpace(p), "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	root := OwnerRoot(owner)
	if clean != root && !strings.HasPrefix(clean, root+"/") {
		return "", ErrNotFound
	}
	return clean, nil
}

// OwnedDir resolves a directory argument relative to owner's root. "", "." and
// "./" all mean the root itself.
func OwnedDir(owner, dir string) (string, error) {
	d := strings.TrimSpace(dir)
	root := OwnerRoot(owner)
	if d == "" || d == "." || d == "./" || d == "/" {
		return root, nil
	}
	if strings.Contains(d, "..") {
		return "", ErrNotFound
	}
	if strings.HasPrefix(d, root) {
		return OwnedPath(owner, d)
	}
	return OwnedPath(owner, path.Join(root, d))
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
