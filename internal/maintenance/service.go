// Package maintenance lists and wipes everything an account has stored.
package maintenance

import (
	"context"
	"fmt"

	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/storage/kv"
	"resume-review/internal/shared/storage/object"
	"resume-review/internal/shared/telemetry"
)

// FailedFile is a file the bulk delete could not remove.
type FailedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result reports a bulk delete. Success stays true when individual files
// fail; only a failed flush or listing makes the call return an error.
type Result struct {
	Success   bool              `json:"success"`
	Deleted   []string          `json:"deleted"`
	Failed    []FailedFile      `json:"failed"`
	Remaining []object.FileInfo `json:"remaining"`
}

// Service wipes an owner's files and key-value entries.
type Service struct {
	Files object.Store
	KV    kv.Store
}

// ListFiles returns the entries at the root of owner's namespace.
func (s *Service) ListFiles(ctx context.Context, owner string) ([]object.FileInfo, error) {
	files, err := s.Files.ReadDir(ctx, owner, "./")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// DeleteAll deletes every file one by one, flushes the key-value store and
// lists again. There is no rollback.
func (s *Service) DeleteAll(ctx context.Context, owner string) (Result, error) {
	metrics.IncBulkDelete()
	files, err := s.ListFiles(ctx, owner)
	if err != nil {
		return Result{}, err
	}

	res := Result{Deleted: []string{}, Failed: []FailedFile{}}
	for _, f := range files {
		if f.IsDir {
			continue
		}
		if err := s.Files.Delete(ctx, owner, f.Path); err != nil {
			telemetry.Warn("maintenance.delete_failed", map[string]any{
				"user_id": owner,
				"path":    f.Path,
				"err":     err,
			})
			res.Failed = append(res.Failed, FailedFile{Path: f.Path, Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, f.Path)
	}
	metrics.AddBulkDeleteFileFailures(len(res.Failed))

	if err := s.KV.Flush(ctx, owner); err != nil {
		return res, fmt.Errorf("flush kv: %w", err)
	}

	remaining, err := s.ListFiles(ctx, owner)
	if err != nil {
		return res, err
	}
	res.Remaining = remaining
	res.Success = true

	telemetry.Info("maintenance.delete_all", map[string]any{
		"user_id":   owner,
		"deleted":   len(res.Deleted),
		"failed":    len(res.Failed),
		"remaining": len(remaining),
	})
	return res, nil
}
