// Package intake is the selection gate in front of the submission pipeline.
package intake

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileSize is the largest accepted upload (20 MiB).
	MaxFileSize int64 = 20 << 20
	// PDFContentType is the only accepted MIME type.
	PDFContentType = "application/pdf"
)

// ErrSelectionRejected is returned when a file does not pass the gate.
var ErrSelectionRejected = errors.New("selection rejected")

// File is a candidate selection. Head holds the leading bytes used for
// sniffing when the declared type is missing; contents are otherwise unread.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Head        []byte
}

// Check validates a candidate without touching any selection state.
func Check(f File) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: file name is required", ErrSelectionRejected)
	}
	if f.Size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrSelectionRejected)
	}
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrSelectionRejected, MaxFileSize)
	}
	if ct := detectType(f); ct != PDFContentType {
		return fmt.Errorf("%w: unsupported type %q", ErrSelectionRejected, ct)
	}
	return nil
}

func detectType(f File) string {
	declared := strings.TrimSpace(f.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return strings.ToLower(mt)
		}
		return strings.ToLower(declared)
	}
	if len(f.Head) == 0 {
		return declared
	}
	mt, _, _ := mime.ParseMediaType(mimetype.Detect(f.Head).String())
	return mt
}

// Selector holds at most one selected file. A rejected offer leaves the
// previous selection untouched.
type Selector struct {
	mu       sync.Mutex
	selected *File
}

// Offer registers f as the selection if it passes Check.
func (s *Selector) Offer(f File) error {
	if err := Check(f); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := f
	s.selected = &sel
	return nil
}

// Selected returns the current selection, if any.
func (s *Selector) Selected() (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return File{}, false
	}
	return *s.selected, true
}

// Clear drops the current selection.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}
