package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"resume-review/internal/shared/storage/object"
)

// ErrNoText is returned when a PDF parses but carries no extractable text.
var ErrNoText = errors.New("pdf has no extractable text")

// FromStore reads a stored PDF and returns its plain text.
func FromStore(ctx context.Context, store object.Store, owner, filePath string) (string, error) {
	data, err := store.Read(ctx, owner, filePath)
	if err != nil {
		return "", fmt.Errorf("extract text path=%s: %w", filePath, err)
	}
	text, err := PDFText(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract text path=%s: %w", filePath, err)
	}
	return text, nil
}

// PDFText extracts the plain text of every page.
func PDFText(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf text: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}
