package object

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffBody returns a reader replaying the whole body plus the content type,
// preferring the declared one and detecting from the first bytes otherwise.
func SniffBody(declared string, r io.Reader) (io.Reader, string, error) {
	var head [3072]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("read sniff: %w", err)
	}
	contentType := strings.TrimSpace(declared)
	if contentType == "" {
		contentType = mimetype.Detect(head[:n]).String()
	}
	body := io.MultiReader(bytes.NewReader(append([]byte(nil), head[:n]...)), r)
	return body, contentType, nil
}
