package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName replaces path separators and drops control characters so
// the result is a single path element. Dots inside a name are kept; only the
// bare "." and ".." names are rejected.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "", errInvalidFileName
	}
	return s, nil
}

// SwapExt replaces the final extension of name with ext. Names without an
// extension get ext appended.
func SwapExt(name, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = name
	}
	return base + ext
}
