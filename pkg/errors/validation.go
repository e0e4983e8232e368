package errors

import (
	"math"
	"net/url"
	"strings"
	"unicode"
)

const (
	maxItemNameLength = 256
	maxPathLength     = 500
)

// hasControl reports whether s holds a control rune. Names and paths end up
// in SVG text, terminal cells and file names, where such runes either break
// the output or smuggle escape sequences.
func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// ValidateItemName rejects blank names, names over 256 bytes, and names
// with control characters.
func ValidateItemName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return New(ErrCodeInvalidItem, "item name cannot be empty")
	case len(name) > maxItemNameLength:
		return New(ErrCodeInvalidItem, "item name too long (max %d characters)", maxItemNameLength)
	case hasControl(name):
		return New(ErrCodeInvalidItem, "item name %q contains control characters", name)
	}
	return nil
}

// ValidateCanvas rejects a canvas that would draw nothing. The layout
// engine accepts such a canvas and returns an empty layout; entry points
// facing users call this first.
func ValidateCanvas(width, height, padding float64) error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	if !finite(width) || !finite(height) || !finite(padding) {
		return New(ErrCodeInvalidCanvas, "canvas dimensions must be finite")
	}
	if width < 1 || height < 1 {
		return New(ErrCodeInvalidCanvas, "canvas must be at least 1x1, got %gx%g", width, height)
	}
	if padding < 0 {
		return New(ErrCodeInvalidCanvas, "padding cannot be negative, got %g", padding)
	}
	return nil
}

// ValidatePath accepts a slash-separated relative path that stays inside
// the directory it is resolved against. Icon references and stored layout
// ids both pass through here.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	if hasControl(path) {
		return New(ErrCodeInvalidPath, "path contains control characters")
	}
	if strings.ContainsRune(path, '\\') {
		return New(ErrCodeInvalidPath, "path %q uses backslashes", path)
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path %q must be relative", path)
	}
	for _, elem := range strings.Split(path, "/") {
		if elem == ".." {
			return New(ErrCodeInvalidPath, "path %q leaves its base directory", path)
		}
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if strings.IndexFunc(rawURL, unicode.IsSpace) >= 0 || hasControl(rawURL) {
		return New(ErrCodeInvalidInput, "URL contains whitespace or control characters")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}
