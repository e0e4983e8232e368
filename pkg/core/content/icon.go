package content

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/squaremap/pkg/errors"
)

// Icon is a resolved cell icon. Exactly one of URI and Glyph is set.
type Icon struct {
	// URI is an http(s) URL or a data URI that renderers can embed.
	URI string `json:"uri,omitempty" bson:"uri,omitempty"`

	// Glyph is placeholder text drawn instead of an image.
	Glyph string `json:"glyph,omitempty" bson:"glyph,omitempty"`
}

// Placeholder reports whether the icon is a text glyph.
func (i Icon) Placeholder() bool { return i.URI == "" }

// IconResolver turns an item's icon reference into something drawable.
type IconResolver interface {
	Resolve(ref string) (Icon, error)
}

// URLResolver accepts http and https references as-is.
type URLResolver struct{}

func (URLResolver) Resolve(ref string) (Icon, error) {
	if err := errors.ValidateURL(ref); err != nil {
		return Icon{}, err
	}
	return Icon{URI: ref}, nil
}

// maxIconBytes caps files embedded by FileResolver.
const maxIconBytes = 1 << 20

// FileResolver reads icons from a directory and embeds them as data URIs.
// References must be relative paths inside Dir. Results are memoized.
type FileResolver struct {
	Dir string

	mu   sync.Mutex
	memo map[string]string
}

// NewFileResolver returns a resolver rooted at dir.
func NewFileResolver(dir string) *FileResolver {
	return &FileResolver{Dir: dir}
}

func (r *FileResolver) Resolve(ref string) (Icon, error) {
	if err := errors.ValidatePath(ref); err != nil {
		return Icon{}, err
	}

	r.mu.Lock()
	uri, ok := r.memo[ref]
	r.mu.Unlock()
	if ok {
		return Icon{URI: uri}, nil
	}

	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(ref)))
	if !strings.HasPrefix(typ, "image/") {
		return Icon{}, errors.New(errors.ErrCodeUnsupported, "icon %q is not an image", ref)
	}
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}

	path := filepath.Join(r.Dir, filepath.FromSlash(ref))
	info, err := os.Stat(path)
	if err != nil {
		return Icon{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "icon %s", ref)
	}
	if info.Size() > maxIconBytes {
		return Icon{}, errors.New(errors.ErrCodeInvalidInput, "icon %s exceeds %d bytes", ref, maxIconBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Icon{}, fmt.Errorf("read icon %s: %w", ref, err)
	}

	uri = "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data)
	r.mu.Lock()
	if r.memo == nil {
		r.memo = make(map[string]string)
	}
	r.memo[ref] = uri
	r.mu.Unlock()
	return Icon{URI: uri}, nil
}

// MapResolver looks references up in a fixed table of URIs.
type MapResolver map[string]string

func (m MapResolver) Resolve(ref string) (Icon, error) {
	uri, ok := m[ref]
	if !ok || uri == "" {
		return Icon{}, errors.New(errors.ErrCodeNotFound, "no icon for %q", ref)
	}
	return Icon{URI: uri}, nil
}

// ChainResolver tries each resolver in turn and returns the first success.
type ChainResolver []IconResolver

func (c ChainResolver) Resolve(ref string) (Icon, error) {
	err := error(errors.New(errors.ErrCodeNotFound, "no resolver for %q", ref))
	for _, r := range c {
		if r == nil {
			continue
		}
		icon, rerr := r.Resolve(ref)
		if rerr == nil {
			return icon, nil
		}
		err = rerr
	}
	return Icon{}, err
}
