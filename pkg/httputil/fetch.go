package httputil

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/errors"
)

// Defaults for IconFetcher.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 1 << 20
	DefaultAttempts = 3
)

// iconEntry is the cached form of a fetched icon.
type iconEntry struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

// IconFetcher resolves http(s) icon references by downloading them and
// embedding the bytes as data URIs. Rasterizers that cannot follow links
// (PNG and PDF output) need this to show remote icons.
//
// Downloads are cached under the "icon:" namespace of Cache when one is
// set. Transient failures (network errors, 429 and 5xx responses) are
// retried with exponential backoff.
type IconFetcher struct {
	client   *http.Client
	cache    *Cache
	maxBytes int64
	attempts int
	delay    time.Duration
}

// FetcherOption configures an IconFetcher.
type FetcherOption func(*IconFetcher)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) FetcherOption { return func(f *IconFetcher) { f.client = c } }

// WithMaxBytes caps the size of a single icon.
func WithMaxBytes(n int64) FetcherOption { return func(f *IconFetcher) { f.maxBytes = n } }

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *IconFetcher) { f.attempts, f.delay = attempts, delay }
}

// NewIconFetcher returns a fetcher backed by cache, which may be nil.
func NewIconFetcher(cache *Cache, opts ...FetcherOption) *IconFetcher {
	f := &IconFetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		attempts: DefaultAttempts,
		delay:    time.Second,
	}
	if cache != nil {
		f.cache = cache.Namespace("icon:")
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve implements content.IconResolver.
func (f *IconFetcher) Resolve(ref string) (content.Icon, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.client.Timeout*time.Duration(max(f.attempts, 1))+f.delay)
	defer cancel()
	return f.ResolveContext(ctx, ref)
}

// ResolveContext downloads ref, or reads it from cache, and returns it as a
// data URI.
func (f *IconFetcher) ResolveContext(ctx context.Context, ref string) (content.Icon, error) {
	if err := errors.ValidateURL(ref); err != nil {
		return content.Icon{}, err
	}

	var entry iconEntry
	if f.cache != nil {
		if ok, err := f.cache.Get(ref, &entry); ok && err == nil {
			return entry.icon(), nil
		}
	}

	err := Retry(ctx, f.attempts, f.delay, func() error {
		var ferr error
		entry, ferr = f.fetch(ctx, ref)
		return ferr
	})
	if err != nil {
		return content.Icon{}, err
	}

	if f.cache != nil {
		// A failed write only costs a refetch next time.
		_ = f.cache.Set(ref, entry)
	}
	return entry.icon(), nil
}

func (f *IconFetcher) fetch(ctx context.Context, ref string) (iconEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return iconEntry{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "icon %s", ref)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return iconEntry{}, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch icon %s", ref)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, ref); err != nil {
		return iconEntry{}, err
	}

	typ, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(typ, "image/") {
		return iconEntry{}, errors.New(errors.ErrCodeUnsupported, "icon %s is not an image (%q)", ref, resp.Header.Get("Content-Type"))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return iconEntry{}, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read icon %s", ref)}
	}
	if int64(len(data)) > f.maxBytes {
		return iconEntry{}, errors.New(errors.ErrCodeInvalidInput, "icon %s exceeds %d bytes", ref, f.maxBytes)
	}
	return iconEntry{Type: typ, Data: data}, nil
}

func checkStatus(resp *http.Response, ref string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "icon %s: %d", ref, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{
			Err:   errors.New(errors.ErrCodeNetwork, "icon %s: %d", ref, code),
			After: retryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	default:
		return errors.New(errors.ErrCodeNetwork, "icon %s: %d", ref, code)
	}
}

func (e iconEntry) icon() content.Icon {
	return content.Icon{URI: fmt.Sprintf("data:%s;base64,%s", e.Type, base64.StdEncoding.EncodeToString(e.Data))}
}
