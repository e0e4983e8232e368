package httputil

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/squaremap/pkg/errors"
)

func iconServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func servePNG(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Write([]byte("png-bytes"))
}

func TestIconFetcherResolve(t *testing.T) {
	srv, _ := iconServer(t, servePNG)

	icon, err := NewIconFetcher(nil).Resolve(srv.URL + "/a.png")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	if icon.URI != want {
		t.Errorf("Resolve() URI = %q, want %q", icon.URI, want)
	}
	if icon.Placeholder() {
		t.Error("Resolve() returned a placeholder")
	}
}

func TestIconFetcherCaches(t *testing.T) {
	srv, calls := iconServer(t, servePNG)
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	for range 3 {
		if _, err := NewIconFetcher(cache).Resolve(srv.URL + "/a.png"); err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestIconFetcherRetriesServerErrors(t *testing.T) {
	var n atomic.Int32
	srv, calls := iconServer(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		servePNG(w, r)
	})

	f := NewIconFetcher(nil, WithRetry(3, time.Millisecond))
	if _, err := f.ResolveContext(context.Background(), srv.URL+"/a.png"); err != nil {
		t.Fatalf("ResolveContext() error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestIconFetcherErrors(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		path      string
		opts      []FetcherOption
		wantCode  errors.Code
		wantCalls int32
	}{
		{
			name:      "not found",
			handler:   func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			path:      "/missing.png",
			wantCode:  errors.ErrCodeNotFound,
			wantCalls: 1,
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("<html></html>"))
			},
			path:      "/page",
			wantCode:  errors.ErrCodeUnsupported,
			wantCalls: 1,
		},
		{
			name:      "too large",
			handler:   servePNG,
			path:      "/a.png",
			opts:      []FetcherOption{WithMaxBytes(4)},
			wantCode:  errors.ErrCodeInvalidInput,
			wantCalls: 1,
		},
		{
			name:      "persistent server error",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			path:      "/a.png",
			opts:      []FetcherOption{WithRetry(2, time.Millisecond)},
			wantCode:  errors.ErrCodeNetwork,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := iconServer(t, tt.handler)
			_, err := NewIconFetcher(nil, tt.opts...).Resolve(srv.URL + tt.path)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Resolve() error = %v, want code %s", err, tt.wantCode)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestIconFetcherRejectsNonHTTP(t *testing.T) {
	for _, ref := range []string{"", "logos/acme.png", "file:///etc/passwd"} {
		if _, err := NewIconFetcher(nil).Resolve(ref); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Resolve(%q) error = %v, want INVALID_INPUT", ref, err)
		}
	}
}
