package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := NewCache(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	return c
}

func TestCacheIconEntry(t *testing.T) {
	c := newTestCache(t, time.Hour)
	want := iconEntry{Type: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	if err := c.Set("https://example.com/acme.png", want); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var got iconEntry
	ok, err := c.Get("https://example.com/acme.png", &got)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t, time.Hour)
	var got iconEntry
	ok, err := c.Get("https://example.com/missing.png", &got)
	if ok || err != nil {
		t.Errorf("Get(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		age     time.Duration
		wantOK  bool
		wantErr error
	}{
		{"fresh", time.Hour, time.Minute, true, nil},
		{"stale", time.Hour, 2 * time.Hour, false, ErrExpired},
		{"zero ttl never expires", 0, 1000 * time.Hour, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, tt.ttl)
			key := "https://example.com/initech.svg"
			if err := c.Set(key, iconEntry{Type: "image/svg+xml", Data: []byte("<svg/>")}); err != nil {
				t.Fatal(err)
			}
			old := time.Now().Add(-tt.age)
			if err := os.Chtimes(c.keyPath(key), old, old); err != nil {
				t.Fatal(err)
			}

			var got iconEntry
			ok, err := c.Get(key, &got)
			if ok != tt.wantOK || !errors.Is(err, tt.wantErr) {
				t.Errorf("Get() = %v, %v; want %v, %v", ok, err, tt.wantOK, tt.wantErr)
			}
		})
	}
}

func TestCacheNamespace(t *testing.T) {
	c := newTestCache(t, time.Hour)
	icons := c.Namespace("icon:")
	remote := c.Namespace("remote:").Namespace("icon:")

	if err := icons.Set("acme", iconEntry{Type: "image/png"}); err != nil {
		t.Fatal(err)
	}

	var got iconEntry
	if ok, _ := remote.Get("acme", &got); ok {
		t.Error("chained namespace should not see keys of a sibling namespace")
	}
	if ok, _ := c.Get("acme", &got); ok {
		t.Error("root cache should not see namespaced keys")
	}
	if ok, _ := c.Namespace("icon:").Get("acme", &got); !ok {
		t.Error("a new view of the same namespace should see its keys")
	}
	if icons.keyPath("a") == remote.keyPath("a") {
		t.Error("keyPath() should differ across namespaces")
	}
}

func TestNewCacheDefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := NewCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	want := filepath.Join(home, ".cache", "squaremap", "http")
	if c.Dir() != want {
		t.Errorf("Dir() = %q, want %q", c.Dir(), want)
	}
	if c.TTL() != time.Hour {
		t.Errorf("TTL() = %v, want 1h", c.TTL())
	}
}

func TestCacheSetLeavesOneFile(t *testing.T) {
	c := newTestCache(t, time.Hour)
	for range 3 {
		if err := c.Set("acme", iconEntry{Type: "image/png", Data: []byte{1, 2}}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir holds %d files, want 1", len(entries))
	}
}
