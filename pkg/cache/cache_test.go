package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func init() {
	retryBase = time.Millisecond
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Fatalf("Get() = %v, %v, %v, want miss", data, hit, err)
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "layout:1", []byte(`{"cells":[]}`), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:1")
	if err != nil || !hit || string(data) != `{"cells":[]}` {
		t.Errorf("Get() = %q, %v, %v, want stored entry", data, hit, err)
	}

	if err := c.Delete(ctx, "layout:1"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:1"); hit {
		t.Error("Get() after Delete should miss")
	}
	if err := c.Delete(ctx, "layout:1"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a cache entry"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheEmptyValue(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "empty", nil, time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "empty")
	if err != nil || !hit || len(data) != 0 {
		t.Errorf("Get(empty) = %q, %v, %v, want empty hit", data, hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("cache dir missing after Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear() left %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 600})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 601})
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 600, Palette: []string{"#000000"}})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 600}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey() = %q, want layout: prefix", lk1)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Tooltips: true})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "artifact:svg:") {
		t.Errorf("ArtifactKey() = %q, want artifact:svg: prefix", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	opts := LayoutKeyOpts{Width: 10, Height: 10}
	if got, want := scoped.LayoutKey("h", opts), "tenant:123:"+inner.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
	aopts := ArtifactKeyOpts{Format: "png"}
	if got, want := scoped.ArtifactKey("h", aopts), "tenant:123:"+inner.ArtifactKey("h", aopts); got != want {
		t.Errorf("ArtifactKey() = %q, want %q", got, want)
	}

	if got := NewScopedKeyer(nil, "p:").LayoutKey("h", opts); got != "p:"+inner.LayoutKey("h", opts) {
		t.Errorf("nil inner LayoutKey() = %q", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), ErrNetwork.Error())
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("Retryable should unwrap to the original error")
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"not retryable", 5, permanent, 1, permanent},
		{"recovers", 1, Retryable(ErrNetwork), 2, nil},
		{"gives up", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RetryWithBackoff() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("RetryWithBackoff() error = %v, want context.Canceled", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(redis.Nil); err != redis.Nil || IsRetryable(err) {
		t.Errorf("classify(redis.Nil) = %v, want redis.Nil unchanged", err)
	}
	if err := classify(context.DeadlineExceeded); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("classify(deadline) = %v, want retryable network error", err)
	}
	plain := errors.New("WRONGTYPE")
	if err := classify(plain); err != plain {
		t.Errorf("classify(command error) = %v, want unchanged", err)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	c := NewRedisCacheFromClient(client, "")
	defer c.Close()

	if c.prefix != DefaultRedisPrefix {
		t.Errorf("prefix = %q, want %q", c.prefix, DefaultRedisPrefix)
	}

	_, hit, err := c.Get(context.Background(), "k")
	if hit || !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() = %v, %v, want network error", hit, err)
	}
}
