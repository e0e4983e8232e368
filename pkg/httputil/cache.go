package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired reports an entry older than the cache TTL. The stale file is
// left in place and overwritten by the next [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache keeps JSON values on disk, one file per key, named by the SHA-256
// of the key. Freshness is judged by file modification time and a zero
// TTL keeps entries forever. Writes go through a temp file and a rename,
// so concurrent readers in other processes never see a torn entry.
//
// Namespaced views share the directory but not the key space:
//
//	icons := c.Namespace("icon:")
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache opens a Cache rooted at dir and creates it when missing.
// With dir empty the cache lives in ~/.cache/squaremap/http.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "squaremap", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

func (c *Cache) Dir() string        { return c.dir }
func (c *Cache) TTL() time.Duration { return c.ttl }

// Namespace returns a view whose keys carry prefix in front of any prefix
// c already has.
func (c *Cache) Namespace(prefix string) *Cache {
	view := *c
	view.prefix += prefix
	return &view
}

// Get decodes the entry for key into v. A missing entry gives (false, nil)
// and a stale one (false, ErrExpired).
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(key)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case c.stale(info.ModTime()):
		return false, ErrExpired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set writes v under key and restarts its TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(key))
}

func (c *Cache) stale(mod time.Time) bool {
	return c.ttl > 0 && time.Since(mod) > c.ttl
}

// keyPath maps a key, including the view's prefix, to its file.
func (c *Cache) keyPath(key string) string {
	sum := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}
