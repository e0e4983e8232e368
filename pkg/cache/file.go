package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// fileMagic opens every entry file. It is followed by the expiry as
// big-endian Unix nanoseconds (zero for none) and then the raw value.
var fileMagic = []byte("sqm1")

const fileHeaderLen = 4 + 8

// FileCache keeps one file per key under dir, sharded into 256
// subdirectories by the first byte of the hashed key.
type FileCache struct {
	dir string
}

// NewFileCache opens a cache rooted at dir and creates it when missing.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Dir() string { return c.dir }

// Get returns the value for key. Expired and unreadable entries are
// deleted and count as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	value, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return value, true, nil
}

// Set writes value under key. A ttl of zero keeps it until deleted.
func (c *FileCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	path := c.path(key)
	shard := filepath.Dir(path)
	if err := os.MkdirAll(shard, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(shard, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encodeEntry(value, expires)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear empties the cache directory, leaving the directory itself.
func (c *FileCache) Clear(context.Context) error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}

func encodeEntry(value []byte, expires time.Time) []byte {
	buf := make([]byte, fileHeaderLen, fileHeaderLen+len(value))
	copy(buf, fileMagic)
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(buf[len(fileMagic):], uint64(expires.UnixNano()))
	}
	return append(buf, value...)
}

func decodeEntry(raw []byte) (value []byte, expires time.Time, ok bool) {
	if len(raw) < fileHeaderLen || !bytes.HasPrefix(raw, fileMagic) {
		return nil, time.Time{}, false
	}
	if ns := binary.BigEndian.Uint64(raw[len(fileMagic):fileHeaderLen]); ns != 0 {
		expires = time.Unix(0, int64(ns))
	}
	return raw[fileHeaderLen:], expires, true
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
