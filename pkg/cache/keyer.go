package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Equal inputs must give equal keys.
type Keyer interface {
	// LayoutKey identifies a decorated layout of a holdings set.
	LayoutKey(holdingsHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides holdings that change a layout.
type LayoutKeyOpts struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Padding float64  `json:"padding"`
	Palette []string `json:"palette,omitempty"`

	// Content is any JSON-encodable description of content sizing.
	Content any `json:"content,omitempty"`

	// IconDir is the directory file icons were resolved against.
	IconDir string `json:"icon_dir,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Scale    float64 `json:"scale,omitempty"`
	Tooltips bool    `json:"tooltips,omitempty"`
	Font     string  `json:"font,omitempty"`

	// Columns and Rows size text renderings.
	Columns int `json:"columns,omitempty"`
	Rows    int `json:"rows,omitempty"`
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer keys entries as "<kind>:<sha256 of the JSON inputs>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(holdingsHash string, opts LayoutKeyOpts) string {
	return digest("layout:", holdingsHash, opts)
}

// ArtifactKey keeps the format readable in the key, as in
// "artifact:svg:<sha256>", so entries can be counted per format.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return digest("artifact:"+opts.Format+":", layoutHash, opts)
}

// digest appends the hash of the JSON array of parts to kind. The options
// structs always encode, so the marshal error is dropped.
func digest(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + Hash(data)
}

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// release so a new layout engine never serves an old release's entries.
//
//	k := NewScopedKeyer(nil, "v1.4.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer scopes inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) LayoutKey(holdingsHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(holdingsHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = ScopedKeyer{}
)
