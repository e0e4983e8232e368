// Package holdings reads the input files squaremap lays out.
//
// A holdings file lists named, weighted positions with optional icon
// references, in TOML or JSON:
//
//	currency = "USD"
//
//	[[holdings]]
//	name  = "ACME"
//	value = 1200.50
//	icon  = "icons/acme.svg"
//
// JSON files may use the same object shape or a bare array of holdings.
// Values are not checked here; the layout drops non-positive ones.
package holdings

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/errors"
)

// Format is a holdings file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Holding is one weighted position.
type Holding struct {
	Name  string  `json:"name" toml:"name" bson:"name"`
	Value float64 `json:"value" toml:"value" bson:"value"`
	Icon  string  `json:"icon,omitempty" toml:"icon,omitempty" bson:"icon,omitempty"`
}

// File is a parsed holdings file.
type File struct {
	Currency string    `json:"currency,omitempty" toml:"currency,omitempty" bson:"currency,omitempty"`
	Holdings []Holding `json:"holdings" toml:"holdings" bson:"holdings"`
}

// Items converts holdings to layout items, keeping their order.
func (f File) Items() []treemap.Item {
	items := make([]treemap.Item, len(f.Holdings))
	for i, h := range f.Holdings {
		items[i] = treemap.Item{Name: h.Name, Value: h.Value, IconRef: h.Icon}
	}
	return items
}

// Validate checks every holding name.
func (f File) Validate() error {
	for i, h := range f.Holdings {
		if err := errors.ValidateItemName(h.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidItem, err, "holding %d", i)
		}
	}
	return nil
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported holdings file %q (want .json or .toml)", filepath.Base(path))
}

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatTOML:
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown holdings format %q", s)
}

// Parse decodes and validates holdings data.
func Parse(data []byte, format Format) (File, error) {
	var f File
	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &f.Holdings); err != nil {
				return File{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse holdings")
			}
			break
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return File{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse holdings")
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return File{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse holdings")
		}
	default:
		return File{}, errors.New(errors.ErrCodeInvalidFormat, "unknown holdings format %q", format)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// ReadFile reads a holdings file, choosing the format by extension.
func ReadFile(path string) (File, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return File{}, err
	}
	return Parse(data, format)
}

// Marshal encodes f in the given format.
func Marshal(f File, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown holdings format %q", format)
}
