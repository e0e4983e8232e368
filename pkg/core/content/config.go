package content

// ValueMode selects how the value line is formatted.
type ValueMode string

const (
	// ValuePercent shows the item's share of the total, e.g. "12.5%".
	ValuePercent ValueMode = "percent"
	// ValueAmount shows the raw value, money-formatted when a currency is set.
	ValueAmount ValueMode = "amount"
)

// Default sizing in pixels.
const (
	DefaultPadding      = 4
	DefaultIconMin      = 16
	DefaultIconMax      = 48
	DefaultIconFraction = 0.4
	DefaultLineHeight   = 14
	DefaultCharWidth    = 7
	DefaultDecimals     = 1
)

// Config controls content sizing and formatting.
type Config struct {
	Padding      int       `json:"padding" toml:"padding"`
	IconMin      int       `json:"icon_min" toml:"icon_min"`
	IconMax      int       `json:"icon_max" toml:"icon_max"`
	IconFraction float64   `json:"icon_fraction" toml:"icon_fraction"`
	LineHeight   int       `json:"line_height" toml:"line_height"`
	CharWidth    int       `json:"char_width" toml:"char_width"`
	Decimals     int32     `json:"decimals" toml:"decimals"`
	ValueMode    ValueMode `json:"value_mode" toml:"value_mode"`

	// Currency is an ISO 4217 code used in ValueAmount mode.
	Currency string `json:"currency,omitempty" toml:"currency"`

	// Placeholder overrides the glyph drawn when an icon cannot be resolved.
	Placeholder string `json:"placeholder,omitempty" toml:"placeholder"`
}

// DefaultConfig returns the default content configuration.
func DefaultConfig() Config {
	return Config{
		Padding:      DefaultPadding,
		IconMin:      DefaultIconMin,
		IconMax:      DefaultIconMax,
		IconFraction: DefaultIconFraction,
		LineHeight:   DefaultLineHeight,
		CharWidth:    DefaultCharWidth,
		Decimals:     DefaultDecimals,
		ValueMode:    ValuePercent,
	}
}

// normalized replaces unusable fields with their defaults. Padding of 0
// is a valid choice and is kept; only negative padding is reset.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Padding < 0 {
		c.Padding = 0
	}
	if c.IconMin <= 0 {
		c.IconMin = d.IconMin
	}
	if c.IconMax < c.IconMin {
		c.IconMax = max(d.IconMax, c.IconMin)
	}
	if c.IconFraction <= 0 || c.IconFraction > 1 {
		c.IconFraction = d.IconFraction
	}
	if c.LineHeight <= 0 {
		c.LineHeight = d.LineHeight
	}
	if c.CharWidth <= 0 {
		c.CharWidth = d.CharWidth
	}
	if c.Decimals < 0 {
		c.Decimals = 0
	}
	if c.ValueMode != ValueAmount {
		c.ValueMode = ValuePercent
	}
	return c
}
