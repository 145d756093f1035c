package fontatlas

import "fmt"

// Config governs a Font Atlas: the generation-size ladder used to map
// render sizes onto cached sizes, page geometry, and the pixel range
// passed through to the SDF oracle. A plain struct, a DefaultX
// constructor, and a Validate method called once from New.
type Config struct {
	// GenSizes is a non-empty ascending sequence of positive integers —
	// the pixel sizes at which glyphs are generated and cached.
	GenSizes []int
	// SizeThresholds has len(GenSizes)-1 entries; renderSize is mapped
	// to the first GenSizes[i] whose SizeThresholds[i] >= renderSize,
	// or the last GenSizes entry if none qualify.
	SizeThresholds []int
	// PageSize is the side, in pixels, of a square atlas page.
	PageSize int
	// MaxMixedPages caps mixed (non-Latin) pages per variant atlas.
	// Exceeding it logs a warning and allocates anyway (no eviction).
	MaxMixedPages int
	// PixelRange is passed through to the SDF oracle's generate calls.
	PixelRange float64
}

// DefaultConfig returns reasonable defaults for a typical UI font set.
func DefaultConfig() Config {
	return Config{
		GenSizes:       []int{32, 64, 128},
		SizeThresholds: []int{40, 80},
		PageSize:       1024,
		MaxMixedPages:  8,
		PixelRange:     4,
	}
}

// Validate checks every Config field is internally consistent.
func (c Config) Validate() error {
	if len(c.GenSizes) == 0 {
		return &ConfigError{Field: "GenSizes", Reason: "must be non-empty"}
	}
	for i, s := range c.GenSizes {
		if s <= 0 {
			return &ConfigError{Field: "GenSizes", Reason: "all entries must be positive"}
		}
		if i > 0 && c.GenSizes[i-1] >= s {
			return &ConfigError{Field: "GenSizes", Reason: "must be strictly ascending"}
		}
	}
	if len(c.SizeThresholds) != len(c.GenSizes)-1 {
		return &ConfigError{Field: "SizeThresholds", Reason: fmt.Sprintf(
			"must have len(GenSizes)-1 = %d entries, got %d", len(c.GenSizes)-1, len(c.SizeThresholds))}
	}
	if c.PageSize <= 0 {
		return &ConfigError{Field: "PageSize", Reason: "must be positive"}
	}
	if c.MaxMixedPages <= 0 {
		return &ConfigError{Field: "MaxMixedPages", Reason: "must be positive"}
	}
	if c.PixelRange <= 0 {
		return &ConfigError{Field: "PixelRange", Reason: "must be positive"}
	}
	return nil
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("fontatlas: invalid config field %q: %s", e.Field, e.Reason)
}

// genSizeFor maps a render size onto the first GenSizes entry whose
// threshold is >= renderSize, or the last entry otherwise.
func (c Config) genSizeFor(renderSize int) int {
	for i, threshold := range c.SizeThresholds {
		if threshold >= renderSize {
			return c.GenSizes[i]
		}
	}
	return c.GenSizes[len(c.GenSizes)-1]
}
