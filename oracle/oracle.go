// Package oracle defines the SDF Oracle external interface: the
// client-supplied (typically WASM-backed) collaborator that turns a code
// point into signed-distance-field pixels. The generator is an external
// collaborator specified only through this interface; this module ships
// one reference implementation of it in sdfgen so the rest of the cache
// can be exercised end-to-end.
package oracle

// Metrics is the oracle's per-glyph output metadata: all integer-valued
// in the oracle's own output (the generation size), plus plane-bounds in
// glyph-local units.
type Metrics struct {
	Width, Height int
	Advance       int
	PlaneLeft, PlaneBottom, PlaneRight, PlaneTop float64
}

// Result is what Generate/GenerateMTSDF/GenerateMTSDFVar return for a
// glyph that has visible pixels. Pixels holds float32 samples in [0, 1],
// row-major, top row first, Channels values per pixel (3 for Generate's
// plain SDF, 4 for the MTSDF variants).
type Result struct {
	Metrics  Metrics
	Pixels   []float32
	Channels int
}

// SDFOracle is the external collaborator a Font Atlas or Worker Pool
// drives during a drain. Implementations must treat LoadFont as
// idempotent for a given byte-slice identity.
type SDFOracle interface {
	// LoadFont parses font bytes. Calling it again with bytes the
	// oracle already has loaded is a no-op.
	LoadFont(fontBytes []byte) error

	// HasGlyph reports whether the currently loaded font contains cp.
	HasGlyph(cp rune) (bool, error)

	// Generate produces a 3-channel (RGB) SDF for cp at fontSize using
	// pixelRange, or a nil Result if the glyph has no visible pixels
	// (e.g. space).
	Generate(cp rune, fontSize int, pixelRange float64) (*Result, error)

	// GenerateMTSDF produces a 4-channel (RGBA) MTSDF for cp.
	GenerateMTSDF(cp rune, fontSize int, pixelRange float64) (*Result, error)

	// GenerateMTSDFVar is GenerateMTSDF under the variation axes most
	// recently set by SetVariationAxes, or the font's default instance
	// if ClearVariationAxes was called or no axes were ever set.
	GenerateMTSDFVar(cp rune, fontSize int, pixelRange float64) (*Result, error)

	// SetVariationAxes configures variable-font axis coordinates (e.g.
	// {"wght": 700}) consumed by subsequent GenerateMTSDFVar calls.
	SetVariationAxes(axes map[string]float64) error

	// ClearVariationAxes resets to the font's default instance.
	ClearVariationAxes() error
}
