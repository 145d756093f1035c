package variant

import "github.com/gogpu/fontatlas/page"

// Metrics describes a generated glyph's dimensions, all in pixels at the
// generation size at which it was produced, plus plane-bounds in
// glyph-local units. The zero value is the placeholder used for
// reserved-but-unfilled glyphs.
type Metrics struct {
	Width, Height int
	Advance       int
	// PlaneLeft, PlaneBottom, PlaneRight, PlaneTop are the glyph's
	// plane-bounds (l, b, r, t) in glyph-local units.
	PlaneLeft, PlaneBottom, PlaneRight, PlaneTop float64
}

// Location is the atlas-owned record for one cached code point. It is
// mutated in place when filled: the Variant Atlas's index holds a
// pointer to this value, so a client that cached the pointer across a
// fill boundary observes the pixels once Page.dirty is flushed — callers
// that only hold a copy must re-query getGlyph.
type Location struct {
	Page *page.Page

	X, Y          int
	Width, Height int

	Metrics Metrics

	// Empty is true when the glyph has no visible pixels (e.g. space).
	// Empty implies Width == Height == 0.
	Empty bool
	// Missing is true when the font does not contain the code point.
	Missing bool
}
