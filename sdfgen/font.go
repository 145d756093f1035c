package sdfgen

import (
	"errors"
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrGlyphNotPresent is returned by extractOutline when the font has no
// glyph for the requested rune. Generator.HasGlyph should be checked
// first; this is the lower-level signal.
var ErrGlyphNotPresent = errors.New("sdfgen: glyph not present in font")

// loadedFont wraps a parsed opentype.Font with the sfnt.Buffer its
// extraction methods reuse across calls.
type loadedFont struct {
	font *opentype.Font
	buf  sfnt.Buffer

	// identity lets LoadFont short-circuit re-parsing an identical byte
	// slice without hashing the whole payload.
	rawLen int
	rawPtr *byte
}

func parseFont(data []byte) (*loadedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("sdfgen: parse font: %w", err)
	}
	lf := &loadedFont{font: f, rawLen: len(data)}
	if len(data) > 0 {
		lf.rawPtr = &data[0]
	}
	return lf, nil
}

func (lf *loadedFont) sameBytes(data []byte) bool {
	if len(data) != lf.rawLen {
		return false
	}
	if len(data) == 0 {
		return true
	}
	return &data[0] == lf.rawPtr
}

func (lf *loadedFont) glyphIndex(cp rune) (sfnt.GlyphIndex, error) {
	return lf.font.GlyphIndex(&lf.buf, cp)
}

// extractOutline loads cp's outline at ppem pixels-per-em and converts
// sfnt's segment stream into this package's OutlineSegment form.
// Returns (nil, advance, nil) for a glyph with no visible outline (e.g. space);
// returns ErrGlyphNotPresent if the font has no glyph for cp at all.
func (lf *loadedFont) extractOutline(cp rune, ppemPixels float64) ([]OutlineSegment, int, error) {
	gid, err := lf.glyphIndex(cp)
	if err != nil {
		return nil, 0, fmt.Errorf("sdfgen: glyph index for %q: %w", cp, err)
	}
	if gid == 0 {
		return nil, 0, ErrGlyphNotPresent
	}

	ppem := fixed.Int26_6(ppemPixels * 64)

	segs, err := lf.font.LoadGlyph(&lf.buf, gid, ppem, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("sdfgen: load glyph %q: %w", cp, err)
	}

	advanceFixed, err := lf.font.GlyphAdvance(&lf.buf, gid, ppem, font.HintingNone)
	advance := 0
	if err == nil {
		advance = int(advanceFixed) / 64
	}

	if len(segs) == 0 {
		return nil, advance, nil
	}

	out := make([]OutlineSegment, 0, len(segs))
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			out = append(out, OutlineSegment{Op: OpMoveTo, Args: []Point{pointFromFixed(seg.Args[0])}})
		case sfnt.SegmentOpLineTo:
			out = append(out, OutlineSegment{Op: OpLineTo, Args: []Point{pointFromFixed(seg.Args[0])}})
		case sfnt.SegmentOpQuadTo:
			out = append(out, OutlineSegment{Op: OpQuadTo, Args: []Point{
				pointFromFixed(seg.Args[0]), pointFromFixed(seg.Args[1]),
			}})
		case sfnt.SegmentOpCubeTo:
			out = append(out, OutlineSegment{Op: OpCubeTo, Args: []Point{
				pointFromFixed(seg.Args[0]), pointFromFixed(seg.Args[1]), pointFromFixed(seg.Args[2]),
			}})
		}
	}
	return out, advance, nil
}

func pointFromFixed(p fixed.Point26_6) Point {
	return Point{X: float64(p.X) / 64, Y: float64(p.Y) / 64}
}
