// Package sdfgen is a reference implementation of oracle.SDFOracle built
// on golang.org/x/image/font/{opentype,sfnt}. It gives the atlas cache's
// full pipeline (reservation, drain, fill, flush) a working oracle
// without requiring a caller to supply a real WASM-backed oracle. The
// module's own pipeline tests use a fake oracle; this package's tests
// cover its geometry and error paths without loading a font.
//
// Shapes are built from the font's outline segments, contours get
// colored by corner-angle detection, and a multi-channel distance field
// is sampled per pixel. Signed distance to a curved edge is evaluated by
// sampling the curve rather than a closed-form polynomial root solver
// (Cardano's method for cubics) — a deliberate simplification explained
// in DESIGN.md.
package sdfgen

import "math"

// Point is a 2D point/vector in glyph outline units.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point    { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point    { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point  { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64  { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Length() float64      { return math.Hypot(p.X, p.Y) }

func (p Point) Normalized() Point {
	l := p.Length()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Perpendicular returns p rotated 90 degrees counter-clockwise.
func (p Point) Perpendicular() Point { return Point{-p.Y, p.X} }

func Lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Rect is an axis-aligned bounding box in outline units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
func (r Rect) IsEmpty() bool   { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

func (r *Rect) expand(p Point) {
	if p.X < r.MinX {
		r.MinX = p.X
	}
	if p.Y < r.MinY {
		r.MinY = p.Y
	}
	if p.X > r.MaxX {
		r.MaxX = p.X
	}
	if p.Y > r.MaxY {
		r.MaxY = p.Y
	}
}

func emptyRect() Rect {
	return Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// SignedDistance pairs a distance magnitude with the dot product used
// to disambiguate which of two equally-close edges actually owns a
// point (the "pseudo-distance" refinement described by the multi-
// channel SDF technique).
type SignedDistance struct {
	Distance float64
	Dot      float64
}

var signedDistanceInfinite = SignedDistance{Distance: math.Inf(1), Dot: 1}

// Less reports whether d is a better (closer, or equally close but
// better-oriented) distance than other.
func (d SignedDistance) Less(other SignedDistance) bool {
	ad, ao := math.Abs(d.Distance), math.Abs(other.Distance)
	if ad != ao {
		return ad < ao
	}
	return d.Dot < other.Dot
}
