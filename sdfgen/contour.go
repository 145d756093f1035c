package sdfgen

import "math"

// Contour is one closed loop of edges (a glyph may have several, e.g.
// the outer and inner loops of "o").
type Contour struct {
	Edges []Edge
}

// Shape is every contour making up one glyph outline, plus its
// outline-space bounds.
type Shape struct {
	Contours []Contour
	Bounds   Rect
}

// OutlineOp names the kind of a single outline-building instruction.
type OutlineOp int

const (
	OpMoveTo OutlineOp = iota
	OpLineTo
	OpQuadTo
	OpCubeTo
)

// OutlineSegment is one drawing instruction; Args holds control/end
// points in the order the curve needs them (unused entries are zero).
type OutlineSegment struct {
	Op   OutlineOp
	Args []Point
}

// FromOutline converts a sequence of MoveTo/LineTo/QuadTo/CubeTo
// instructions into a Shape, splitting on each MoveTo into a new
// contour.
func FromOutline(segments []OutlineSegment) *Shape {
	shape := &Shape{Bounds: emptyRect()}

	var current *Contour
	var start, cursor Point

	for _, seg := range segments {
		switch seg.Op {
		case OpMoveTo:
			shape.Contours = append(shape.Contours, Contour{})
			current = &shape.Contours[len(shape.Contours)-1]
			start = seg.Args[0]
			cursor = start
			shape.Bounds.expand(start)

		case OpLineTo:
			end := seg.Args[0]
			if current != nil {
				current.Edges = append(current.Edges, Edge{
					Type:   EdgeLinear,
					Points: [4]Point{cursor, end},
				})
			}
			cursor = end
			shape.Bounds.expand(end)

		case OpQuadTo:
			ctrl, end := seg.Args[0], seg.Args[1]
			if current != nil {
				current.Edges = append(current.Edges, Edge{
					Type:   EdgeQuadratic,
					Points: [4]Point{cursor, ctrl, end},
				})
			}
			cursor = end
			shape.Bounds.expand(ctrl)
			shape.Bounds.expand(end)

		case OpCubeTo:
			c1, c2, end := seg.Args[0], seg.Args[1], seg.Args[2]
			if current != nil {
				current.Edges = append(current.Edges, Edge{
					Type:   EdgeCubic,
					Points: [4]Point{cursor, c1, c2, end},
				})
			}
			cursor = end
			shape.Bounds.expand(c1)
			shape.Bounds.expand(c2)
			shape.Bounds.expand(end)
		}
	}

	if shape.Bounds.IsEmpty() {
		shape.Bounds = Rect{}
	}
	return shape
}

// cornerAngleThreshold is the dot-product threshold below which two
// adjacent edges are considered to meet at a sharp corner and therefore
// split into separate color channels, per the multi-channel SDF
// technique. 0.5 corresponds to roughly a 60 degree turn.
const cornerAngleThreshold = 0.5

// AssignColors colors every edge of every contour so that adjacent
// smooth edges share a channel and sharp corners switch channels.
func (s *Shape) AssignColors() {
	for i := range s.Contours {
		assignContourColors(&s.Contours[i])
	}
}

func assignContourColors(c *Contour) {
	n := len(c.Edges)
	if n == 0 {
		return
	}
	if n == 1 {
		c.Edges[0].Color = ColorWhite
		return
	}

	colors := []EdgeColor{ColorYellow, ColorCyan, ColorMagenta}
	colorIdx := 0
	c.Edges[0].Color = colors[colorIdx]

	for i := 1; i < n; i++ {
		prevDir := c.Edges[i-1].DirectionAt(1).Normalized()
		curDir := c.Edges[i].DirectionAt(0).Normalized()
		cos := prevDir.Dot(curDir)

		if cos < cornerAngleThreshold {
			colorIdx = switchColor(colorIdx)
		}
		c.Edges[i].Color = colors[colorIdx]
	}

	// Close the loop: if the last and first edges meet at a sharp corner
	// but ended up with the same color, switch the last edge to the next
	// color.
	if n > 2 {
		lastDir := c.Edges[n-1].DirectionAt(1).Normalized()
		firstDir := c.Edges[0].DirectionAt(0).Normalized()
		if lastDir.Dot(firstDir) < cornerAngleThreshold && c.Edges[n-1].Color == c.Edges[0].Color {
			idx := switchColor(colorIdx)
			c.Edges[n-1].Color = colors[idx]
		}
	}
}

func switchColor(idx int) int {
	return (idx + 1) % 3
}

// sampleSignedDistance evaluates the multi-channel signed distance at a
// point in outline space, returning one SignedDistance per channel
// (R, G, B) — the winner among edges carrying that channel, per the
// standard MSDF pixel shader algorithm.
func (s *Shape) sampleSignedDistance(p Point) (r, g, b SignedDistance) {
	r, g, b = signedDistanceInfinite, signedDistanceInfinite, signedDistanceInfinite

	for _, contour := range s.Contours {
		for _, edge := range contour.Edges {
			d := edge.SignedDistance(p)
			if edge.Color&ColorRed != 0 && d.Less(r) {
				r = d
			}
			if edge.Color&ColorGreen != 0 && d.Less(g) {
				g = d
			}
			if edge.Color&ColorBlue != 0 && d.Less(b) {
				b = d
			}
		}
	}
	return r, g, b
}

// trueSignedDistance evaluates the true (single-channel) signed
// distance, used as the 4th MTSDF channel.
func (s *Shape) trueSignedDistance(p Point) float64 {
	best := math.Inf(1)
	for _, contour := range s.Contours {
		for _, edge := range contour.Edges {
			d := edge.SignedDistance(p)
			if math.Abs(d.Distance) < math.Abs(best) {
				best = d.Distance
			}
		}
	}
	return best
}
