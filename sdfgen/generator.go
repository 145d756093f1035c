package sdfgen

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/fontatlas/oracle"
)

// Generator is a reference oracle.SDFOracle built on
// golang.org/x/image/font/{opentype,sfnt}. One Generator holds at most
// one loaded font at a time; the Worker Pool gives each worker its own
// Generator instance.
//
// Limitation: x/image/font/sfnt has no variable-font instancing API, so
// SetVariationAxes records the requested axes but GenerateMTSDFVar
// always rasterizes the font's default (non-variable) instance. This is
// an honest gap in the reference implementation — production callers
// supply a real WASM oracle for variable fonts.
type Generator struct {
	mu   sync.Mutex
	font *loadedFont
	axes map[string]float64
}

// NewGenerator returns an oracle with no font loaded yet.
func NewGenerator() *Generator {
	return &Generator{}
}

// LoadFont parses font bytes. Idempotent for the same byte slice.
func (g *Generator) LoadFont(fontBytes []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.font != nil && g.font.sameBytes(fontBytes) {
		return nil
	}
	lf, err := parseFont(fontBytes)
	if err != nil {
		return err
	}
	g.font = lf
	return nil
}

// HasGlyph reports whether the loaded font contains cp.
func (g *Generator) HasGlyph(cp rune) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.font == nil {
		return false, fmt.Errorf("sdfgen: HasGlyph called before LoadFont")
	}
	gid, err := g.font.glyphIndex(cp)
	if err != nil {
		return false, err
	}
	return gid != 0, nil
}

// SetVariationAxes records axis coordinates for subsequent
// GenerateMTSDFVar calls. See the Generator doc comment's limitation
// note.
func (g *Generator) SetVariationAxes(axes map[string]float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.axes = axes
	return nil
}

// ClearVariationAxes resets to the font's default instance.
func (g *Generator) ClearVariationAxes() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.axes = nil
	return nil
}

// Generate produces a 3-channel MSDF.
func (g *Generator) Generate(cp rune, fontSize int, pixelRange float64) (*oracle.Result, error) {
	return g.generate(cp, fontSize, pixelRange, 3)
}

// GenerateMTSDF produces a 4-channel MTSDF (MSDF + true distance alpha).
func (g *Generator) GenerateMTSDF(cp rune, fontSize int, pixelRange float64) (*oracle.Result, error) {
	return g.generate(cp, fontSize, pixelRange, 4)
}

// GenerateMTSDFVar is GenerateMTSDF under the axes set by
// SetVariationAxes. See the Generator doc comment's limitation note: the
// axes are recorded but not applied by this reference implementation.
func (g *Generator) GenerateMTSDFVar(cp rune, fontSize int, pixelRange float64) (*oracle.Result, error) {
	return g.generate(cp, fontSize, pixelRange, 4)
}

func (g *Generator) generate(cp rune, fontSize int, pixelRange float64, channels int) (*oracle.Result, error) {
	g.mu.Lock()
	lf := g.font
	g.mu.Unlock()

	if lf == nil {
		return nil, fmt.Errorf("sdfgen: generate called before LoadFont")
	}

	g.mu.Lock()
	segments, advance, err := lf.extractOutline(cp, float64(fontSize))
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		// Glyph exists but has no visible pixels (space, etc).
		return nil, nil
	}

	shape := FromOutline(segments)
	shape.AssignColors()

	w, h := fontSize, fontSize
	pad := pixelRange
	scaleX := 1.0
	if shape.Bounds.Width() > 0 {
		scaleX = (float64(w) - 2*pad) / shape.Bounds.Width()
	}
	scaleY := 1.0
	if shape.Bounds.Height() > 0 {
		scaleY = (float64(h) - 2*pad) / shape.Bounds.Height()
	}
	scale := math.Min(scaleX, scaleY)
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		scale = 1
	}

	pixels := make([]float32, w*h*channels)

	var wg sync.WaitGroup
	const bands = 4
	rowsPerBand := (h + bands - 1) / bands
	for band := 0; band < bands; band++ {
		y0 := band * rowsPerBand
		y1 := y0 + rowsPerBand
		if y1 > h {
			y1 = h
		}
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			renderRows(shape, pixels, w, h, channels, y0, y1, scale, pad, pixelRange)
		}(y0, y1)
	}
	wg.Wait()

	return &oracle.Result{
		Metrics: oracle.Metrics{
			Width:       w,
			Height:      h,
			Advance:     int(math.Round(float64(advance) * scale)),
			PlaneLeft:   shape.Bounds.MinX,
			PlaneBottom: shape.Bounds.MinY,
			PlaneRight:  shape.Bounds.MaxX,
			PlaneTop:    shape.Bounds.MaxY,
		},
		Pixels:   pixels,
		Channels: channels,
	}, nil
}

// renderRows fills pixel rows [y0, y1) of an MSDF/MTSDF buffer. Each
// pixel maps back to outline space via scale/pad, samples the shape's
// per-channel signed distance, and normalizes distance into [0, 1]
// using pixelRange — the standard MSDF shader convention, grounded in
// msdf.Generator.processRows/channelDistance.
func renderRows(shape *Shape, pixels []float32, w, h, channels, y0, y1 int, scale, pad, pixelRange float64) {
	for py := y0; py < y1; py++ {
		for px := 0; px < w; px++ {
			outlineX := shape.Bounds.MinX + (float64(px)+0.5-pad)/scale
			outlineY := shape.Bounds.MinY + (float64(py)+0.5-pad)/scale
			p := Point{X: outlineX, Y: outlineY}

			r, g, b := shape.sampleSignedDistance(p)
			idx := (py*w + px) * channels

			pixels[idx+0] = normalizeDistance(r.Distance, scale, pixelRange)
			pixels[idx+1] = normalizeDistance(g.Distance, scale, pixelRange)
			pixels[idx+2] = normalizeDistance(b.Distance, scale, pixelRange)
			if channels == 4 {
				trueDist := shape.trueSignedDistance(p)
				pixels[idx+3] = normalizeDistance(trueDist, scale, pixelRange)
			}
		}
	}
}

func normalizeDistance(d, scale, pixelRange float64) float32 {
	v := d*scale/pixelRange + 0.5
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return float32(v)
}
