package fontatlas

import (
	"testing"

	"github.com/gogpu/fontatlas/oracle"
)

// bigGlyphOracle always reports a present glyph and generates a fixed
// large square of pixels, letting tests force page overflow without
// real font data.
type bigGlyphOracle struct {
	size int
}

func (o *bigGlyphOracle) LoadFont(b []byte) error      { return nil }
func (o *bigGlyphOracle) HasGlyph(cp rune) (bool, error) { return true, nil }

func (o *bigGlyphOracle) Generate(cp rune, fontSize int, pixelRange float64) (*oracle.Result, error) {
	return o.generate()
}
func (o *bigGlyphOracle) GenerateMTSDF(cp rune, fontSize int, pixelRange float64) (*oracle.Result, error) {
	return o.generate()
}
func (o *bigGlyphOracle) GenerateMTSDFVar(cp rune, fontSize int, pixelRange float64) (*oracle.Result, error) {
	return o.generate()
}
func (o *bigGlyphOracle) SetVariationAxes(axes map[string]float64) error { return nil }
func (o *bigGlyphOracle) ClearVariationAxes() error                     { return nil }

func (o *bigGlyphOracle) generate() (*oracle.Result, error) {
	pixels := make([]float32, o.size*o.size*4)
	return &oracle.Result{
		Metrics:  oracle.Metrics{Width: o.size, Height: o.size, Advance: o.size},
		Pixels:   pixels,
		Channels: 4,
	}, nil
}

// S5 — page overflow into a new mixed page.
func TestPageOverflowCreatesAdditionalMixedPage(t *testing.T) {
	cfg := Config{GenSizes: []int{32}, SizeThresholds: nil, PageSize: 16, MaxMixedPages: 8, PixelRange: 4}
	a, err := New(cfg, &fakeBackend{}, &bigGlyphOracle{size: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// CJK code points: non-Latin, forced onto mixed pages. Each 10x10
	// glyph (+1px gutter) nearly fills a 16x16 page on its own, so a
	// second one must overflow into a fresh mixed page.
	for _, cp := range []rune{0x4E00, 0x4E01, 0x4E02} {
		if _, err := a.GetGlyph(Request{CodePoint: cp, VariantID: "cjk", RenderSize: 32, FontBytes: []byte("font")}); err != nil {
			t.Fatalf("GetGlyph(%U): %v", cp, err)
		}
	}
	if err := a.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	v, err := a.variantAtlas("cjk", 32)
	if err != nil {
		t.Fatalf("variantAtlas: %v", err)
	}
	if v.PageCount() < 2 {
		t.Fatalf("PageCount() = %d, want >= 2 after forced overflow", v.PageCount())
	}
}

// A Latin page overflow is fatal; Tick must recover the panic into a
// normal error rather than crashing the process.
func TestLatinPageOverflowRecoversIntoError(t *testing.T) {
	cfg := Config{GenSizes: []int{32}, SizeThresholds: nil, PageSize: 8, MaxMixedPages: 8, PixelRange: 4}
	a, err := New(cfg, &fakeBackend{}, &bigGlyphOracle{size: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.GetGlyph(Request{CodePoint: 'A', VariantID: "v", RenderSize: 32, FontBytes: []byte("font")}); err != nil {
		t.Fatalf("GetGlyph: %v", err)
	}

	if err := a.Tick(); err == nil {
		t.Fatal("Tick should return an error when a Latin glyph overflows its page, not panic")
	}
}
