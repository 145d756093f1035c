package variant

import (
	"testing"

	"github.com/gogpu/fontatlas/page"
)

type fakeBackend struct{ n, destroyed int }

func (f *fakeBackend) Create(w, h int, initial []byte) (page.Handle, error) {
	f.n++
	return f.n, nil
}
func (f *fakeBackend) Update(h page.Handle, buf []byte) error { return nil }
func (f *fakeBackend) Destroy(h page.Handle) error            { f.destroyed++; return nil }

func pixels(w, h int) []byte { return make([]byte, w*h*4) }

func TestIsLatin(t *testing.T) {
	for _, cp := range LatinCodePoints() {
		if !IsLatin(cp) {
			t.Fatalf("IsLatin(%q) = false, want true", cp)
		}
	}
	if len(LatinCodePoints()) != 62 {
		t.Fatalf("len(LatinCodePoints()) = %d, want 62", len(LatinCodePoints()))
	}
	for _, cp := range []rune{' ', '@', '[', '`', '{', 0x1F600} {
		if IsLatin(cp) {
			t.Fatalf("IsLatin(%q) = true, want false", cp)
		}
	}
}

func TestReserveThenFillTransitionsOutOfPending(t *testing.T) {
	a, err := New("v", 32, &fakeBackend{}, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.ReserveGlyph('A'); err != nil {
		t.Fatalf("ReserveGlyph: %v", err)
	}
	if _, pending, known := a.GetGlyph('A'); !pending || !known {
		t.Fatalf("GetGlyph after reserve = pending=%v known=%v, want true,true", pending, known)
	}

	if err := a.FillGlyph('A', pixels(4, 4), 4, 4, Metrics{Width: 4, Height: 4}); err != nil {
		t.Fatalf("FillGlyph: %v", err)
	}

	loc, pending, known := a.GetGlyph('A')
	if pending || !known {
		t.Fatalf("GetGlyph after fill = pending=%v known=%v, want false,true", pending, known)
	}
	if loc.Width != 4 || loc.Height != 4 {
		t.Fatalf("filled location = %dx%d, want 4x4", loc.Width, loc.Height)
	}
	if loc.Empty || loc.Missing {
		t.Fatal("filled location should not be empty or missing")
	}
}

func TestReserveIsIdempotentForPendingCodePoint(t *testing.T) {
	a, _ := New("v", 32, &fakeBackend{}, DefaultConfig())

	loc1, err := a.ReserveGlyph('Z')
	if err != nil {
		t.Fatalf("ReserveGlyph: %v", err)
	}
	loc2, err := a.ReserveGlyph('Z')
	if err != nil {
		t.Fatalf("ReserveGlyph (second): %v", err)
	}
	if loc1 != loc2 {
		t.Fatal("a second reservation of a pending code point must return the same Location pointer")
	}
}

func TestMarkEmptyClearsPendingAndZeroesRect(t *testing.T) {
	a, _ := New("v", 32, &fakeBackend{}, DefaultConfig())
	a.ReserveGlyph(' ')
	a.MarkEmpty(' ', false)

	loc, pending, known := a.GetGlyph(' ')
	if pending || !known {
		t.Fatalf("GetGlyph after markEmpty = pending=%v known=%v, want false,true", pending, known)
	}
	if !loc.Empty || loc.Missing {
		t.Fatal("markEmpty(cp, false) should set Empty=true, Missing=false")
	}
	if loc.Width != 0 || loc.Height != 0 {
		t.Fatal("markEmpty should zero the rectangle")
	}
}

func TestMarkEmptyMissingVariant(t *testing.T) {
	a, _ := New("v", 32, &fakeBackend{}, DefaultConfig())
	a.ReserveGlyph(0x1F600)
	a.MarkEmpty(0x1F600, true)

	loc, _, _ := a.GetGlyph(0x1F600)
	if !loc.Missing || !loc.Empty {
		t.Fatal("markEmpty(cp, true) should set Missing=true and Empty=true (a zero rectangle has no visible pixels either way)")
	}
}

func TestLatinGlyphsShareOnePage(t *testing.T) {
	a, _ := New("v", 32, &fakeBackend{}, DefaultConfig())

	for _, cp := range []rune{'0', 'A', 'z'} {
		a.ReserveGlyph(cp)
		if err := a.FillGlyph(cp, pixels(4, 4), 4, 4, Metrics{}); err != nil {
			t.Fatalf("FillGlyph(%q): %v", cp, err)
		}
	}

	if a.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1 (all Latin glyphs share the Latin page)", a.PageCount())
	}
}

func TestFillGlyphAllocatesFreshMixedPageOnOverflow(t *testing.T) {
	cfg := Config{PageSize: 8, MaxMixedPages: 8}
	a, _ := New("v", 32, &fakeBackend{}, cfg)

	// A 6x6 glyph (7x7 with its gutter) on an 8x8 page leaves no room
	// for a second one beside or below it; force overflow into a second
	// mixed page.
	a.ReserveGlyph(0x4E00)
	if err := a.FillGlyph(0x4E00, pixels(6, 6), 6, 6, Metrics{}); err != nil {
		t.Fatalf("FillGlyph: %v", err)
	}
	a.ReserveGlyph(0x4E01)
	if err := a.FillGlyph(0x4E01, pixels(6, 6), 6, 6, Metrics{}); err != nil {
		t.Fatalf("FillGlyph: %v", err)
	}

	if a.PageCount() < 2 {
		t.Fatalf("PageCount() = %d, want >= 2 after overflow", a.PageCount())
	}
}

func TestFillGlyphOnLatinOverflowPanics(t *testing.T) {
	cfg := Config{PageSize: 4, MaxMixedPages: 8}
	a, _ := New("v", 32, &fakeBackend{}, cfg)

	a.ReserveGlyph('A')
	if err := a.FillGlyph('A', pixels(3, 3), 3, 3, Metrics{}); err != nil {
		t.Fatalf("first Latin fill should succeed: %v", err)
	}

	a.ReserveGlyph('B')
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("FillGlyph should panic with *LatinPageOverflowError when the Latin page is exhausted")
		} else if _, ok := r.(*LatinPageOverflowError); !ok {
			t.Fatalf("recovered panic value = %T, want *LatinPageOverflowError", r)
		}
	}()
	a.FillGlyph('B', pixels(3, 3), 3, 3, Metrics{})
}

func TestCloseDestroysEveryPage(t *testing.T) {
	backend := &fakeBackend{}
	a, _ := New("v", 32, backend, DefaultConfig())

	a.ReserveGlyph('A')
	a.FillGlyph('A', pixels(4, 4), 4, 4, Metrics{})
	a.ReserveGlyph(0x4E00)
	a.FillGlyph(0x4E00, pixels(4, 4), 4, 4, Metrics{})

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a.PageCount() != 0 {
		t.Fatalf("PageCount() after Close = %d, want 0", a.PageCount())
	}
	if backend.destroyed != 2 {
		t.Fatalf("backend.Destroy calls = %d, want 2 (Latin page + one mixed page)", backend.destroyed)
	}
}

func TestAddGlyphInsertsWithoutPriorReservation(t *testing.T) {
	a, _ := New("v", 32, &fakeBackend{}, DefaultConfig())

	if err := a.AddGlyph('A', pixels(4, 4), 4, 4, Metrics{Width: 4, Height: 4}); err != nil {
		t.Fatalf("AddGlyph: %v", err)
	}

	loc, pending, known := a.GetGlyph('A')
	if pending || !known {
		t.Fatal("AddGlyph should leave the glyph cached, not pending")
	}
	if loc.Width != 4 {
		t.Fatalf("loc.Width = %d, want 4", loc.Width)
	}
}
