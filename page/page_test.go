package page

import "testing"

type fakeBackend struct {
	created   int
	updated   int
	destroyed int
	lastBuf   []byte
}

func (f *fakeBackend) Create(width, height int, initial []byte) (Handle, error) {
	f.created++
	return width * height, nil
}

func (f *fakeBackend) Update(h Handle, buf []byte) error {
	f.updated++
	f.lastBuf = buf
	return nil
}

func (f *fakeBackend) Destroy(h Handle) error {
	f.destroyed++
	return nil
}

func solidPixels(w, h int, r, g, b, a byte) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		buf[i*4+0] = r
		buf[i*4+1] = g
		buf[i*4+2] = b
		buf[i*4+3] = a
	}
	return buf
}

func TestNewRejectsNilBackend(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err != ErrNilBackend {
		t.Fatalf("New(nil, ...) error = %v, want ErrNilBackend", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	b := &fakeBackend{}
	if _, err := New(b, Config{Size: 0}); err == nil {
		t.Fatal("New with Size=0 should fail validation")
	}
}

func TestTryAddFirstGlyphAtOrigin(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	x, y, ok := p.TryAdd(solidPixels(4, 4, 1, 2, 3, 255), 4, 4)
	if !ok {
		t.Fatal("TryAdd should succeed on an empty page")
	}
	if x != 0 || y != 0 {
		t.Fatalf("first glyph at (%d,%d), want (0,0)", x, y)
	}
	if !p.Dirty() {
		t.Fatal("page should be dirty after TryAdd")
	}
}

func TestTryAddAdvancesCursorWithGutter(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p.TryAdd(solidPixels(4, 4, 0, 0, 0, 0), 4, 4)
	x, y, ok := p.TryAdd(solidPixels(4, 4, 0, 0, 0, 0), 4, 4)
	if !ok {
		t.Fatal("second TryAdd should succeed")
	}
	if x != 5 || y != 0 {
		t.Fatalf("second glyph at (%d,%d), want (5,0) — 4px glyph + 1px gutter", x, y)
	}
}

func TestTryAddWrapsToNewShelf(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// First glyph fills the row (paddedW = 9 of 10 available).
	x1, y1, ok := p.TryAdd(solidPixels(8, 2, 0, 0, 0, 0), 8, 2)
	if !ok || x1 != 0 || y1 != 0 {
		t.Fatalf("first placement = (%d,%d,%v), want (0,0,true)", x1, y1, ok)
	}

	// Second glyph of the same width cannot fit beside it; must wrap.
	x2, y2, ok := p.TryAdd(solidPixels(8, 2, 0, 0, 0, 0), 8, 2)
	if !ok {
		t.Fatal("second placement should still fit after wrapping shelves")
	}
	if x2 != 0 || y2 == y1 {
		t.Fatalf("second placement = (%d,%d), want wrap to a new shelf (x=0, y>%d)", x2, y2, y1)
	}
}

func TestTryAddReportsNoFitWhenPageExhausted(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, _, ok := p.TryAdd(solidPixels(3, 3, 0, 0, 0, 0), 3, 3); !ok {
		t.Fatal("first glyph should fit exactly (3+1 padding == 4)")
	}
	if _, _, ok := p.TryAdd(solidPixels(3, 3, 0, 0, 0, 0), 3, 3); ok {
		t.Fatal("second glyph should not fit on an exhausted 4x4 page")
	}
}

func TestBlitAppliesVerticalFlip(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Row 0 red, row 1 blue in a 1x2 source.
	src := make([]byte, 1*2*4)
	src[0], src[1], src[2], src[3] = 255, 0, 0, 255 // row 0: red
	src[4], src[5], src[6], src[7] = 0, 0, 255, 255 // row 1: blue

	x, y, ok := p.TryAdd(src, 1, 2)
	if !ok {
		t.Fatal("TryAdd failed")
	}

	stride := p.Width * 4
	topOff := y*stride + x*4
	botOff := (y+1)*stride + x*4

	if p.buffer[topOff] != 0 || p.buffer[topOff+2] != 255 {
		t.Fatalf("top destination row should hold source row 1 (blue), got %v", p.buffer[topOff:topOff+4])
	}
	if p.buffer[botOff] != 255 || p.buffer[botOff+2] != 0 {
		t.Fatalf("bottom destination row should hold source row 0 (red), got %v", p.buffer[botOff:botOff+4])
	}
}

func TestFlushOnlyUploadsWhenDirty(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.Flush(); err != nil {
		t.Fatalf("Flush on clean page: %v", err)
	}
	if b.updated != 0 {
		t.Fatalf("Flush should not call backend.Update on a clean page, got %d calls", b.updated)
	}

	p.TryAdd(solidPixels(2, 2, 0, 0, 0, 0), 2, 2)
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if b.updated != 1 {
		t.Fatalf("Flush should call backend.Update once after a dirty write, got %d", b.updated)
	}
	if p.Dirty() {
		t.Fatal("Flush should clear the dirty flag")
	}
}

func TestDestroyDelegatesToBackend(t *testing.T) {
	b := &fakeBackend{}
	p, err := New(b, Config{Size: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if b.destroyed != 1 {
		t.Fatalf("Destroy should delegate to backend, got %d calls", b.destroyed)
	}
}
