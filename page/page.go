// Package page implements the row-shelf rectangle packer that backs one
// fixed-size RGBA atlas texture.
//
// Glyphs are placed left-to-right on a "shelf" whose height is the
// tallest glyph placed on it so far; when a glyph doesn't fit
// horizontally the packer drops to a new shelf below the current one.
// Page also owns the CPU-side pixel buffer and performs the blit itself,
// since the vertical flip at blit time needs the page's own stride.
package page

import (
	"log/slog"
	"time"

	"github.com/gogpu/fontatlas/internal/logging"
)

// Page is a fixed-size RGBA pixel buffer paired with one texture handle.
// It implements row-shelf packing with a 1-pixel gutter and tracks a
// dirty flag for deferred GPU upload.
//
// Page is not safe for concurrent use; all Page mutation happens on the
// Font Atlas's single logical executor.
type Page struct {
	Width, Height int

	buffer  []byte
	handle  Handle
	backend Backend

	cursorX, cursorY, rowHeight int

	dirty        bool
	lastAccessed time.Time
}

// New creates a square page per cfg and asks backend to allocate a
// matching texture from the (zeroed) initial buffer.
func New(backend Backend, cfg Config) (*Page, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	size := cfg.Size
	buf := make([]byte, size*size*4)
	h, err := backend.Create(size, size, buf)
	if err != nil {
		return nil, err
	}

	return &Page{
		Width:        size,
		Height:       size,
		buffer:       buf,
		handle:       h,
		backend:      backend,
		lastAccessed: time.Now(),
	}, nil
}

// Handle returns the opaque texture handle backing this page.
func (p *Page) Handle() Handle { return p.handle }

// Dirty reports whether the page has unflushed writes.
func (p *Page) Dirty() bool { return p.dirty }

// LastAccessed returns the timestamp of the most recent TryAdd or touch.
func (p *Page) LastAccessed() time.Time { return p.lastAccessed }

// Touch bumps the last-accessed timestamp without modifying pixels.
// Called on every cache hit and idempotent re-request so LastAccessed
// reflects read traffic, not just writes.
func (p *Page) Touch() { p.lastAccessed = time.Now() }

// TryAdd attempts to place a w*h RGBA rectangle (pixels, byte-for-byte,
// w*h*4 bytes) onto the current shelf, advancing to a new shelf first if
// it doesn't fit on this one. Returns the top-left (x, y) within the page
// and ok=true on success, or ok=false if the page has no room even after
// advancing the shelf.
//
// The source is blitted with a vertical flip — source row r lands at
// destination row h-1-r — because the SDF oracle emits row 0 at the top
// while the UV convention this module exposes wants row 0 at the bottom
// of the stored tile.
func (p *Page) TryAdd(pixels []byte, w, h int) (x, y int, ok bool) {
	paddedW := w + 1
	paddedH := h + 1

	if p.cursorX+paddedW > p.Width {
		p.cursorY += p.rowHeight + 1
		p.cursorX = 0
		p.rowHeight = 0
	}

	if p.cursorY+paddedH > p.Height {
		return 0, 0, false
	}

	x, y = p.cursorX, p.cursorY
	p.blit(pixels, x, y, w, h)

	p.cursorX += paddedW
	if paddedH > p.rowHeight {
		p.rowHeight = paddedH
	}
	p.dirty = true
	p.lastAccessed = time.Now()

	logging.Get().Debug("page: placed glyph",
		slog.Int("x", x), slog.Int("y", y), slog.Int("w", w), slog.Int("h", h))

	return x, y, true
}

// blit copies an RGBA rectangle into the page buffer at (x, y) with a
// vertical flip: source row r writes to destination row h-1-r.
// Byte-for-byte, no color conversion or rescale — the oracle output is
// already exactly w×h.
func (p *Page) blit(pixels []byte, x, y, w, h int) {
	const channels = 4
	stride := p.Width * channels

	for r := 0; r < h; r++ {
		srcOff := r * w * channels
		dstRow := h - 1 - r
		dstOff := (y+dstRow)*stride + x*channels
		copy(p.buffer[dstOff:dstOff+w*channels], pixels[srcOff:srcOff+w*channels])
	}
}

// Flush uploads the buffer to the texture backend if the page has
// unflushed writes, then clears the dirty flag.
func (p *Page) Flush() error {
	if !p.dirty {
		return nil
	}
	if err := p.backend.Update(p.handle, p.buffer); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

// Destroy releases the backing texture. The page must not be used
// afterwards.
func (p *Page) Destroy() error {
	return p.backend.Destroy(p.handle)
}

// CanFit reports whether a w*h rectangle could be placed without
// mutating any packing state — used by the variant atlas to choose
// between existing mixed pages before committing to one.
func (p *Page) CanFit(w, h int) bool {
	paddedW := w + 1
	paddedH := h + 1

	cursorX, cursorY, rowHeight := p.cursorX, p.cursorY, p.rowHeight
	if cursorX+paddedW > p.Width {
		cursorY += rowHeight + 1
		cursorX = 0
	}
	return cursorY+paddedH <= p.Height
}

// ShelfCount returns the number of shelf rows started so far, mirroring
// msdf.ShelfAllocator.ShelfCount. Purely observational.
func (p *Page) ShelfCount() int {
	if p.cursorX == 0 && p.cursorY == 0 && p.rowHeight == 0 {
		return 0
	}
	count := p.cursorY / maxInt(1, p.rowHeight+1)
	return count + 1
}

// Utilization returns the fraction of the page's area covered by placed
// rectangles' shelf rows (including their padding), in [0, 1]. Purely
// observational, mirroring msdf.ShelfAllocator.Utilization.
func (p *Page) Utilization() float64 {
	used := p.cursorY + p.rowHeight
	if used <= 0 {
		return 0
	}
	if used > p.Height {
		used = p.Height
	}
	return float64(used) / float64(p.Height)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
