// Package variant implements the Variant Atlas: the per-(variant-id,
// generation-size) cache of glyph locations, partitioned into a single
// Latin page and a list of mixed pages.
//
// Lazy page creation, a code-point index, and hit/miss counters back a
// single flat atlas adapted into a Latin/mixed partition: the fixed
// 62-character Latin set always lives on its own page so it never
// competes for room with the much larger and more variable mixed set.
package variant

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/fontatlas/internal/logging"
	"github.com/gogpu/fontatlas/page"
)

// Config governs how an Atlas allocates pages.
type Config struct {
	PageSize      int
	MaxMixedPages int
}

// DefaultConfig returns pageSize=1024, maxMixedPages=8.
func DefaultConfig() Config {
	return Config{PageSize: 1024, MaxMixedPages: 8}
}

// Validate checks Config fields are usable.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return &ConfigError{Field: "PageSize", Reason: "must be positive"}
	}
	if c.MaxMixedPages <= 0 {
		return &ConfigError{Field: "MaxMixedPages", Reason: "must be positive"}
	}
	return nil
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("variant: invalid config field %q: %s", e.Field, e.Reason)
}

// LatinPageOverflowError is a fatal, programmer-error condition: the
// dedicated Latin page could not fit a Latin glyph at the configured
// page size / generation size. Raised via panic inside FillGlyph and
// recovered at the nearest exported boundary (the root fontatlas
// package).
type LatinPageOverflowError struct {
	CodePoint     rune
	Width, Height int
}

func (e *LatinPageOverflowError) Error() string {
	return fmt.Sprintf("variant: Latin page overflow placing U+%04X (%dx%d): "+
		"the 62-character Latin set must fit one page at this generation size; "+
		"raise pageSize or lower genSize", e.CodePoint, e.Width, e.Height)
}

// FreshPageOverflowError is a fatal, programmer-error condition: a
// brand-new mixed page could not fit a single glyph, meaning the glyph
// is larger than a page.
type FreshPageOverflowError struct {
	CodePoint     rune
	Width, Height int
	PageSize      int
}

func (e *FreshPageOverflowError) Error() string {
	return fmt.Sprintf("variant: fresh page overflow placing U+%04X (%dx%d) into a %dx%d page: "+
		"glyph exceeds page size; raise pageSize or lower genSize",
		e.CodePoint, e.Width, e.Height, e.PageSize, e.PageSize)
}

// Atlas caches glyphs for one variant at one generation size: a lazily
// created Latin page plus an ordered list of mixed pages, a code-point
// index, and the set of code points currently reserved but unfilled.
//
// Not safe for concurrent use — all mutation happens on the Font Atlas's
// single logical executor.
type Atlas struct {
	VariantID string
	GenSize   int

	backend page.Backend
	cfg     Config

	latinPage  *page.Page
	mixedPages []*page.Page

	index   map[rune]*Location
	pending map[rune]struct{}

	hits, misses uint64
}

// New creates an empty Variant Atlas. Pages are created lazily on first
// reservation.
func New(variantID string, genSize int, backend page.Backend, cfg Config) (*Atlas, error) {
	if backend == nil {
		return nil, page.ErrNilBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Atlas{
		VariantID: variantID,
		GenSize:   genSize,
		backend:   backend,
		cfg:       cfg,
		index:     make(map[rune]*Location),
		pending:   make(map[rune]struct{}),
	}, nil
}

// GetGlyph returns the cached Location for cp, whether it is still
// pending, and whether it is known at all: cached (found, not pending) →
// (loc, false, true); pending → (nil, true, true); unknown → (nil,
// false, false).
func (a *Atlas) GetGlyph(cp rune) (loc *Location, pending bool, known bool) {
	if _, isPending := a.pending[cp]; isPending {
		return nil, true, true
	}
	loc, known = a.index[cp]
	if known {
		a.hits++
		if loc.Page != nil {
			loc.Page.Touch()
		}
	} else {
		a.misses++
	}
	return loc, false, known
}

// ReserveGlyph marks cp pending and inserts a placeholder Location
// referencing the page that will eventually host it; for a mixed code
// point, FillGlyph moves the Location to another mixed page if the glyph
// does not fit on the reserved one. Idempotent: a
// second reservation of an already-pending cp returns the existing
// Location without enqueuing new work — callers are expected to check
// GetGlyph's pending result first.
func (a *Atlas) ReserveGlyph(cp rune) (*Location, error) {
	if loc, ok := a.index[cp]; ok {
		a.pending[cp] = struct{}{}
		return loc, nil
	}

	pg, err := a.pageFor(cp, 0, 0)
	if err != nil {
		return nil, err
	}

	loc := &Location{Page: pg}
	a.index[cp] = loc
	a.pending[cp] = struct{}{}
	return loc, nil
}

// FillGlyph writes pixels into the page class matching cp (Latin or
// mixed), mutating the existing reserved Location in place. On "no fit"
// in a mixed page it allocates a fresh mixed page and retries; no fit in
// the Latin page is fatal.
func (a *Atlas) FillGlyph(cp rune, pixels []byte, w, h int, metrics Metrics) error {
	loc, ok := a.index[cp]
	if !ok {
		return fmt.Errorf("variant: fillGlyph on unknown code point U+%04X", cp)
	}

	if IsLatin(cp) {
		pg, err := a.ensureLatinPage()
		if err != nil {
			return err
		}
		x, y, fit := pg.TryAdd(pixels, w, h)
		if !fit {
			panic(&LatinPageOverflowError{CodePoint: cp, Width: w, Height: h})
		}
		a.commitFill(loc, pg, x, y, w, h, metrics)
		delete(a.pending, cp)
		return nil
	}

	pg, err := a.mixedPageFor(w, h)
	if err != nil {
		return err
	}
	x, y, fit := pg.TryAdd(pixels, w, h)
	if !fit {
		// mixedPageFor already checked CanFit with this exact size; if
		// TryAdd still reports no fit, fall back to a fresh page.
		pg, err = a.newMixedPage()
		if err != nil {
			return err
		}
		x, y, fit = pg.TryAdd(pixels, w, h)
		if !fit {
			panic(&FreshPageOverflowError{CodePoint: cp, Width: w, Height: h, PageSize: a.cfg.PageSize})
		}
	}

	loc.Page = pg
	a.commitFill(loc, pg, x, y, w, h, metrics)
	delete(a.pending, cp)
	return nil
}

// AddGlyph behaves like FillGlyph but for the synchronous prefab path:
// it inserts a fresh Location with no prior reservation.
func (a *Atlas) AddGlyph(cp rune, pixels []byte, w, h int, metrics Metrics) error {
	if _, ok := a.index[cp]; !ok {
		a.index[cp] = &Location{}
	}
	delete(a.pending, cp)
	return a.FillGlyph(cp, pixels, w, h, metrics)
}

// MarkEmpty flags cp's reserved entry as empty and/or missing, zeroes
// its rectangle, and clears pending. If cp has no index entry, a
// placeholder Location with no page is created first.
func (a *Atlas) MarkEmpty(cp rune, missing bool) {
	loc, ok := a.index[cp]
	if !ok {
		loc = &Location{}
		a.index[cp] = loc
	}
	loc.Width, loc.Height = 0, 0
	loc.Empty = true
	loc.Missing = missing
	delete(a.pending, cp)
}

func (a *Atlas) commitFill(loc *Location, pg *page.Page, x, y, w, h int, metrics Metrics) {
	loc.Page = pg
	loc.X, loc.Y = x, y
	loc.Width, loc.Height = w, h
	loc.Metrics = metrics
	loc.Empty = false
	loc.Missing = false
}

// pageFor returns the page class for cp without allocating pixels (used
// by ReserveGlyph, where w/h are not yet known — estimatedW/H may be 0).
func (a *Atlas) pageFor(cp rune, estimatedW, estimatedH int) (*page.Page, error) {
	if IsLatin(cp) {
		return a.ensureLatinPage()
	}
	return a.mixedPageFor(estimatedW, estimatedH)
}

func (a *Atlas) ensureLatinPage() (*page.Page, error) {
	if a.latinPage != nil {
		return a.latinPage, nil
	}
	pg, err := page.New(a.backend, page.Config{Size: a.cfg.PageSize})
	if err != nil {
		return nil, err
	}
	a.latinPage = pg
	return pg, nil
}

// mixedPageFor returns the first existing mixed page on which a w*h
// rectangle fits (Page.CanFit), or creates a new one. ReserveGlyph passes
// a zero size, since the real size is unknown until fill time; that
// selects the first page with room left for a 1x1 rectangle.
func (a *Atlas) mixedPageFor(w, h int) (*page.Page, error) {
	for _, pg := range a.mixedPages {
		if pg.CanFit(w, h) {
			return pg, nil
		}
	}
	return a.newMixedPage()
}

func (a *Atlas) newMixedPage() (*page.Page, error) {
	if len(a.mixedPages) >= a.cfg.MaxMixedPages {
		logging.Get().Warn("variant: max mixed pages exceeded, allocating anyway",
			slog.String("variantId", a.VariantID),
			slog.Int("genSize", a.GenSize),
			slog.Int("maxMixedPages", a.cfg.MaxMixedPages))
	}
	pg, err := page.New(a.backend, page.Config{Size: a.cfg.PageSize})
	if err != nil {
		return nil, err
	}
	a.mixedPages = append(a.mixedPages, pg)
	return pg, nil
}

// Flush uploads every dirty page (Latin and mixed) to the texture backend.
func (a *Atlas) Flush() error {
	if a.latinPage != nil {
		if err := a.latinPage.Flush(); err != nil {
			return err
		}
	}
	for _, pg := range a.mixedPages {
		if err := pg.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// PageCount returns the total number of pages (Latin + mixed) allocated
// so far.
func (a *Atlas) PageCount() int {
	n := len(a.mixedPages)
	if a.latinPage != nil {
		n++
	}
	return n
}

// GlyphCount returns the number of code points with an index entry,
// cached or pending.
func (a *Atlas) GlyphCount() int {
	return len(a.index)
}

// Stats returns hit/miss counters accumulated by GetGlyph, grounded in
// msdf.AtlasManager.Stats.
func (a *Atlas) Stats() (hits, misses uint64) {
	return a.hits, a.misses
}

// Pages returns every page owned by this atlas (Latin first, if present,
// then mixed in allocation order). Used by Close.
func (a *Atlas) Pages() []*page.Page {
	pages := make([]*page.Page, 0, a.PageCount())
	if a.latinPage != nil {
		pages = append(pages, a.latinPage)
	}
	pages = append(pages, a.mixedPages...)
	return pages
}

// Close destroys every page this atlas owns via the texture backend and
// drops them from the atlas. Callers evicting an entire variant (e.g. on
// font unload) should call this before discarding the Atlas.
func (a *Atlas) Close() error {
	for _, pg := range a.Pages() {
		if err := pg.Destroy(); err != nil {
			return err
		}
	}
	a.latinPage = nil
	a.mixedPages = nil
	return nil
}
