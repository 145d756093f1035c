// Package fontatlas is the public facade: it maps (variant-id,
// render-size) to a Variant Atlas, selects a generation size from
// render size, owns the deferred-batch scheduler, and drives the SDF
// oracle. See DESIGN.md for the package breakdown.
package fontatlas

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/fontatlas/internal/logging"
	"github.com/gogpu/fontatlas/oracle"
	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/variant"
)

// Callback is invoked once per non-empty drain, after every dirty page
// has been flushed.
type Callback func()

// Atlas is the Font Atlas facade. Not safe for concurrent use: it is
// single-threaded cooperative — enqueue, reserve, fill, flush, and the
// callback all run on one logical executor. Callers that need the drain
// to run on a specific schedule should call Tick from that schedule
// themselves.
type Atlas struct {
	cfg     Config
	backend page.Backend
	oracle  oracle.SDFOracle

	variants map[string]*variant.Atlas

	fifo           []pendingGlyph
	drainScheduled bool

	onGlyphsReady Callback
}

// New constructs a Font Atlas. backend and oracleImpl are its two
// external collaborators; oracleImpl may be nil if the caller only ever
// uses a Worker Pool directly (the Worker Pool carries its own oracle
// instances and doesn't go through Atlas.Tick).
func New(cfg Config, backend page.Backend, oracleImpl oracle.SDFOracle) (*Atlas, error) {
	if backend == nil {
		return nil, page.ErrNilBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Atlas{
		cfg:      cfg,
		backend:  backend,
		oracle:   oracleImpl,
		variants: make(map[string]*variant.Atlas),
	}, nil
}

// SetCallback installs the function invoked once per non-empty drain.
func (a *Atlas) SetCallback(cb Callback) { a.onGlyphsReady = cb }

func variantKey(variantID string, genSize int) string {
	return fmt.Sprintf("%s_%d", variantID, genSize)
}

func (a *Atlas) variantAtlas(variantID string, genSize int) (*variant.Atlas, error) {
	key := variantKey(variantID, genSize)
	if v, ok := a.variants[key]; ok {
		return v, nil
	}
	v, err := variant.New(variantID, genSize, a.backend, variant.Config{
		PageSize:      a.cfg.PageSize,
		MaxMixedPages: a.cfg.MaxMixedPages,
	})
	if err != nil {
		return nil, err
	}
	a.variants[key] = v
	return v, nil
}

// GetGlyph selects a generation size, looks up or creates the Variant
// Atlas, and either returns a ready cached entry or reserves a slot and
// enqueues generation.
func (a *Atlas) GetGlyph(req Request) (Info, error) {
	genSize := a.cfg.genSizeFor(req.RenderSize)

	v, err := a.variantAtlas(req.VariantID, genSize)
	if err != nil {
		return Info{}, err
	}

	loc, pending, known := v.GetGlyph(req.CodePoint)
	if known && !pending {
		return infoFromLocation(loc, genSize, true), nil
	}
	if pending {
		// Idempotent re-request: return placeholder info, do not
		// enqueue again.
		placeholderLoc, _ := v.ReserveGlyph(req.CodePoint)
		if placeholderLoc != nil && placeholderLoc.Page != nil {
			placeholderLoc.Page.Touch()
		}
		return infoFromLocation(placeholderLoc, genSize, false), nil
	}

	reserved, err := v.ReserveGlyph(req.CodePoint)
	if err != nil {
		return Info{}, err
	}
	a.enqueue(pendingGlyph{
		codePoint: req.CodePoint,
		genSize:   genSize,
		fontBytes: req.FontBytes,
		axes:      req.Axes,
		variantID: req.VariantID,
	})
	return infoFromLocation(reserved, genSize, false), nil
}

// HasPendingWork is true iff the FIFO is non-empty or a drain task is
// outstanding.
func (a *Atlas) HasPendingWork() bool {
	return len(a.fifo) > 0 || a.drainScheduled
}

// Status reports aggregate observability counters, including the
// hit/miss counters accumulated by each Variant Atlas.
type Status struct {
	AtlasCount   int
	PageCount    int
	GlyphCount   int
	MemoryBytes  int64
	Hits, Misses uint64
}

// Close destroys every page across every variant this Font Atlas has
// created, releasing their texture backend resources.
func (a *Atlas) Close() error {
	for key, v := range a.variants {
		if err := v.Close(); err != nil {
			return err
		}
		delete(a.variants, key)
	}
	return nil
}

func (a *Atlas) StatusSnapshot() Status {
	var s Status
	s.AtlasCount = len(a.variants)
	for _, v := range a.variants {
		s.PageCount += v.PageCount()
		s.GlyphCount += v.GlyphCount()
		hits, misses := v.Stats()
		s.Hits += hits
		s.Misses += misses
	}
	s.MemoryBytes = int64(s.PageCount) * int64(a.cfg.PageSize) * int64(a.cfg.PageSize) * 4
	logging.Get().Debug("fontatlas: status",
		slog.Int("atlasCount", s.AtlasCount), slog.Int("pageCount", s.PageCount),
		slog.Int("glyphCount", s.GlyphCount))
	return s
}
