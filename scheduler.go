package fontatlas

import (
	"log/slog"

	"github.com/gogpu/fontatlas/internal/logging"
	"github.com/gogpu/fontatlas/oracle"
	"github.com/gogpu/fontatlas/variant"
)

// enqueue pushes a deferred glyph request: append to the FIFO, and if
// no drain task is outstanding, mark one scheduled. The actual drain
// only runs when the caller invokes Tick — an explicit entry point for
// hosts without a microtask queue, rather than silently scheduling a
// goroutine behind the caller's back (that would break the
// single-threaded ordering guarantee the rest of this package relies
// on).
func (a *Atlas) enqueue(g pendingGlyph) {
	a.fifo = append(a.fifo, g)
	if !a.drainScheduled {
		a.drainScheduled = true
		logging.Get().Debug("fontatlas: drain scheduled", slog.Int("fifoLen", len(a.fifo)))
	}
}

// Tick runs the scheduler's drain procedure if one is outstanding. It
// is a no-op if HasPendingWork is false. Multiple GetGlyph calls between
// two Tick calls coalesce into the one drain that the second Tick
// performs.
func (a *Atlas) Tick() (err error) {
	defer recoverGlyphOverflow(&err)

	if !a.drainScheduled {
		return nil
	}

	snapshot := a.fifo
	a.fifo = nil
	a.drainScheduled = false

	if len(snapshot) == 0 {
		return nil
	}

	touched := make(map[string]*variant.Atlas, 4)

	for _, pg := range snapshot {
		v, verr := a.variantAtlas(pg.variantID, pg.genSize)
		if verr != nil {
			return verr
		}
		touched[variantKey(pg.variantID, pg.genSize)] = v

		if a.oracle == nil {
			return ErrNoOracle
		}
		if err := a.processOne(v, pg); err != nil {
			return err
		}
	}

	for _, v := range touched {
		if err := v.Flush(); err != nil {
			return err
		}
	}

	if a.onGlyphsReady != nil {
		a.onGlyphsReady()
	}
	return nil
}

// processOne runs one pending-glyph entry through load→hasGlyph→
// generate→fill.
func (a *Atlas) processOne(v *variant.Atlas, pg pendingGlyph) error {
	if err := a.oracle.LoadFont(pg.fontBytes); err != nil {
		return err
	}

	has, err := a.oracle.HasGlyph(pg.codePoint)
	if err != nil {
		return err
	}
	if !has {
		v.MarkEmpty(pg.codePoint, true)
		return nil
	}

	res, genErr := a.generate(pg)
	if genErr != nil {
		return genErr
	}
	if res == nil {
		v.MarkEmpty(pg.codePoint, false)
		return nil
	}

	pixels, w, h := toRGBA(res.Pixels, res.Channels, res.Metrics.Width, res.Metrics.Height)
	metrics := variant.Metrics{
		Width: res.Metrics.Width, Height: res.Metrics.Height, Advance: res.Metrics.Advance,
		PlaneLeft: res.Metrics.PlaneLeft, PlaneBottom: res.Metrics.PlaneBottom,
		PlaneRight: res.Metrics.PlaneRight, PlaneTop: res.Metrics.PlaneTop,
	}
	return v.FillGlyph(pg.codePoint, pixels, w, h, metrics)
}

func (a *Atlas) generate(pg pendingGlyph) (*oracle.Result, error) {
	if len(pg.axes) > 0 {
		if err := a.oracle.SetVariationAxes(pg.axes); err != nil {
			return nil, err
		}
		return a.oracle.GenerateMTSDFVar(pg.codePoint, pg.genSize, a.cfg.PixelRange)
	}
	if err := a.oracle.ClearVariationAxes(); err != nil {
		return nil, err
	}
	return a.oracle.GenerateMTSDF(pg.codePoint, pg.genSize, a.cfg.PixelRange)
}

// PrefabLatin is a synchronous fast path: warm every Latin code point
// not already cached, without touching the FIFO or invoking the
// callback.
func (a *Atlas) PrefabLatin(variantID string, fontSize int, fontBytes []byte, axes map[string]float64) (err error) {
	defer recoverGlyphOverflow(&err)

	if a.oracle == nil {
		return ErrNoOracle
	}

	genSize := a.cfg.genSizeFor(fontSize)
	v, verr := a.variantAtlas(variantID, genSize)
	if verr != nil {
		return verr
	}

	if err := a.oracle.LoadFont(fontBytes); err != nil {
		return err
	}
	if len(axes) > 0 {
		if err := a.oracle.SetVariationAxes(axes); err != nil {
			return err
		}
	} else {
		if err := a.oracle.ClearVariationAxes(); err != nil {
			return err
		}
	}

	for _, cp := range variant.LatinCodePoints() {
		if _, pending, known := v.GetGlyph(cp); known && !pending {
			continue
		}

		has, herr := a.oracle.HasGlyph(cp)
		if herr != nil {
			return herr
		}
		if !has {
			v.ReserveGlyph(cp)
			v.MarkEmpty(cp, true)
			continue
		}

		pg := pendingGlyph{codePoint: cp, genSize: genSize, axes: axes, variantID: variantID}
		res, gerr := a.generate(pg)
		if gerr != nil {
			return gerr
		}
		if res == nil {
			v.ReserveGlyph(cp)
			v.MarkEmpty(cp, false)
			continue
		}

		pixels, w, h := toRGBA(res.Pixels, res.Channels, res.Metrics.Width, res.Metrics.Height)
		metrics := variant.Metrics{
			Width: res.Metrics.Width, Height: res.Metrics.Height, Advance: res.Metrics.Advance,
			PlaneLeft: res.Metrics.PlaneLeft, PlaneBottom: res.Metrics.PlaneBottom,
			PlaneRight: res.Metrics.PlaneRight, PlaneTop: res.Metrics.PlaneTop,
		}
		if err := v.AddGlyph(cp, pixels, w, h, metrics); err != nil {
			return err
		}
	}

	return v.Flush()
}
