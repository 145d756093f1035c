package fontatlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/fontatlas/variant"
)

// ErrUnknownVariant is a sentinel for a variant key this atlas has never
// seen. No Atlas method returns it: GetGlyph, Tick and PrefabLatin create
// a missing variant on demand.
var ErrUnknownVariant = errors.New("fontatlas: unknown variant")

// ErrNoOracle is returned by operations that need the SDF oracle when
// none was configured.
var ErrNoOracle = errors.New("fontatlas: no SDF oracle configured")

// recoverGlyphOverflow converts the two fatal, programmer-error
// conditions (LatinPageOverflow, FreshPageOverflow) back into a normal
// error. variant.FillGlyph raises these as panics; this recovers them at
// the nearest exported boundary (Tick, PrefabLatin). The panic aborts the
// operation at the failing glyph: in Tick, the drain's later entries are
// not processed and stay pending, and no flush or callback runs for that
// drain.
func recoverGlyphOverflow(target *error) {
	r := recover()
	if r == nil {
		return
	}
	switch e := r.(type) {
	case *variant.LatinPageOverflowError:
		*target = fmt.Errorf("fontatlas: %w", e)
	case *variant.FreshPageOverflowError:
		*target = fmt.Errorf("fontatlas: %w", e)
	default:
		panic(r)
	}
}
