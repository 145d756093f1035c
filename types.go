package fontatlas

import (
	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/variant"
)

// Request is what a client passes to GetGlyph.
type Request struct {
	CodePoint  rune
	VariantID  string
	RenderSize int
	FontBytes  []byte
	// Axes, if non-empty, selects the variation-axes generator variant.
	Axes map[string]float64
}

// Info is the client-facing view of a Glyph Location: normalized UVs,
// the generation size actually used, and whether pixels are already
// present.
type Info struct {
	Texture    page.Handle
	PageWidth  int
	PageHeight int
	U0, V0     float64
	U1, V1     float64
	GenSize    int
	Cached     bool
	Empty      bool
	Missing    bool
	Metrics    variant.Metrics
}

func infoFromLocation(loc *variant.Location, genSize int, cached bool) Info {
	info := Info{
		GenSize: genSize,
		Cached:  cached,
		Empty:   loc.Empty,
		Missing: loc.Missing,
		Metrics: loc.Metrics,
	}
	if loc.Page != nil {
		info.Texture = loc.Page.Handle()
		info.PageWidth = loc.Page.Width
		info.PageHeight = loc.Page.Height
		if loc.Page.Width > 0 && loc.Page.Height > 0 {
			info.U0 = float64(loc.X) / float64(loc.Page.Width)
			info.V0 = float64(loc.Y) / float64(loc.Page.Height)
			info.U1 = float64(loc.X+loc.Width) / float64(loc.Page.Width)
			info.V1 = float64(loc.Y+loc.Height) / float64(loc.Page.Height)
		}
	}
	return info
}

// pendingGlyph is one entry in the deferred batch scheduler's FIFO.
type pendingGlyph struct {
	codePoint rune
	genSize   int
	fontBytes []byte
	axes      map[string]float64
	variantID string
}
