package fontatlas

import (
	"log/slog"

	"github.com/gogpu/fontatlas/internal/logging"
)

// SetLogger configures the logger used by fontatlas and its sub-packages
// (page, variant, workerpool). By default the module produces no
// log output; call SetLogger to enable it.
//
// SetLogger is safe for concurrent use. Pass nil to disable logging
// (restore the default silent behavior).
//
// Log levels used by this module:
//   - [slog.LevelDebug]: bookkeeping (glyph placement on a page, drain
//     scheduling, status snapshots, worker pool start-up and disposal)
//   - [slog.LevelWarn]: MaxMixedPagesExceeded (a variant atlas allocating
//     a mixed page past its cap)
//
// Example:
//
//	fontatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) { logging.Set(l) }

// Logger returns the current logger.
func Logger() *slog.Logger { return logging.Get() }
