package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/imglayout"
	"github.com/gogpu/imglayout/resource"
)

// newLogger returns the CLI logger. It is also installed as the slog
// handler of the library, so planner and descriptor records share its
// format.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
}

// logBatch reports a finished PlanAll batch: the layouts planned, the
// buffer memory they need and how the planner cache and workers did.
func logBatch(l *log.Logger, gen imglayout.Gen, results []imglayout.Result, elapsed time.Duration, s imglayout.PlannerStats) {
	var failed int
	var size uint64
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		size += r.Layout.Size() + r.Layout.AuxSize()
	}

	l.Info("planned", "gen", gen, "layouts", len(results)-failed, "failed", failed,
		"bytes", num(size), "elapsed", elapsed.Round(time.Microsecond))
	l.Debug("planner", "workers", s.Workers, "cached", s.Cached, "capacity", s.Capacity,
		"hits", s.Hits, "misses", s.Misses, "evicted", s.Evicted)
}

// logTexture reports the buffer objects backing tex.
func logTexture(l *log.Logger, tex *resource.Texture, mgr *resource.MemoryManager) {
	for _, bo := range mgr.BOs() {
		l.Debug("buffer object", "name", bo.Name(), "bytes", num(bo.Size()),
			"tiling", bo.Tiling(), "stride", bo.Stride())
	}
	st := mgr.Stats()
	l.Info("texture", "label", tex.Label, "format", tex.Format, "bytes", num(tex.Size()),
		"stencil", tex.Stencil != nil, "bos", st.BOCount)
}
