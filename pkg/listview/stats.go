package listview

import (
	"context"

	"github.com/Sumatoshi-tech/listview/pkg/rowcache"
)

// Stats counts row operations. Attached items got a row, detached items gave
// one back and relocated items kept theirs at a new index or offset.
type Stats struct {
	Attached  int64
	Detached  int64
	Relocated int64
}

// Sub returns s - o.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		Attached:  s.Attached - o.Attached,
		Detached:  s.Detached - o.Detached,
		Relocated: s.Relocated - o.Relocated,
	}
}

// Stats returns the cumulative row operation counters.
func (lv *ListView[T]) Stats() Stats { return lv.stats }

// RowStats returns the row cache counters.
func (lv *ListView[T]) RowStats() rowcache.Stats { return lv.cache.Stats() }

// LiveRows returns the number of rows created and not yet disposed.
func (lv *ListView[T]) LiveRows() int64 { return lv.cache.Live() }

func (lv *ListView[T]) finish(pass Stats) {
	lv.stats.Attached += pass.Attached
	lv.stats.Detached += pass.Detached
	lv.stats.Relocated += pass.Relocated

	if lv.metrics != nil {
		lv.metrics.RecordReconcile(context.Background(),
			int(pass.Attached), int(pass.Detached), int(pass.Relocated))
	}
}
