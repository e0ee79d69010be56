package extract

import "math"

// ProgressFunc receives overall completion in [0,100].
type ProgressFunc func(percent float64)

// reporter delivers progress to a ProgressFunc. Values are clamped to
// [0,100]; anything at or below the last delivered value is dropped, so the
// caller sees a strictly increasing sequence.
type reporter struct {
	fn        ProgressFunc
	last      float64
	delivered bool
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn}
}

func (r *reporter) report(p float64) {
	if r.fn == nil || math.IsNaN(p) {
		return
	}
	p = math.Max(0, math.Min(100, p))
	if r.delivered && p <= r.last {
		return
	}
	r.last, r.delivered = p, true
	r.fn(p)
}

// finish delivers 100 unless it already has been.
func (r *reporter) finish() {
	r.report(100)
}

// scaled maps a pass-local 0..100 value into [offset, offset+100*factor].
func scaled(fn ProgressFunc, offset, factor float64) ProgressFunc {
	return func(p float64) { fn(offset + p*factor) }
}

// pagePercent is round(page/total*100).
func pagePercent(page, total int) float64 {
	if total <= 0 {
		return 100
	}
	return math.Round(float64(page) / float64(total) * 100)
}
