// Package progress provides rate-limited progress reporting shared by the
// recovery scan, signature carver, and bulk-extraction paths.
package progress

import "time"

// MinRefreshInterval bounds how often Reporter.Report actually invokes the
// callback, so a tight scan loop doesn't spend its time formatting output.
const MinRefreshInterval = 500 * time.Millisecond

// Update describes a point-in-time snapshot of a long-running scan.
type Update struct {
	Processed int64
	Total     int64
	Found     int
}

// Func renders an Update. Implementations must not block; the CLI prints a
// single updating line.
type Func func(Update)

// Reporter gates calls to an underlying Func so it fires at most once per
// MinRefreshInterval, plus always on the final call via Done.
type Reporter struct {
	fn       Func
	last     time.Time
	interval time.Duration
}

// New creates a Reporter invoking fn no more often than MinRefreshInterval.
// A nil fn is valid and turns Report/Done into no-ops.
func New(fn Func) *Reporter {
	return &Reporter{fn: fn, interval: MinRefreshInterval}
}

// Report invokes the underlying Func if enough time has passed since the
// last call. Reporting is best-effort: a call dropped by the rate limit is
// simply never rendered, and the caller's loop is never slowed down or
// made to fail because of it.
func (r *Reporter) Report(u Update) {
	if r == nil || r.fn == nil {
		return
	}
	now := time.Now()
	if !r.last.IsZero() && now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	r.fn(u)
}

// Done unconditionally delivers a final Update, bypassing the rate limit.
func (r *Reporter) Done(u Update) {
	if r == nil || r.fn == nil {
		return
	}
	r.fn(u)
}
