package statement

import (
	"time"
)

// Window is one bounded sub-interval of a statement time range.
type Window struct {
	From time.Time
	To   time.Time
}

// Span returns the window length.
func (w Window) Span() time.Duration {
	return w.To.Sub(w.From)
}

// SplitRange splits [from, to] into chronological, contiguous, non-overlapping
// windows, each no longer than maxSpan. The upstream rejects any single
// statement request spanning more than its maximum window, so range planning
// is kept separate from sync orchestration. Returns nil when from >= to or
// maxSpan is not positive.
func SplitRange(from, to time.Time, maxSpan time.Duration) []Window {
	if !from.Before(to) || maxSpan <= 0 {
		return nil
	}

	var windows []Window
	for start := from; start.Before(to); {
		end := start.Add(maxSpan)
		if end.After(to) {
			end = to
		}
		windows = append(windows, Window{From: start, To: end})
		start = end
	}
	return windows
}
