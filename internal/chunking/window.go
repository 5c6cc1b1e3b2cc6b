package chunking

import "fmt"

// Window is a zero-based, half-open page interval [Start, End).
type Window struct {
	Start int
	End   int
}

// Len returns the number of pages in the window.
func (w Window) Len() int { return w.End - w.Start }

func (w Window) String() string { return fmt.Sprintf("[%d,%d)", w.Start, w.End) }

// Windows partitions [0, total) into consecutive windows of at most limit pages.
// Only the last window may be shorter than limit.
func Windows(total, limit int) ([]Window, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("page limit must be positive, got %d", limit)
	}
	if total < 0 {
		return nil, fmt.Errorf("page count must not be negative, got %d", total)
	}

	windows := make([]Window, 0, (total+limit-1)/limit)
	for start := 0; start < total; start += limit {
		windows = append(windows, Window{Start: start, End: min(start+limit, total)})
	}
	return windows, nil
}
