package budget

import "time"

// Pointing is a fixed sky position in J2000 equatorial coordinates, in degrees.
type Pointing struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// Window bounds the observing period. Start and End are calendar dates and both
// nights are included.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Nights returns the number of nights covered by the window, or 0 if End
// precedes Start.
func (w Window) Nights() int {
	start := truncateDay(w.Start)
	end := truncateDay(w.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Reversed reports whether End falls on an earlier calendar date than Start.
// Times of day are ignored.
func (w Window) Reversed() bool {
	return truncateDay(w.End).Before(truncateDay(w.Start))
}

// Night returns the calendar date of the n-th night of the window.
func (w Window) Night(n int) time.Time {
	return truncateDay(w.Start).AddDate(0, 0, n)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Cadence maps a filter name to the minimum interval, in hours, between
// successive visits in that filter.
type Cadence map[string]float64

// VisibilityResult is what a visibility calculator reports for one pointing.
// NightlyHours holds one entry per night of the window in chronological order.
type VisibilityResult struct {
	TotalHours   float64   `json:"total_hours"`
	NightlyHours []float64 `json:"nightly_hours"`
}

// Visibility computes how long a pointing is observable on each night of a window.
type Visibility interface {
	Compute(p Pointing, w Window) (VisibilityResult, error)
}

// VisibilityFunc adapts an ordinary function to the Visibility interface.
type VisibilityFunc func(p Pointing, w Window) (VisibilityResult, error)

// Compute calls f(p, w).
func (f VisibilityFunc) Compute(p Pointing, w Window) (VisibilityResult, error) {
	return f(p, w)
}

// Result holds visit budgets for a list of pointings. VisitCounts and
// VisibleHours are indexed like the input pointings.
type Result struct {
	VisitCounts       [][]int            `json:"visit_counts"`
	VisibleHours      [][]float64        `json:"visible_hours"`
	FilterVisitCounts map[string][][]int `json:"filter_visit_counts,omitempty"`
}

// Append adds the pointings of other after those already in r. A nil other is
// ignored.
func (r *Result) Append(other *Result) {
	if other == nil {
		return
	}
	r.VisitCounts = append(r.VisitCounts, other.VisitCounts...)
	r.VisibleHours = append(r.VisibleHours, other.VisibleHours...)
	if len(other.FilterVisitCounts) > 0 && r.FilterVisitCounts == nil {
		r.FilterVisitCounts = make(map[string][][]int, len(other.FilterVisitCounts))
	}
	for f, counts := range other.FilterVisitCounts {
		r.FilterVisitCounts[f] = append(r.FilterVisitCounts[f], counts...)
	}
}
