package budget

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PointingSummary condenses the nightly budget of one pointing.
type PointingSummary struct {
	Pointing          Pointing `json:"pointing"`
	Nights            int      `json:"nights"`
	TotalVisits       int      `json:"total_visits"`
	NightsWithVisits  int      `json:"nights_with_visits"`
	TotalVisibleHours float64  `json:"total_visible_hours"`
	MeanVisibleHours  float64  `json:"mean_visible_hours"`
	MaxVisibleHours   float64  `json:"max_visible_hours"`
}

// Summarize builds one PointingSummary per pointing of r. pointings must be the
// list the result was computed from.
func Summarize(r *Result, pointings []Pointing) []PointingSummary {
	summaries := make([]PointingSummary, 0, len(r.VisitCounts))

	for i, visits := range r.VisitCounts {
		s := PointingSummary{Nights: len(visits)}
		if i < len(pointings) {
			s.Pointing = pointings[i]
		}

		for _, v := range visits {
			s.TotalVisits += v
			if v > 0 {
				s.NightsWithVisits++
			}
		}

		hours := r.VisibleHours[i]
		if len(hours) > 0 {
			s.TotalVisibleHours = floats.Sum(hours)
			s.MeanVisibleHours = stat.Mean(hours, nil)
			s.MaxVisibleHours = floats.Max(hours)
		}

		summaries = append(summaries, s)
	}

	return summaries
}
