// Package report assembles visit budget results into the document written by
// the visitbudget command.
package report

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/visitbudget/pkg/budget"
	"github.com/chrissnell/visitbudget/pkg/visibility"
)

// Report is one visit budget run.
type Report struct {
	RunID          string           `json:"run_id"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Site           visibility.Site  `json:"site"`
	Window         budget.Window    `json:"window"`
	Filters        []string         `json:"filters"`
	Cadence        budget.Cadence   `json:"cadence_hours"`
	UniformCadence float64          `json:"uniform_cadence_hours"`
	Pointings      []PointingReport `json:"pointings"`
}

// PointingReport is the budget of one pointing.
type PointingReport struct {
	budget.PointingSummary
	VisitCounts  []int            `json:"visit_counts"`
	VisibleHours []float64        `json:"visible_hours"`
	FilterVisits map[string][]int `json:"filter_visits,omitempty"`
	Nights       []NightReport    `json:"nights,omitempty"`
}

// NightReport adds darkness and moonlight to a night's budget.
type NightReport struct {
	Date             string  `json:"date"`
	VisibleHours     float64 `json:"visible_hours"`
	Visits           int     `json:"visits"`
	DarkHours        float64 `json:"dark_hours"`
	MoonIllumination float64 `json:"moon_illumination"`
}

// NightSource provides per-night detail for a pointing.
type NightSource interface {
	Nights(p budget.Pointing, w budget.Window) ([]visibility.Night, error)
}

// Builder turns calculator output into a Report.
type Builder struct {
	Site visibility.Site
	// Detail, when set, adds dark time and moon illumination for each night.
	Detail NightSource
	Now    func() time.Time
}

// Build assembles the report for pointings, which must be the list res was
// computed from.
func (b *Builder) Build(calc *budget.Calculator, pointings []budget.Pointing, res *budget.Result) (*Report, error) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	r := &Report{
		RunID:          uuid.New().String(),
		GeneratedAt:    now().UTC(),
		Site:           b.Site,
		Window:         calc.Window(),
		Filters:        calc.Filters(),
		Cadence:        calc.Cadence(),
		UniformCadence: calc.UniformCadence(),
		Pointings:      make([]PointingReport, 0, len(res.VisitCounts)),
	}

	summaries := budget.Summarize(res, pointings)
	for i, s := range summaries {
		pr := PointingReport{
			PointingSummary: s,
			VisitCounts:     res.VisitCounts[i],
			VisibleHours:    res.VisibleHours[i],
			FilterVisits:    make(map[string][]int, len(res.FilterVisitCounts)),
		}
		for f, counts := range res.FilterVisitCounts {
			pr.FilterVisits[f] = counts[i]
		}

		if b.Detail != nil {
			nights, err := b.Detail.Nights(s.Pointing, r.Window)
			if err != nil {
				return nil, err
			}
			pr.Nights = make([]NightReport, len(nights))
			for n, night := range nights {
				pr.Nights[n] = NightReport{
					Date:             night.Date.Format("2006-01-02"),
					VisibleHours:     night.VisibleHours,
					DarkHours:        night.DarkHours,
					MoonIllumination: night.MoonIllumination,
				}
				if n < len(pr.VisitCounts) {
					pr.Nights[n].Visits = pr.VisitCounts[n]
				}
			}
		}

		r.Pointings = append(r.Pointings, pr)
	}

	return r, nil
}

// CSVHeader implements responseformat.Tabular.
func (r *Report) CSVHeader() []string {
	header := []string{"ra", "dec", "night", "date", "visible_hours", "visits"}
	for _, f := range r.Cadence.SortedFilters() {
		header = append(header, "visits_"+f)
	}
	return header
}

// CSVRows implements responseformat.Tabular with one row per pointing-night.
func (r *Report) CSVRows() [][]string {
	filters := r.Cadence.SortedFilters()

	var rows [][]string
	for _, p := range r.Pointings {
		for n, visits := range p.VisitCounts {
			row := []string{
				formatFloat(p.Pointing.RA),
				formatFloat(p.Pointing.Dec),
				strconv.Itoa(n),
				r.Window.Night(n).Format("2006-01-02"),
				formatFloat(p.VisibleHours[n]),
				strconv.Itoa(visits),
			}
			for _, f := range filters {
				var v int
				if counts, ok := p.FilterVisits[f]; ok && n < len(counts) {
					v = counts[n]
				}
				row = append(row, strconv.Itoa(v))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
