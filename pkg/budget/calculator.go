// Package budget converts nightly target visibility into visit budgets: the
// maximum number of visits a cadence constraint allows on each night for each
// pointing of a survey.
package budget

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// DefaultColumns are the per-visit record columns the metric registers with its
// host: right ascension, declination, exposure time and filter.
var DefaultColumns = []string{"fieldRA", "fieldDec", "visitExposureTime", "filter"}

// Config carries everything a Calculator needs. Pointings, filters, cadence and
// the window are captured at construction and never modified.
type Config struct {
	Pointings  []Pointing
	Filters    []string
	Cadence    Cadence
	Window     Window
	Visibility Visibility

	// Columns overrides DefaultColumns.
	Columns []string

	Logger  *zap.SugaredLogger
	Verbose bool
}

// Calculator computes visit budgets for a fixed set of pointings.
type Calculator struct {
	pointings  []Pointing
	filters    []string
	cadence    Cadence
	uniform    float64
	window     Window
	visibility Visibility
	columns    []string
	logger     *zap.SugaredLogger
	verbose    bool
}

// NewCalculator validates cfg and returns a Calculator. Validation failures are
// returned as *ConfigurationError and no visibility computation is attempted.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	columns := cfg.Columns
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	cadence := make(Cadence, len(cfg.Cadence))
	uniform := math.Inf(1)
	for f, h := range cfg.Cadence {
		cadence[f] = h
		uniform = math.Min(uniform, h)
	}

	return &Calculator{
		pointings:  append([]Pointing(nil), cfg.Pointings...),
		filters:    append([]string(nil), cfg.Filters...),
		cadence:    cadence,
		uniform:    uniform,
		window:     cfg.Window,
		visibility: cfg.Visibility,
		columns:    append([]string(nil), columns...),
		logger:     logger,
		verbose:    cfg.Verbose,
	}, nil
}

func validateConfig(cfg Config) error {
	distinct := make(map[string]struct{}, len(cfg.Filters))
	for _, f := range cfg.Filters {
		distinct[f] = struct{}{}
	}

	if len(distinct) != len(cfg.Cadence) {
		return configErrorf("cadence", "%d filters requested but %d cadences given; each filter needs exactly one cadence",
			len(distinct), len(cfg.Cadence))
	}
	if len(cfg.Cadence) == 0 {
		return configErrorf("cadence", "at least one filter cadence is required")
	}

	for f := range distinct {
		if _, ok := cfg.Cadence[f]; !ok {
			return configErrorf("cadence", "no cadence given for filter %q", f)
		}
	}

	for f, h := range cfg.Cadence {
		if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
			return configErrorf("cadence."+f, "cadence must be a positive number of hours, got %v", h)
		}
	}

	if cfg.Visibility == nil {
		return configErrorf("visibility", "a visibility calculator is required")
	}

	if cfg.Window.Reversed() {
		return configErrorf("window", "end date %s is before start date %s",
			cfg.Window.End.Format("2006-01-02"), cfg.Window.Start.Format("2006-01-02"))
	}

	return nil
}

// Run computes budgets for the pointings captured at construction.
func (c *Calculator) Run() (*Result, error) {
	return c.RunPointings(c.pointings)
}

// RunSlice computes the budget for a single sky cell, the way a per-slice host
// framework invokes a metric.
func (c *Calculator) RunSlice(p Pointing) (*Result, error) {
	return c.RunPointings([]Pointing{p})
}

// RunPointings computes budgets for an explicit list of pointings, in order.
// The first visibility error aborts the run and is returned unchanged.
func (c *Calculator) RunPointings(pointings []Pointing) (*Result, error) {
	result := &Result{
		VisitCounts:       make([][]int, 0, len(pointings)),
		VisibleHours:      make([][]float64, 0, len(pointings)),
		FilterVisitCounts: make(map[string][][]int, len(c.cadence)),
	}
	for f := range c.cadence {
		result.FilterVisitCounts[f] = make([][]int, 0, len(pointings))
	}

	if c.verbose {
		c.logger.Infof("Calculating visibility for %d fields", len(pointings))
	}

	for _, p := range pointings {
		if c.verbose {
			c.logger.Infow("computing visibility", "ra", p.RA, "dec", p.Dec)
		}

		vis, err := c.visibility.Compute(p, c.window)
		if err != nil {
			return nil, err
		}

		hours := make([]float64, len(vis.NightlyHours))
		copy(hours, vis.NightlyHours)

		result.VisitCounts = append(result.VisitCounts, VisitsPerNight(hours, c.uniform))
		result.VisibleHours = append(result.VisibleHours, hours)
		for f, h := range c.cadence {
			result.FilterVisitCounts[f] = append(result.FilterVisitCounts[f], VisitsPerNight(hours, h))
		}

		c.logger.Debugw("pointing budget computed",
			"ra", p.RA, "dec", p.Dec, "nights", len(hours), "total_hours", vis.TotalHours)
	}

	return result, nil
}

// VisitsPerNight returns floor(hours/cadence) for each night, truncated toward zero.
func VisitsPerNight(hours []float64, cadence float64) []int {
	visits := make([]int, len(hours))
	for i, h := range hours {
		visits[i] = int(h / cadence)
	}
	return visits
}

// Columns returns the per-visit record columns the metric needs from its host.
func (c *Calculator) Columns() []string {
	return append([]string(nil), c.columns...)
}

// Pointings returns the pointings captured at construction.
func (c *Calculator) Pointings() []Pointing {
	return append([]Pointing(nil), c.pointings...)
}

// Filters returns the distinct filters in the order they were configured.
func (c *Calculator) Filters() []string {
	seen := make(map[string]bool, len(c.filters))
	var out []string
	for _, f := range c.filters {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// UniformCadence is the single interval applied to the primary visit counts:
// the shortest configured cadence, which yields the maximum achievable visits.
func (c *Calculator) UniformCadence() float64 {
	return c.uniform
}

// Cadence returns a copy of the per-filter cadence mapping.
func (c *Calculator) Cadence() Cadence {
	out := make(Cadence, len(c.cadence))
	for f, h := range c.cadence {
		out[f] = h
	}
	return out
}

// Window returns the observing window.
func (c *Calculator) Window() Window {
	return c.window
}

// SortedFilters returns filter names of a cadence mapping in lexical order.
func (cd Cadence) SortedFilters() []string {
	names := make([]string, 0, len(cd))
	for f := range cd {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}
