package budget

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testWindow = Window{
	Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
}

// fixedVisibility returns the same nightly hours for every pointing and counts calls.
type fixedVisibility struct {
	hours []float64
	calls []Pointing
	err   error
}

func (f *fixedVisibility) Compute(p Pointing, w Window) (VisibilityResult, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return VisibilityResult{}, f.err
	}
	total := 0.0
	for _, h := range f.hours {
		total += h
	}
	return VisibilityResult{TotalHours: total, NightlyHours: f.hours}, nil
}

func TestRunExample(t *testing.T) {
	vis := &fixedVisibility{hours: []float64{5.0, 0.0, 7.5}}
	calc, err := NewCalculator(Config{
		Pointings:  []Pointing{{RA: 180.0, Dec: -30.0}},
		Filters:    []string{"r"},
		Cadence:    Cadence{"r": 2.0},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}

	result, err := calc.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if diff := cmp.Diff([][]int{{2, 0, 3}}, result.VisitCounts); diff != "" {
		t.Errorf("VisitCounts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{5.0, 0.0, 7.5}}, result.VisibleHours); diff != "" {
		t.Errorf("VisibleHours mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{2, 0, 3}}, result.FilterVisitCounts["r"]); diff != "" {
		t.Errorf("FilterVisitCounts[r] mismatch (-want +got):\n%s", diff)
	}
	if len(vis.calls) != 1 || vis.calls[0] != (Pointing{RA: 180.0, Dec: -30.0}) {
		t.Errorf("visibility calls = %v, expected one call for (180, -30)", vis.calls)
	}
}

func TestRunPreservesOrderAndLengths(t *testing.T) {
	nightly := map[Pointing][]float64{
		{RA: 10, Dec: -10}: {1, 2, 3, 4},
		{RA: 20, Dec: -20}: {9.5},
		{RA: 30, Dec: -30}: {},
	}
	pointings := []Pointing{{RA: 30, Dec: -30}, {RA: 10, Dec: -10}, {RA: 20, Dec: -20}}

	var order []Pointing
	vis := VisibilityFunc(func(p Pointing, w Window) (VisibilityResult, error) {
		order = append(order, p)
		return VisibilityResult{NightlyHours: nightly[p]}, nil
	})

	calc, err := NewCalculator(Config{
		Pointings:  pointings,
		Filters:    []string{"g"},
		Cadence:    Cadence{"g": 1.5},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}

	result, err := calc.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if diff := cmp.Diff(pointings, order); diff != "" {
		t.Errorf("visibility call order mismatch (-want +got):\n%s", diff)
	}
	if len(result.VisitCounts) != len(pointings) || len(result.VisibleHours) != len(pointings) {
		t.Fatalf("result lengths = %d/%d, expected %d",
			len(result.VisitCounts), len(result.VisibleHours), len(pointings))
	}
	for i, p := range pointings {
		if len(result.VisitCounts[i]) != len(nightly[p]) {
			t.Errorf("pointing %d: %d nightly counts, expected %d", i, len(result.VisitCounts[i]), len(nightly[p]))
		}
		for n, h := range nightly[p] {
			want := int(math.Floor(h / 1.5))
			if result.VisitCounts[i][n] != want {
				t.Errorf("pointing %d night %d: visits = %d, expected %d", i, n, result.VisitCounts[i][n], want)
			}
			if result.VisitCounts[i][n] < 0 {
				t.Errorf("pointing %d night %d: negative visit count", i, n)
			}
		}
	}
}

func TestRunEmptyPointings(t *testing.T) {
	vis := &fixedVisibility{hours: []float64{1}}
	calc, err := NewCalculator(Config{
		Filters:    []string{"i"},
		Cadence:    Cadence{"i": 3},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}

	result, err := calc.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.VisitCounts == nil || len(result.VisitCounts) != 0 {
		t.Errorf("VisitCounts = %v, expected empty non-nil slice", result.VisitCounts)
	}
	if result.VisibleHours == nil || len(result.VisibleHours) != 0 {
		t.Errorf("VisibleHours = %v, expected empty non-nil slice", result.VisibleHours)
	}
	if len(vis.calls) != 0 {
		t.Errorf("visibility called %d times, expected 0", len(vis.calls))
	}
}

func TestNewCalculatorConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		filters []string
		cadence Cadence
		window  Window
		noVis   bool
		field   string
	}{
		{
			name:    "more filters than cadences",
			filters: []string{"g", "r"},
			cadence: Cadence{"g": 2},
			field:   "cadence",
		},
		{
			name:    "more cadences than filters",
			filters: []string{"g"},
			cadence: Cadence{"g": 2, "r": 4},
			field:   "cadence",
		},
		{
			name:    "cadence for a different filter",
			filters: []string{"g"},
			cadence: Cadence{"z": 2},
			field:   "cadence",
		},
		{
			name:    "no filters at all",
			filters: nil,
			cadence: Cadence{},
			field:   "cadence",
		},
		{
			name:    "zero cadence",
			filters: []string{"r"},
			cadence: Cadence{"r": 0},
			field:   "cadence.r",
		},
		{
			name:    "negative cadence",
			filters: []string{"r"},
			cadence: Cadence{"r": -1.5},
			field:   "cadence.r",
		},
		{
			name:    "NaN cadence",
			filters: []string{"r"},
			cadence: Cadence{"r": math.NaN()},
			field:   "cadence.r",
		},
		{
			name:    "missing visibility",
			filters: []string{"r"},
			cadence: Cadence{"r": 1},
			noVis:   true,
			field:   "visibility",
		},
		{
			name:    "window end before start",
			filters: []string{"r"},
			cadence: Cadence{"r": 1},
			window:  Window{Start: testWindow.End, End: testWindow.Start},
			field:   "window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vis := &fixedVisibility{hours: []float64{4}}
			cfg := Config{
				Pointings:  []Pointing{{RA: 1, Dec: 2}},
				Filters:    tt.filters,
				Cadence:    tt.cadence,
				Window:     testWindow,
				Visibility: vis,
			}
			if tt.noVis {
				cfg.Visibility = nil
			}
			if !tt.window.Start.IsZero() {
				cfg.Window = tt.window
			}

			calc, err := NewCalculator(cfg)
			if err == nil {
				t.Fatalf("NewCalculator succeeded, expected configuration error")
			}
			if calc != nil {
				t.Errorf("NewCalculator returned a calculator alongside an error")
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("error %v does not match ErrConfiguration", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not a *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, expected %q", cfgErr.Field, tt.field)
			}
			if len(vis.calls) != 0 {
				t.Errorf("visibility called %d times before validation failed", len(vis.calls))
			}
		})
	}
}

func TestDuplicateFiltersCountOnce(t *testing.T) {
	_, err := NewCalculator(Config{
		Filters:    []string{"r", "r", "g"},
		Cadence:    Cadence{"r": 2, "g": 4},
		Window:     testWindow,
		Visibility: &fixedVisibility{},
	})
	if err != nil {
		t.Errorf("NewCalculator returned error for duplicated filter: %v", err)
	}
}

func TestRunPropagatesVisibilityError(t *testing.T) {
	sentinel := errors.New("coordinates out of range")
	vis := &fixedVisibility{err: sentinel}

	calc, err := NewCalculator(Config{
		Pointings:  []Pointing{{RA: 1, Dec: 1}, {RA: 2, Dec: 2}},
		Filters:    []string{"r"},
		Cadence:    Cadence{"r": 1},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}

	result, err := calc.Run()
	if err != sentinel {
		t.Errorf("Run error = %v, expected the visibility error unchanged", err)
	}
	if result != nil {
		t.Errorf("Run returned a partial result: %+v", result)
	}
	if len(vis.calls) != 1 {
		t.Errorf("visibility called %d times, expected the run to stop after the first failure", len(vis.calls))
	}
}

func TestUniformCadenceIsShortest(t *testing.T) {
	vis := &fixedVisibility{hours: []float64{8, 3}}
	calc, err := NewCalculator(Config{
		Pointings:  []Pointing{{RA: 45, Dec: -45}},
		Filters:    []string{"g", "r", "i"},
		Cadence:    Cadence{"g": 4, "r": 2, "i": 3},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}
	if calc.UniformCadence() != 2 {
		t.Errorf("UniformCadence = %v, expected 2", calc.UniformCadence())
	}

	result, err := calc.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := map[string][][]int{
		"g": {{2, 0}},
		"r": {{4, 1}},
		"i": {{2, 1}},
	}
	if diff := cmp.Diff(want, result.FilterVisitCounts); diff != "" {
		t.Errorf("FilterVisitCounts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{4, 1}}, result.VisitCounts); diff != "" {
		t.Errorf("VisitCounts mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSliceWrapsSinglePointing(t *testing.T) {
	vis := &fixedVisibility{hours: []float64{6.2}}
	calc, err := NewCalculator(Config{
		Pointings:  []Pointing{{RA: 1, Dec: 1}, {RA: 2, Dec: 2}},
		Filters:    []string{"y"},
		Cadence:    Cadence{"y": 3},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}

	result, err := calc.RunSlice(Pointing{RA: 99, Dec: -9})
	if err != nil {
		t.Fatalf("RunSlice returned error: %v", err)
	}
	if diff := cmp.Diff([][]int{{2}}, result.VisitCounts); diff != "" {
		t.Errorf("VisitCounts mismatch (-want +got):\n%s", diff)
	}
	if len(vis.calls) != 1 || vis.calls[0] != (Pointing{RA: 99, Dec: -9}) {
		t.Errorf("visibility calls = %v, expected only the slice pointing", vis.calls)
	}
}

func TestVisitsPerNight(t *testing.T) {
	tests := []struct {
		name     string
		hours    []float64
		cadence  float64
		expected []int
	}{
		{"empty", nil, 1, []int{}},
		{"exact multiples", []float64{2, 4, 6}, 2, []int{1, 2, 3}},
		{"truncates fractions", []float64{1.99, 0.5, 9.9}, 1, []int{1, 0, 9}},
		{"cadence longer than night", []float64{3, 7}, 12, []int{0, 0}},
		{"sub-hour cadence", []float64{1.5}, 0.25, []int{6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisitsPerNight(tt.hours, tt.cadence)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("VisitsPerNight mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColumns(t *testing.T) {
	calc, err := NewCalculator(Config{
		Filters:    []string{"r"},
		Cadence:    Cadence{"r": 1},
		Window:     testWindow,
		Visibility: &fixedVisibility{},
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}
	if diff := cmp.Diff(DefaultColumns, calc.Columns()); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestWindowNights(t *testing.T) {
	if n := testWindow.Nights(); n != 3 {
		t.Errorf("Nights = %d, expected 3", n)
	}
	single := Window{Start: testWindow.Start, End: testWindow.Start}
	if n := single.Nights(); n != 1 {
		t.Errorf("Nights for a one-day window = %d, expected 1", n)
	}
	backwards := Window{Start: testWindow.End, End: testWindow.Start}
	if n := backwards.Nights(); n != 0 {
		t.Errorf("Nights for a reversed window = %d, expected 0", n)
	}
	if got := testWindow.Night(2); !got.Equal(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Night(2) = %v, expected 2024-03-03", got)
	}
}

func TestResultAppendMatchesBatchRun(t *testing.T) {
	pointings := []Pointing{{RA: 1, Dec: 1}, {RA: 2, Dec: 2}, {RA: 3, Dec: 3}}
	vis := VisibilityFunc(func(p Pointing, w Window) (VisibilityResult, error) {
		return VisibilityResult{NightlyHours: []float64{p.RA * 2, p.Dec}}, nil
	})

	calc, err := NewCalculator(Config{
		Pointings:  pointings,
		Filters:    []string{"g", "r"},
		Cadence:    Cadence{"g": 1, "r": 2},
		Window:     testWindow,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator returned error: %v", err)
	}

	batch, err := calc.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	merged := &Result{}
	for _, p := range pointings {
		r, err := calc.RunSlice(p)
		if err != nil {
			t.Fatalf("RunSlice returned error: %v", err)
		}
		merged.Append(r)
	}

	if diff := cmp.Diff(batch, merged); diff != "" {
		t.Errorf("per-slice results differ from batch run (-batch +merged):\n%s", diff)
	}
}

func TestWindowComparesCalendarDates(t *testing.T) {
	sameDay := Window{
		Start: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if sameDay.Reversed() {
		t.Errorf("Reversed = true for a window starting and ending on 2024-03-01")
	}
	if n := sameDay.Nights(); n != 1 {
		t.Errorf("Nights = %d, expected 1", n)
	}

	vis := &fixedVisibility{hours: []float64{4.5}}
	calc, err := NewCalculator(Config{
		Pointings:  []Pointing{{RA: 180, Dec: -30}},
		Filters:    []string{"r"},
		Cadence:    Cadence{"r": 2},
		Window:     sameDay,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("NewCalculator rejected a same-day window: %v", err)
	}
	res, err := calc.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if diff := cmp.Diff([][]int{{2}}, res.VisitCounts); diff != "" {
		t.Errorf("VisitCounts mismatch (-want +got):\n%s", diff)
	}

	if !(Window{Start: sameDay.Start, End: sameDay.Start.AddDate(0, 0, -1)}).Reversed() {
		t.Errorf("Reversed = false for a window ending the day before it starts")
	}
}

func TestResultAppendIgnoresNil(t *testing.T) {
	r := &Result{VisitCounts: [][]int{{1}}, VisibleHours: [][]float64{{2.5}}}
	r.Append(nil)
	if len(r.VisitCounts) != 1 || len(r.VisibleHours) != 1 {
		t.Errorf("Append(nil) changed the result: %+v", r)
	}
}
