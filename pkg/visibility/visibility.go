// Package visibility computes how many hours a fixed sky position is observable
// from a ground site on each night of a date range. A target counts as
// observable while the Sun is below the twilight limit and the target is above
// the minimum altitude.
package visibility

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
	"go.uber.org/zap"

	"github.com/chrissnell/visitbudget/pkg/budget"
)

// Site is an observatory location. Longitude is east-positive, in degrees.
type Site struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
}

// LSST is the Rubin Observatory site on Cerro Pachón.
var LSST = Site{
	Name:       "Cerro Pachon",
	Latitude:   -30.2444,
	Longitude:  -70.7494,
	ElevationM: 2650,
}

// Options controls the night scan.
type Options struct {
	// SampleInterval is the time step of the scan.
	SampleInterval time.Duration
	// SunAltitude is the twilight limit in degrees; -18 is astronomical twilight.
	SunAltitude float64
	// MinAltitude is the lowest usable target altitude in degrees.
	MinAltitude float64
}

// DefaultOptions scans every 10 minutes with astronomical twilight and an
// airmass 2 limit.
func DefaultOptions() Options {
	return Options{
		SampleInterval: 10 * time.Minute,
		SunAltitude:    -18,
		MinAltitude:    AltitudeForAirmass(2),
	}
}

// AltitudeForAirmass converts a plane-parallel airmass limit to the
// corresponding altitude in degrees.
func AltitudeForAirmass(airmass float64) float64 {
	return 90 - math.Acos(1/airmass)*180/math.Pi
}

// Night describes one night of the scan. Date is the calendar date on which
// the night begins.
type Night struct {
	Date             time.Time `json:"date"`
	VisibleHours     float64   `json:"visible_hours"`
	DarkHours        float64   `json:"dark_hours"`
	MoonIllumination float64   `json:"moon_illumination"`
}

// Calculator implements budget.Visibility for a single site.
type Calculator struct {
	site   Site
	opts   Options
	logger *zap.SugaredLogger
}

var _ budget.Visibility = (*Calculator)(nil)

// New returns a Calculator for site. A nil logger discards log output.
func New(site Site, opts Options, logger *zap.SugaredLogger) (*Calculator, error) {
	if site.Latitude < -90 || site.Latitude > 90 {
		return nil, fmt.Errorf("site latitude %v out of range [-90, 90]", site.Latitude)
	}
	if site.Longitude < -180 || site.Longitude > 180 {
		return nil, fmt.Errorf("site longitude %v out of range [-180, 180]", site.Longitude)
	}
	if opts.SampleInterval <= 0 || opts.SampleInterval > time.Hour {
		return nil, fmt.Errorf("sample interval %v must lie in (0, 1h]", opts.SampleInterval)
	}
	if opts.SunAltitude < -90 || opts.SunAltitude > 90 {
		return nil, fmt.Errorf("sun altitude limit %v out of range [-90, 90]", opts.SunAltitude)
	}
	if opts.MinAltitude < -90 || opts.MinAltitude > 90 {
		return nil, fmt.Errorf("minimum target altitude %v out of range [-90, 90]", opts.MinAltitude)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Calculator{site: site, opts: opts, logger: logger}, nil
}

// Site returns the observatory site.
func (c *Calculator) Site() Site {
	return c.site
}

// Compute returns the total and nightly visible hours of p over w.
func (c *Calculator) Compute(p budget.Pointing, w budget.Window) (budget.VisibilityResult, error) {
	nights, err := c.Nights(p, w)
	if err != nil {
		return budget.VisibilityResult{}, err
	}

	result := budget.VisibilityResult{NightlyHours: make([]float64, len(nights))}
	for i, n := range nights {
		result.NightlyHours[i] = n.VisibleHours
		result.TotalHours += n.VisibleHours
	}

	return result, nil
}

// Nights scans each night of w, from local solar noon to the next local solar
// noon, and reports visible and dark time for p.
func (c *Calculator) Nights(p budget.Pointing, w budget.Window) ([]Night, error) {
	if math.IsNaN(p.RA) || p.RA < 0 || p.RA >= 360 {
		return nil, fmt.Errorf("right ascension %v out of range [0, 360)", p.RA)
	}
	if math.IsNaN(p.Dec) || p.Dec < -90 || p.Dec > 90 {
		return nil, fmt.Errorf("declination %v out of range [-90, 90]", p.Dec)
	}
	if w.Reversed() {
		return nil, fmt.Errorf("observing window ends (%s) before it starts (%s)",
			w.End.Format("2006-01-02"), w.Start.Format("2006-01-02"))
	}

	ra := unit.AngleFromDeg(p.RA)
	dec := unit.AngleFromDeg(p.Dec)

	n := w.Nights()
	nights := make([]Night, n)
	for i := 0; i < n; i++ {
		date := w.Night(i)
		nights[i] = c.scanNight(date, ra, dec)
	}

	c.logger.Debugw("visibility computed", "ra", p.RA, "dec", p.Dec, "nights", n, "site", c.site.Name)

	return nights, nil
}

func (c *Calculator) scanNight(date time.Time, ra, dec unit.Angle) Night {
	start := localNoon(date, c.site.Longitude)
	end := start.Add(24 * time.Hour)
	lat := unit.AngleFromDeg(c.site.Latitude)
	lon := unit.AngleFromDeg(c.site.Longitude)

	night := Night{
		Date:             date,
		MoonIllumination: MoonIllumination(start.Add(12 * time.Hour)),
	}

	for seg := start; seg.Before(end); seg = seg.Add(c.opts.SampleInterval) {
		segEnd := seg.Add(c.opts.SampleInterval)
		if segEnd.After(end) {
			segEnd = end
		}
		span := segEnd.Sub(seg)
		mid := seg.Add(span / 2)

		jd := julian.TimeToJD(mid)
		lst := sidereal.Mean(jd).Angle() + lon

		sunRA, sunDec := solar.ApparentEquatorial(jd)
		if altitude(sunRA.Angle(), sunDec, lat, lst) >= c.opts.SunAltitude {
			continue
		}
		night.DarkHours += span.Hours()

		if altitude(ra, dec, lat, lst) >= c.opts.MinAltitude {
			night.VisibleHours += span.Hours()
		}
	}

	return night
}

// localNoon returns the UTC instant of mean local solar noon on date.
func localNoon(date time.Time, longitude float64) time.Time {
	offset := time.Duration(longitude / 15 * float64(time.Hour))
	return date.Add(12*time.Hour - offset)
}

// altitude returns the altitude in degrees of an object at (ra, dec) for an
// observer at latitude lat when the local sidereal time is lst.
func altitude(ra, dec, lat, lst unit.Angle) float64 {
	ha := lst - ra
	sinAlt := lat.Sin()*dec.Sin() + lat.Cos()*dec.Cos()*ha.Cos()
	if sinAlt > 1 {
		sinAlt = 1
	} else if sinAlt < -1 {
		sinAlt = -1
	}
	return math.Asin(sinAlt) * 180 / math.Pi
}
