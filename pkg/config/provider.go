package config

import (
	"fmt"
	"time"

	"github.com/chrissnell/visitbudget/pkg/budget"
	"github.com/chrissnell/visitbudget/pkg/coords"
	"github.com/chrissnell/visitbudget/pkg/opsim"
	"github.com/chrissnell/visitbudget/pkg/visibility"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*Config, error)
}

// DateLayout is the calendar date format used for the observing window.
const DateLayout = "2006-01-02"

// Config is the complete survey configuration for a visit budget run.
type Config struct {
	Site       *SiteData          `yaml:"site,omitempty"`
	Window     WindowData         `yaml:"window"`
	Filters    []string           `yaml:"filters" validate:"required,min=1,dive,required"`
	Cadence    map[string]float64 `yaml:"cadence" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	Pointings  []PointingData     `yaml:"pointings,omitempty" validate:"dive"`
	Visibility VisibilityData     `yaml:"visibility"`
	OpSim      *OpSimData         `yaml:"opsim,omitempty"`
	Output     OutputData         `yaml:"output"`
	Verbose    bool               `yaml:"verbose,omitempty"`
}

// SiteData holds the observatory location. Longitude is east-positive.
type SiteData struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	Elevation float64 `yaml:"elevation"`
}

// WindowData bounds the observing period, both dates inclusive.
type WindowData struct {
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
}

// PointingData is a pointing as written in the config file, in decimal degrees
// or sexagesimal notation.
type PointingData struct {
	Name string `yaml:"name,omitempty"`
	RA   string `yaml:"ra" validate:"required"`
	Dec  string `yaml:"dec" validate:"required"`
}

// VisibilityData tunes the nightly visibility scan.
type VisibilityData struct {
	SampleInterval time.Duration `yaml:"sample_interval" default:"10m" validate:"gt=0,lte=1h"`
	SunAltitude    *float64      `yaml:"sun_altitude" default:"-18" validate:"required,gte=-90,lte=0"`
	Airmass        float64       `yaml:"airmass" default:"2" validate:"gte=1"`
}

// OpSimData points at a survey simulation database to take pointings from.
type OpSimData struct {
	Path     string      `yaml:"path" validate:"required"`
	Table    string      `yaml:"table,omitempty"`
	Columns  ColumnsData `yaml:"columns,omitempty"`
	MinNight int         `yaml:"min_night,omitempty" validate:"gte=0"`
	MaxNight int         `yaml:"max_night,omitempty" validate:"gte=0"`
}

// ColumnsData overrides the visit table column names.
type ColumnsData struct {
	RA           string `yaml:"ra,omitempty"`
	Dec          string `yaml:"dec,omitempty"`
	ExposureTime string `yaml:"exposure_time,omitempty"`
	Filter       string `yaml:"filter,omitempty"`
	Night        string `yaml:"night,omitempty"`
}

// OutputData selects the report encoding and destination. An empty Path or
// "-" writes to stdout.
type OutputData struct {
	Format string `yaml:"format" default:"json" validate:"oneof=json msgpack csv"`
	Path   string `yaml:"path"`
	Detail bool   `yaml:"detail,omitempty"`
}

// ObservingWindow parses the configured dates.
func (c *Config) ObservingWindow() (budget.Window, error) {
	start, err := time.Parse(DateLayout, c.Window.Start)
	if err != nil {
		return budget.Window{}, fmt.Errorf("invalid window start: %w", err)
	}
	end, err := time.Parse(DateLayout, c.Window.End)
	if err != nil {
		return budget.Window{}, fmt.Errorf("invalid window end: %w", err)
	}
	return budget.Window{Start: start, End: end}, nil
}

// ParsePointings converts the configured pointings to degrees.
func (c *Config) ParsePointings() ([]budget.Pointing, error) {
	pointings := make([]budget.Pointing, 0, len(c.Pointings))
	for i, p := range c.Pointings {
		parsed, err := coords.ParsePointing(p.RA, p.Dec)
		if err != nil {
			return nil, fmt.Errorf("pointing %d (%s): %w", i, p.Name, err)
		}
		pointings = append(pointings, parsed)
	}
	return pointings, nil
}

// ObservingSite returns the configured site, or the LSST site when none is set.
func (c *Config) ObservingSite() visibility.Site {
	if c.Site == nil {
		return visibility.LSST
	}
	return visibility.Site{
		Name:       c.Site.Name,
		Latitude:   c.Site.Latitude,
		Longitude:  c.Site.Longitude,
		ElevationM: c.Site.Elevation,
	}
}

// VisibilityOptions converts the scan settings.
func (c *Config) VisibilityOptions() visibility.Options {
	opts := visibility.DefaultOptions()
	if c.Visibility.SampleInterval > 0 {
		opts.SampleInterval = c.Visibility.SampleInterval
	}
	if c.Visibility.SunAltitude != nil {
		opts.SunAltitude = *c.Visibility.SunAltitude
	}
	if c.Visibility.Airmass >= 1 {
		opts.MinAltitude = visibility.AltitudeForAirmass(c.Visibility.Airmass)
	}
	return opts
}

// OpSimColumns converts the column overrides; empty names keep the defaults.
func (o *OpSimData) OpSimColumns() opsim.Columns {
	return opsim.Columns{
		RA:           o.Columns.RA,
		Dec:          o.Columns.Dec,
		ExposureTime: o.Columns.ExposureTime,
		Filter:       o.Columns.Filter,
		Night:        o.Columns.Night,
	}
}
