// Package opsim reads per-visit records from an OpSim-style survey simulation
// database (SQLite) and groups them into the pointings and filters the visit
// budget metric runs on.
package opsim

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/visitbudget/pkg/budget"
)

// Columns names the per-visit columns read from the visit table.
type Columns struct {
	RA           string
	Dec          string
	ExposureTime string
	Filter       string
	Night        string
}

// DefaultColumns follows the OpSim v4+ schema.
var DefaultColumns = Columns{
	RA:           "fieldRA",
	Dec:          "fieldDec",
	ExposureTime: "visitExposureTime",
	Filter:       "filter",
	Night:        "night",
}

// DefaultTable is the visit table of current OpSim outputs.
const DefaultTable = "observations"

// Visit is one simulated observation.
type Visit struct {
	RA           float64
	Dec          float64
	ExposureTime float64
	Filter       string
	Night        int
}

// Query restricts which visits are read. Zero values select everything.
type Query struct {
	Filters  []string
	MinNight int
	MaxNight int
}

// DB is an open survey database.
type DB struct {
	db      *sql.DB
	table   string
	columns Columns
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens the SQLite database at path. An empty table or zero-valued
// columns fall back to DefaultTable and DefaultColumns.
func Open(path, table string, columns Columns) (*DB, error) {
	if table == "" {
		table = DefaultTable
	}
	columns = columns.withDefaults()

	for _, name := range []string{table, columns.RA, columns.Dec, columns.ExposureTime, columns.Filter, columns.Night} {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("invalid table or column name %q", name)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open survey database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping survey database: %w", err)
	}

	return &DB{db: db, table: table, columns: columns}, nil
}

func (c Columns) withDefaults() Columns {
	if c.RA == "" {
		c.RA = DefaultColumns.RA
	}
	if c.Dec == "" {
		c.Dec = DefaultColumns.Dec
	}
	if c.ExposureTime == "" {
		c.ExposureTime = DefaultColumns.ExposureTime
	}
	if c.Filter == "" {
		c.Filter = DefaultColumns.Filter
	}
	if c.Night == "" {
		c.Night = DefaultColumns.Night
	}
	return c
}

// Names returns the registered column names in metric order: RA, Dec,
// exposure time, filter.
func (c Columns) Names() []string {
	return []string{c.RA, c.Dec, c.ExposureTime, c.Filter}
}

// Columns returns the column names in use, defaults filled in.
func (d *DB) Columns() Columns {
	return d.columns
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Visits reads the visits selected by q, ordered by night.
func (d *DB) Visits(ctx context.Context, q Query) ([]Visit, error) {
	var where []string
	var args []interface{}

	if len(q.Filters) > 0 {
		placeholders := make([]string, len(q.Filters))
		for i, f := range q.Filters {
			placeholders[i] = "?"
			args = append(args, f)
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", d.columns.Filter, strings.Join(placeholders, ", ")))
	}
	if q.MinNight > 0 {
		where = append(where, d.columns.Night+" >= ?")
		args = append(args, q.MinNight)
	}
	if q.MaxNight > 0 {
		where = append(where, d.columns.Night+" <= ?")
		args = append(args, q.MaxNight)
	}

	query := fmt.Sprintf("SELECT %s, %s, %s, %s, %s FROM %s",
		d.columns.RA, d.columns.Dec, d.columns.ExposureTime, d.columns.Filter, d.columns.Night, d.table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + d.columns.Night

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.RA, &v.Dec, &v.ExposureTime, &v.Filter, &v.Night); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visits: %w", err)
	}

	return visits, nil
}

// Slice is the set of visits that share one pointing.
type Slice struct {
	Pointing budget.Pointing
	Visits   []Visit
}

// Slices groups visits by pointing, in the order each pointing first appears.
// Coordinates are matched after rounding to a micro-degree.
func Slices(visits []Visit) []Slice {
	index := make(map[budget.Pointing]int)
	var slices []Slice

	for _, v := range visits {
		p := budget.Pointing{RA: roundMicro(v.RA), Dec: roundMicro(v.Dec)}
		i, ok := index[p]
		if !ok {
			i = len(slices)
			index[p] = i
			slices = append(slices, Slice{Pointing: p})
		}
		slices[i].Visits = append(slices[i].Visits, v)
	}

	return slices
}

// Fields returns the distinct pointings of visits in first-seen order.
func Fields(visits []Visit) []budget.Pointing {
	slices := Slices(visits)
	pointings := make([]budget.Pointing, len(slices))
	for i, s := range slices {
		pointings[i] = s.Pointing
	}
	return pointings
}

// Filters returns the distinct filters of visits in first-seen order.
func Filters(visits []Visit) []string {
	seen := make(map[string]bool)
	var filters []string
	for _, v := range visits {
		if !seen[v.Filter] {
			seen[v.Filter] = true
			filters = append(filters, v.Filter)
		}
	}
	return filters
}

// ExposureHours sums the exposure time, in hours, of visits whose exposure
// column is in seconds.
func ExposureHours(visits []Visit) float64 {
	total := 0.0
	for _, v := range visits {
		total += v.ExposureTime
	}
	return total / 3600
}

func roundMicro(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}
