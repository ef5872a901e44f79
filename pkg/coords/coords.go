// Package coords parses equatorial sky coordinates given either as decimal
// degrees or in sexagesimal notation.
package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/chrissnell/visitbudget/pkg/budget"
)

// ParseRA parses a right ascension. Decimal input is taken as degrees;
// sexagesimal input ("HH:MM:SS.s", "HH MM SS.s" or "HHhMMmSS.ss") as hours.
// The result is in degrees, within [0, 360).
func ParseRA(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty right ascension")
	}

	if !isSexagesimal(s) {
		deg, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid right ascension %q: %w", s, err)
		}
		if math.IsNaN(deg) || deg < 0 || deg >= 360 {
			return 0, fmt.Errorf("right ascension %v out of range [0, 360)", deg)
		}
		return deg, nil
	}

	neg, h, m, sec, err := splitSexagesimal(s)
	if err != nil {
		return 0, fmt.Errorf("invalid right ascension %q: %w", s, err)
	}
	if neg {
		return 0, fmt.Errorf("right ascension %q may not be negative", s)
	}
	if h >= 24 {
		return 0, fmt.Errorf("right ascension %q: hours must be below 24", s)
	}

	return unit.NewRA(h, m, sec).Deg(), nil
}

// ParseDec parses a declination in decimal degrees or "±DD:MM:SS.s". The result
// is in degrees, within [-90, 90].
func ParseDec(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty declination")
	}

	var deg float64
	if !isSexagesimal(s) {
		var err error
		deg, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid declination %q: %w", s, err)
		}
	} else {
		neg, d, m, sec, err := splitSexagesimal(s)
		if err != nil {
			return 0, fmt.Errorf("invalid declination %q: %w", s, err)
		}
		var sign byte = ' '
		if neg {
			sign = '-'
		}
		deg = unit.NewAngle(sign, d, m, sec).Deg()
	}

	if math.IsNaN(deg) || deg < -90 || deg > 90 {
		return 0, fmt.Errorf("declination %v out of range [-90, 90]", deg)
	}
	return deg, nil
}

// ParsePointing parses a right ascension and declination pair.
func ParsePointing(ra, dec string) (budget.Pointing, error) {
	raDeg, err := ParseRA(ra)
	if err != nil {
		return budget.Pointing{}, err
	}
	decDeg, err := ParseDec(dec)
	if err != nil {
		return budget.Pointing{}, err
	}
	return budget.Pointing{RA: raDeg, Dec: decDeg}, nil
}

func isSexagesimal(s string) bool {
	return strings.ContainsAny(s, ": hdms")
}

// splitSexagesimal breaks "[+-]A:B:C" (or space / h-m-s / d-m-s separated) into
// its sign and components. Minutes and seconds must be below 60.
func splitSexagesimal(s string) (neg bool, a, b int, c float64, err error) {
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == ' ' || r == 'h' || r == 'd' || r == 'm' || r == 's'
	})
	if len(fields) < 2 || len(fields) > 3 {
		return false, 0, 0, 0, fmt.Errorf("expected 2 or 3 sexagesimal fields, got %d", len(fields))
	}

	if a, err = strconv.Atoi(fields[0]); err != nil {
		return false, 0, 0, 0, err
	}
	if b, err = strconv.Atoi(fields[1]); err != nil {
		return false, 0, 0, 0, err
	}
	if len(fields) == 3 {
		if c, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return false, 0, 0, 0, err
		}
	}

	if a < 0 || b < 0 || b >= 60 || c < 0 || c >= 60 {
		return false, 0, 0, 0, fmt.Errorf("minutes and seconds must lie in [0, 60)")
	}

	return neg, a, b, c, nil
}
