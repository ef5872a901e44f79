package coords

import (
	"math"
	"testing"
)

func TestParseRA(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "decimal degrees", input: "180.0", expected: 180.0},
		{name: "decimal with whitespace", input: "  45.25 ", expected: 45.25},
		{name: "colon separated hours", input: "12:30:00", expected: 187.5},
		{name: "space separated hours", input: "18 36 56.336", expected: 279.234733},
		{name: "hms letters", input: "06h45m08.9s", expected: 101.287083},
		{name: "hours and minutes only", input: "01:30", expected: 22.5},
		{name: "zero", input: "00:00:00", expected: 0},
		{name: "decimal out of range", input: "360", wantErr: true},
		{name: "negative decimal", input: "-1", wantErr: true},
		{name: "hours out of range", input: "24:00:00", wantErr: true},
		{name: "minutes out of range", input: "12:60:00", wantErr: true},
		{name: "negative sexagesimal", input: "-01:00:00", wantErr: true},
		{name: "garbage", input: "north", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRA(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRA(%q) = %v, expected error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRA(%q) returned error: %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("ParseRA(%q) = %.6f, expected %.6f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "decimal degrees", input: "-30.0", expected: -30.0},
		{name: "positive sexagesimal", input: "+38:47:01.28", expected: 38.783689},
		{name: "negative sexagesimal", input: "-16:42:58.0", expected: -16.716111},
		{name: "negative under one degree", input: "-00:30:00", expected: -0.5},
		{name: "dms letters", input: "-29d00m28.1s", expected: -29.007806},
		{name: "pole", input: "90", expected: 90},
		{name: "beyond pole", input: "90.5", wantErr: true},
		{name: "beyond south pole", input: "-91:00:00", wantErr: true},
		{name: "seconds out of range", input: "10:00:61", wantErr: true},
		{name: "too many fields", input: "10:00:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDec(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDec(%q) = %v, expected error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDec(%q) returned error: %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("ParseDec(%q) = %.6f, expected %.6f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParsePointing(t *testing.T) {
	p, err := ParsePointing("12:00:00", "-30:00:00")
	if err != nil {
		t.Fatalf("ParsePointing returned error: %v", err)
	}
	if math.Abs(p.RA-180) > 1e-9 || math.Abs(p.Dec+30) > 1e-9 {
		t.Errorf("ParsePointing = %+v, expected RA 180, Dec -30", p)
	}

	if _, err := ParsePointing("12:00:00", "100"); err == nil {
		t.Errorf("ParsePointing accepted declination 100")
	}
}
