package log

import "testing"

func TestInitAndNamed(t *testing.T) {
	for _, debug := range []bool{false, true} {
		if err := Init(debug); err != nil {
			t.Fatalf("Init(%v) returned error: %v", debug, err)
		}
		if log == nil {
			t.Fatalf("Init(%v) left the package logger nil", debug)
		}
		if Named("budget") == nil {
			t.Errorf("Named returned nil after Init(%v)", debug)
		}
	}
}

func TestNamedWithoutInit(t *testing.T) {
	log = nil
	if Named("visibility") == nil {
		t.Errorf("Named returned nil without Init")
	}
	if log == nil {
		t.Errorf("fallback logger was not installed")
	}
}
