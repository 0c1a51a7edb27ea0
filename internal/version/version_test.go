package version

import (
	"errors"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.10.0", "1.9.0", 1},
		{"2.0.0-beta.7", "2.0.0-beta.9", -1},
		{"2.0.0-beta.9", "2.0.0-beta.10", -1},
		{"2.0.0-beta.9", "2.0.0", -1},
		{"2.0.0", "2.0.0-beta.9", 1},
		{"3.5.0", "3.5.0+build.7", 0},
		{"v3.8.1", "3.8.1", 0},
		{"1.4.2", "1.1.1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Compare() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompare_Invalid(t *testing.T) {
	for _, v := range []string{"", "dev", "1.2", "1", "1.2.3.4", "01.2.3", "1.2.x"} {
		t.Run(v, func(t *testing.T) {
			_, err := Compare(v, "1.0.0")
			if err == nil {
				t.Fatalf("Compare(%q) should fail", v)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) || perr.Value != v {
				t.Errorf("error = %#v, want *ParseError for %q", err, v)
			}
		})
	}
}

func TestLess(t *testing.T) {
	less, err := Less("2.0.0-beta.8", "2.0.0-beta.9")
	if err != nil {
		t.Fatalf("Less() error: %v", err)
	}
	if !less {
		t.Error("expected 2.0.0-beta.8 < 2.0.0-beta.9")
	}
	if _, err := Less("3.5.0", "bogus"); err == nil {
		t.Error("Less() should fail for malformed version")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("3.8.1"); err != nil {
		t.Errorf("Validate(3.8.1) error: %v", err)
	}
	if err := Validate("3.8"); err == nil {
		t.Error("Validate(3.8) should fail")
	}
}
