/*
NAME
  boolexpr_test.go

DESCRIPTION
  boolexpr_test.go contains testing for the LUT expression conversions
  found in boolexpr.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package boolexpr

import (
	"math/rand"
	"testing"
)

// TestParseKnown checks a few hand-evaluated expressions.
func TestParseKnown(t *testing.T) {
	tests := []struct {
		expr  string
		check func(uint64) bool
	}{
		{"A1", func(tt uint64) bool {
			for i := 0; i < 64; i++ {
				if tt>>uint(i)&1 != uint64(i&1) {
					return false
				}
			}
			return true
		}},
		{"~A1", func(tt uint64) bool {
			for i := 0; i < 64; i++ {
				if tt>>uint(i)&1 != uint64(^i&1) {
					return false
				}
			}
			return true
		}},
		{"A1*A2+~A3", func(tt uint64) bool {
			for i := 0; i < 64; i++ {
				want := uint64(0)
				if (i&1 == 1 && i&2 == 2) || i&4 == 0 {
					want = 1
				}
				if tt>>uint(i)&1 != want {
					return false
				}
			}
			return true
		}},
		{"0", func(tt uint64) bool { return tt == 0 }},
		{"1", func(tt uint64) bool { return tt == ^uint64(0) }},
	}
	for _, tt := range tests {
		got, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("%q: did not expect error: %v", tt.expr, err)
		}
		if !tt.check(got) {
			t.Errorf("%q: truth table %#x is wrong", tt.expr, got)
		}
	}
}

// TestParseErrors checks malformed expressions.
func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"A7", "B1", "A1**A2", "A1+", "~", "A12"} {
		if _, err := Parse(expr); err == nil {
			t.Errorf("%q: expected error", expr)
		}
	}
}

// TestFormatParseFixpoint checks Parse(Format(tt)) == tt over random
// tables.
func TestFormatParseFixpoint(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tables := []uint64{0, ^uint64(0), 1, 1 << 63}
	for i := 0; i < 50; i++ {
		tables = append(tables, r.Uint64())
	}
	for _, want := range tables {
		got, err := Parse(Format(want))
		if err != nil {
			t.Fatalf("table %#x: did not expect error: %v", want, err)
		}
		if got != want {
			t.Errorf("table %#x round-tripped to %#x", want, got)
		}
	}
}

// TestFormatSupport checks that unused inputs are dropped from the
// rendered expression.
func TestFormatSupport(t *testing.T) {
	tt, err := Parse("~A3")
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if got := Format(tt); got != "~A3" {
		t.Errorf("got %q, want %q", got, "~A3")
	}
}
