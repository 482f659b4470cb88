/*
NAME
  boolexpr.go

DESCRIPTION
  boolexpr.go converts between 64-entry look-up-table truth tables and
  symbolic sum-of-products expressions over the inputs A1..A6, e.g.
  "A1*A2+~A3". The printer emits a sum of minterms over the expression's
  support; it makes no attempt at further minimization.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package boolexpr parses and prints boolean expressions for 6-input
// look-up tables.
package boolexpr

import (
	"strings"

	"github.com/pkg/errors"
)

// NumInputs is the number of LUT inputs, A1..A6.
const NumInputs = 6

// Parse evaluates a sum-of-products expression over A1..A6 into a 64-entry
// truth table. Bit i of the result is the expression's value with input Aj
// set to bit j-1 of i. The grammar is terms joined by '+', factors joined
// by '*', each factor an optionally '~'-negated input name. "0" and "1"
// denote the constant tables.
func Parse(expr string) (uint64, error) {
	s := strings.ReplaceAll(expr, " ", "")
	if s == "" || s == "0" {
		return 0, nil
	}
	if s == "1" {
		return ^uint64(0), nil
	}
	var tt uint64
	for _, term := range strings.Split(s, "+") {
		if term == "" {
			return 0, errors.Errorf("empty term in expression %q", expr)
		}
		cover := ^uint64(0)
		for _, factor := range strings.Split(term, "*") {
			neg := false
			if strings.HasPrefix(factor, "~") {
				neg = true
				factor = factor[1:]
			}
			in, err := inputIndex(factor)
			if err != nil {
				return 0, errors.Wrapf(err, "in expression %q", expr)
			}
			var mask uint64
			for i := 0; i < 64; i++ {
				if (i>>uint(in))&1 == 1 != neg {
					mask |= 1 << uint(i)
				}
			}
			cover &= mask
		}
		tt |= cover
	}
	return tt, nil
}

func inputIndex(name string) (int, error) {
	if len(name) != 2 || name[0] != 'A' || name[1] < '1' || name[1] > '0'+NumInputs {
		return 0, errors.Errorf("bad input name %q", name)
	}
	return int(name[1] - '1'), nil
}

// Format renders a truth table as a sum of minterms over its support.
// The zero table renders as "" and the all-ones table as "1", matching
// Parse's constants.
func Format(tt uint64) string {
	if tt == 0 {
		return ""
	}
	if tt == ^uint64(0) {
		return "1"
	}
	support := supportOf(tt)

	var b strings.Builder
	seen := make(map[uint64]bool)
	for i := 0; i < 64; i++ {
		if tt&(1<<uint(i)) == 0 {
			continue
		}
		// Key the minterm by its support-restricted assignment so
		// each one prints once.
		var key uint64
		for _, in := range support {
			key = key<<1 | uint64(i>>uint(in))&1
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if b.Len() > 0 {
			b.WriteByte('+')
		}
		for j, in := range support {
			if j > 0 {
				b.WriteByte('*')
			}
			if (i>>uint(in))&1 == 0 {
				b.WriteByte('~')
			}
			b.WriteByte('A')
			b.WriteByte(byte('1' + in))
		}
	}
	return b.String()
}

// supportOf returns the inputs the table actually depends on.
func supportOf(tt uint64) []int {
	var support []int
	for in := 0; in < NumInputs; in++ {
		stride := uint(1) << uint(in)
		depends := false
		for i := 0; i < 64 && !depends; i++ {
			if (i>>uint(in))&1 == 0 {
				a := tt >> uint(i) & 1
				b := tt >> (uint(i) + stride) & 1
				if a != b {
					depends = true
				}
			}
		}
		if depends {
			support = append(support, in)
		}
	}
	return support
}
