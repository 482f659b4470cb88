/*
NAME
  model_test.go

DESCRIPTION
  model_test.go contains testing for the device model geometry and the
  routing bit-position table found in model.go and switch.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package model

import (
	"testing"

	"github.com/openfpga/xc6bit/frame"
)

// TestBitposBijection checks that no two switches encode to the same
// (minor, two-bit offset, two-bit value, one-bit offset) tuple, and that
// every (from, to) pair is unique.
func TestBitposBijection(t *testing.T) {
	m := New()
	encodings := make(map[[4]int]string)
	pairs := make(map[[2]string]bool)
	for _, bp := range m.BitposTable() {
		enc := [4]int{bp.Minor, bp.TwoBitsO, bp.TwoBitsVal, bp.OneBitO}
		if prev, ok := encodings[enc]; ok {
			t.Errorf("%s->%s shares encoding %v with %s", bp.From, bp.To, enc, prev)
		}
		encodings[enc] = bp.From + "->" + bp.To
		pair := [2]string{bp.From, bp.To}
		if pairs[pair] {
			t.Errorf("duplicate switch %s -> %s", bp.From, bp.To)
		}
		pairs[pair] = true
	}
}

// TestBitposOffsets checks that every table entry stays inside one 64-bit
// row position.
func TestBitposOffsets(t *testing.T) {
	m := New()
	for _, bp := range m.BitposTable() {
		if bp.TwoBitsVal < 0 || bp.TwoBitsVal > 3 {
			t.Errorf("%s->%s: two-bit value %d out of range", bp.From, bp.To, bp.TwoBitsVal)
		}
		if bp.Minor == 20 {
			if bp.TwoBitsO+1 > 63 || bp.OneBitO > 63 {
				t.Errorf("%s->%s: minor-20 offsets out of range", bp.From, bp.To)
			}
			continue
		}
		if bp.Minor%2 != 0 || bp.Minor > 18 {
			t.Errorf("%s->%s: routing pair minor %d invalid", bp.From, bp.To, bp.Minor)
		}
		if bp.TwoBitsO/2 > 63 || bp.OneBitO/2 > 63 {
			t.Errorf("%s->%s: pair offsets out of range", bp.From, bp.To)
		}
	}
}

// TestIsInRow checks row/position resolution over the whole grid.
func TestIsInRow(t *testing.T) {
	if _, _, ok := IsInRow(-1); ok {
		t.Errorf("y=-1 resolved")
	}
	if _, _, ok := IsInRow(YHeight); ok {
		t.Errorf("y=YHeight resolved")
	}
	row, pos, ok := IsInRow(0)
	if !ok || row != frame.NumRows-1 || pos != 0 {
		t.Errorf("y=0: got r%d p%d, want r%d p0", row, pos, frame.NumRows-1)
	}
	row, pos, ok = IsInRow(YHeight - 1)
	if !ok || row != 0 || pos != frame.RowPositions {
		t.Errorf("y=last: got r%d p%d, want r0 p%d", row, pos, frame.RowPositions)
	}
	seen := 0
	for y := 0; y < YHeight; y++ {
		if IsHClkLine(y) {
			seen++
		}
	}
	if seen != frame.NumRows {
		t.Errorf("%d HCLK lines, want %d", seen, frame.NumRows)
	}
}

// TestColumnMajors checks that every column's major is consistent with
// the frame layout: in range, and with enough minors for the codec's
// accesses.
func TestColumnMajors(t *testing.T) {
	for x := 0; x < XWidth; x++ {
		major := XMajor(x)
		if major == -1 {
			continue
		}
		if major < 0 || major >= frame.NumMajors {
			t.Errorf("x%d: major %d out of range", x, major)
			continue
		}
		minors := frame.MajorMinors(major)
		switch ColTypeAt(x) {
		case ColRouting:
			// Routing pairs up to minors 18/19, plus minor 20.
			if minors < 21 {
				t.Errorf("x%d: routing major %d has only %d minors", x, major, minors)
			}
		case ColLogicXM:
			// LUT pairs reach minors 29/30.
			if minors < 31 || frame.MajorTypeOf(major) != frame.MajLogicXM {
				t.Errorf("x%d: XM major %d mismatched (%d minors, type %v)", x, major, minors, frame.MajorTypeOf(major))
			}
		case ColLogicXL:
			if frame.MajorTypeOf(major) != frame.MajLogicXL {
				t.Errorf("x%d: XL major %d has type %v", x, major, frame.MajorTypeOf(major))
			}
		case ColCenter:
			if frame.MajorTypeOf(major) != frame.MajCenter {
				t.Errorf("x%d: center major %d has type %v", x, major, frame.MajorTypeOf(major))
			}
		case ColBram:
			if frame.MajorTypeOf(major) != frame.MajBram {
				t.Errorf("x%d: bram major %d has type %v", x, major, frame.MajorTypeOf(major))
			}
		case ColMacc:
			if frame.MajorTypeOf(major) != frame.MajMacc {
				t.Errorf("x%d: macc major %d has type %v", x, major, frame.MajorTypeOf(major))
			}
		}
	}
	// The IOB marker lives at minor 22 of the right-side major.
	if frame.MajorMinors(frame.RightsideMajor) < 23 {
		t.Errorf("right-side major too narrow for the IOB marker minor")
	}
}

// TestSwitchLookup checks per-tile switch instances.
func TestSwitchLookup(t *testing.T) {
	m := New()
	const y, x = 3, 2 // a routing tile
	if !IsRoutingCol(x) {
		t.Fatalf("x%d is not a routing column", x)
	}
	bp := m.BitposTable()[0]
	idx, ok := m.SwitchLookup(y, x, bp.From, bp.To)
	if !ok {
		t.Fatalf("switch %s -> %s not found", bp.From, bp.To)
	}
	if m.SwitchUsed(y, x, idx) {
		t.Errorf("fresh switch reads used")
	}
	m.UseSwitch(y, x, idx)
	if !m.SwitchUsed(y, x, idx) {
		t.Errorf("switch not used after UseSwitch")
	}
	used := m.UsedSwitches(y, x)
	if len(used) != 1 || used[0] != idx {
		t.Errorf("used switches %v, want [%d]", used, idx)
	}
}

// TestEnsureSwitch checks dynamic switch registration on iologic tiles.
func TestEnsureSwitch(t *testing.T) {
	m := New()
	y, x := YHeight-1, 3
	if !IsIOLogicTile(y, x) {
		t.Fatalf("y%d x%d is not an iologic tile", y, x)
	}
	i := m.EnsureSwitch(y, x, "D_ILOGIC_IDATAIN_IODELAY", "BIOI_INNER_IBUF0")
	j := m.EnsureSwitch(y, x, "D_ILOGIC_IDATAIN_IODELAY", "BIOI_INNER_IBUF0")
	if i != j {
		t.Errorf("EnsureSwitch not idempotent: %d vs %d", i, j)
	}
}

// TestIOBSites checks the site table and lookups.
func TestIOBSites(t *testing.T) {
	if name := IOBSiteName(0); name != "P1" {
		t.Errorf("first site %q, want P1", name)
	}
	y, x, idx, err := FindIOB("P1")
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if y != 0 || idx != 0 || !IsIOLogicTile(y, x) {
		t.Errorf("P1 resolved to y%d x%d i%d", y, x, idx)
	}
	if _, _, _, err := FindIOB("P999"); err == nil {
		t.Errorf("expected error for unknown site")
	}
	for i := 0; i < NumIOBSites; i++ {
		name, _, _, _ := EnumIOB(i)
		if name == "" {
			t.Fatalf("site %d unnamed", i)
		}
		if FindIOBSite(name) != i {
			t.Errorf("site %q does not map back to %d", name, i)
		}
	}
	if name, _, _, _ := EnumIOB(NumIOBSites); name != "" {
		t.Errorf("enumeration did not terminate")
	}
}

// TestLogicAccess checks sub-device placement rules.
func TestLogicAccess(t *testing.T) {
	m := New()
	const xXM, xXL = 3, 5
	y := TopIOTiles
	if _, err := m.Logic(y, xXM, LogM); err != nil {
		t.Errorf("XM column should host an M device: %v", err)
	}
	if _, err := m.Logic(y, xXM, LogL); err == nil {
		t.Errorf("XM column should not host an L device")
	}
	if _, err := m.Logic(y, xXL, LogM); err == nil {
		t.Errorf("XL column should not host an M device")
	}
	if _, err := m.Logic(y, xXL, LogL); err != nil {
		t.Errorf("XL column should host an L device: %v", err)
	}
	if _, err := m.Logic(8, xXM, LogX); err == nil {
		t.Errorf("HCLK line should host no logic")
	}
}
