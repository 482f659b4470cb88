/*
NAME
  switch.go

DESCRIPTION
  switch.go carries the routing-switch side of the model: the per-tile
  switch instances, the net bookkeeping helpers, and the routing
  bit-position table mapping a (from, to) wire pair to the three encoded
  bits that enable the switch in a routing column frame.

AUTHORS
  The openfpga xc6bit contributors.
*/

package model

// RoutingBitPos locates the three bits encoding one routing switch. For
// minor 20 the two-bit field and the one-bit field all live in minor 20 at
// the given offsets. For other minors the two-bit field spans minors minor
// and minor+1 at bit offset TwoBitsO/2, and the one-bit field is at minor
// minor+(OneBitO&1), bit offset OneBitO/2. The arithmetic differs by a
// factor of two between the two cases; that asymmetry is silicon, not a
// bug, and is preserved literally.
type RoutingBitPos struct {
	From       string
	To         string
	Minor      int
	TwoBitsO   int
	TwoBitsVal int
	OneBitO    int
	Bidir      bool
}

// routingBitpos is the switch encoding table shared by every regular
// routing tile.
var routingBitpos = []RoutingBitPos{
	// minors 0/1
	{"LOGICOUT0", "NN2B0", 0, 0, 2, 5, false},
	{"LOGICOUT1", "NN2B1", 0, 0, 1, 7, false},
	{"NN2E0", "LOGICIN_B4", 0, 4, 3, 9, false},
	{"NN2E1", "LOGICIN_B5", 0, 8, 2, 13, false},
	// minors 2/3
	{"LOGICOUT2", "SS2B0", 2, 0, 2, 5, false},
	{"LOGICOUT3", "SS2B1", 2, 0, 1, 7, false},
	{"SS2E0", "LOGICIN_B6", 2, 4, 3, 11, false},
	{"SS2E1", "LOGICIN_B7", 2, 10, 2, 15, false},
	// minors 4/5
	{"LOGICOUT4", "EE2B0", 4, 2, 2, 5, false},
	{"LOGICOUT5", "EE2B1", 4, 2, 1, 9, false},
	{"EE2E0", "LOGICIN_B8", 4, 6, 3, 13, false},
	{"EE2E1", "LOGICIN_B9", 4, 12, 2, 17, false},
	// minors 6/7
	{"LOGICOUT6", "WW2B0", 6, 0, 2, 5, false},
	{"LOGICOUT7", "WW2B1", 6, 0, 3, 7, false},
	{"WW2E0", "LOGICIN_B10", 6, 8, 1, 11, false},
	{"WW2E1", "LOGICIN_B11", 6, 14, 2, 19, false},
	// minors 8/9
	{"LOGICOUT8", "NE2B0", 8, 0, 2, 5, false},
	{"LOGICOUT9", "NE2B1", 8, 0, 1, 9, false},
	{"NE2E0", "LOGICIN_B12", 8, 6, 3, 13, false},
	{"NE2E1", "LOGICIN_B13", 8, 16, 2, 21, false},
	// minors 10/11
	{"LOGICOUT10", "NW2B0", 10, 2, 2, 7, false},
	{"LOGICOUT11", "NW2B1", 10, 2, 3, 9, false},
	{"NW2E0", "LOGICIN_B14", 10, 8, 1, 15, false},
	{"NW2E1", "LOGICIN_B15", 10, 18, 2, 23, false},
	// minors 12/13
	{"LOGICOUT12", "SE2B0", 12, 0, 2, 5, false},
	{"LOGICOUT13", "SE2B1", 12, 0, 1, 11, false},
	{"SE2E0", "LOGICIN_B16", 12, 10, 3, 17, false},
	{"SE2E1", "LOGICIN_B17", 12, 20, 2, 25, false},
	// minors 14/15
	{"LOGICOUT14", "SW2B0", 14, 4, 2, 9, false},
	{"LOGICOUT15", "SW2B1", 14, 4, 1, 13, false},
	{"SW2E0", "LOGICIN_B18", 14, 12, 3, 19, false},
	{"SW2E1", "LOGICIN_B19", 14, 22, 2, 27, false},
	// minors 16/17
	{"LOGICOUT16", "NR1B0", 16, 0, 2, 5, false},
	{"LOGICOUT17", "NR1B1", 16, 0, 3, 7, false},
	{"NR1E0", "LOGICIN_B20", 16, 8, 1, 13, false},
	{"NR1E1", "LOGICIN_B21", 16, 24, 2, 29, false},
	// minors 18/19
	{"LOGICOUT18", "SR1B0", 18, 2, 2, 7, false},
	{"LOGICOUT19", "SR1B1", 18, 2, 1, 11, false},
	{"SR1E0", "LOGICIN_B22", 18, 14, 3, 21, false},
	{"SR1E1", "LOGICIN_B23", 18, 26, 2, 31, false},
	// minor 20: GFAN/clock/set-reset distribution
	{"LOGICIN_B24", "GFAN0", 20, 0, 2, 4, false},
	{"LOGICIN_B25", "GFAN1", 20, 0, 1, 5, false},
	{"LOGICIN_B26", "CLK0", 20, 8, 3, 12, false},
	{"LOGICIN_B27", "CLK1", 20, 16, 2, 20, false},
	{"LOGICIN_B28", "SR0", 20, 24, 1, 28, false},
	{"LOGICIN_B29", "SR1", 20, 32, 3, 36, false},
	{"FAN_B", "GFAN0", 20, 40, 2, 45, true},
	{"FAN_B", "GFAN1", 20, 48, 1, 52, true},
}

// BitposTable returns the routing bit-position table.
func (m *Model) BitposTable() []RoutingBitPos { return m.bitpos }

// SwitchInst is one switch instance at a tile.
type SwitchInst struct {
	From  string
	To    string
	Bidir bool
	Used  bool
}

// routingSwitches returns a fresh switch list for a regular routing tile,
// one instance per bit-position table entry.
func routingSwitches() []SwitchInst {
	sws := make([]SwitchInst, len(routingBitpos))
	for i, bp := range routingBitpos {
		sws[i] = SwitchInst{From: bp.From, To: bp.To, Bidir: bp.Bidir}
	}
	return sws
}

// NumSwitches returns the number of switch instances at (y, x).
func (m *Model) NumSwitches(y, x int) int {
	return len(m.tileAt(y, x).switches)
}

// Switch returns switch i at (y, x).
func (m *Model) Switch(y, x, i int) SwitchInst {
	return m.tileAt(y, x).switches[i]
}

// SwitchLookup finds the switch from wire from to wire to at (y, x).
func (m *Model) SwitchLookup(y, x int, from, to string) (int, bool) {
	for i, sw := range m.tileAt(y, x).switches {
		if sw.From == from && sw.To == to {
			return i, true
		}
	}
	return 0, false
}

// EnsureSwitch returns the index of the (from, to) switch at (y, x),
// adding an instance if the tile does not have one yet.
func (m *Model) EnsureSwitch(y, x int, from, to string) int {
	if i, ok := m.SwitchLookup(y, x, from, to); ok {
		return i
	}
	t := m.tileAt(y, x)
	t.switches = append(t.switches, SwitchInst{From: from, To: to})
	return len(t.switches) - 1
}

// UseSwitch marks switch i at (y, x) as enabled.
func (m *Model) UseSwitch(y, x, i int) {
	m.tileAt(y, x).switches[i].Used = true
}

// SwitchUsed reports whether switch i at (y, x) is enabled.
func (m *Model) SwitchUsed(y, x, i int) bool {
	return m.tileAt(y, x).switches[i].Used
}

// UsedSwitches returns the indices of the enabled switches at (y, x).
func (m *Model) UsedSwitches(y, x int) []int {
	var used []int
	for i, sw := range m.tileAt(y, x).switches {
		if sw.Used {
			used = append(used, i)
		}
	}
	return used
}
