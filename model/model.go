/*
NAME
  model.go

DESCRIPTION
  model.go holds the device model the codec extracts into and emits from:
  the tile grid of the XC6SLX9-class die, the row/position arithmetic, the
  column classification, and the per-tile device state (IOBs, logic sites)
  and nets. Population of the wire/switch graph itself is a collaborator
  concern; the model here carries just enough geometry for the codec to
  address frames and resolve switches.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package model describes the programmable device: tiles, columns, IOB
// sites, logic sites, routing switches and nets.
package model

import (
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/xcerr"
)

// Grid constants for the supported die.
const (
	TopIOTiles = 2
	BotIOTiles = 2

	// Rows of tiles per configuration row band: 16 device positions
	// plus the HCLK line.
	rowBandHeight = frame.RowPositions + 1

	// YHeight and XWidth span the full tile grid. The top and bottom IO
	// tiles are the outermost lines of the outermost row bands, not a
	// separate ring.
	YHeight = frame.NumRows * rowBandHeight
	XWidth  = 34
)

// ColType classifies a column of tiles.
type ColType int

const (
	ColNone ColType = iota
	ColLeftIO
	ColRightIO
	ColLeft
	ColRight
	ColRouting
	ColLogicXM
	ColLogicXL
	ColCenter
	ColBram
	ColMacc
)

type column struct {
	typ   ColType
	major int // x-major index, -1 if the column maps to no major
}

// columns lays the die out left to right. Each fabric major owns a routing
// column and a device column; the outer columns carry the IO rings and the
// left/right configuration columns.
var columns = [XWidth]column{
	{ColLeftIO, -1},
	{ColLeft, 1},
	{ColRouting, 2}, {ColLogicXM, 2},
	{ColRouting, 3}, {ColLogicXL, 3},
	{ColRouting, 4}, {ColBram, 4},
	{ColRouting, 5}, {ColLogicXM, 5},
	{ColRouting, 6}, {ColLogicXL, 6},
	{ColRouting, 7}, {ColMacc, 7},
	{ColRouting, 8}, {ColLogicXM, 8},
	{ColRouting, 9}, {ColCenter, 9},
	{ColRouting, 10}, {ColLogicXM, 10},
	{ColRouting, 11}, {ColLogicXL, 11},
	{ColRouting, 12}, {ColLogicXM, 12},
	{ColRouting, 13}, {ColLogicXL, 13},
	{ColRouting, 14}, {ColLogicXM, 14},
	{ColRouting, 15}, {ColLogicXL, 15},
	{ColRouting, 16}, {ColLogicXL, 16},
	{ColRight, 17},
	{ColRightIO, -1},
}

// IMux selects the input path of an IOB.
type IMux int

const (
	IMuxNone IMux = iota
	IMuxI
	IMuxIB
)

// Slew is the output slew rate of an IOB.
type Slew int

const (
	SlewNone Slew = iota
	SlewSlow
	SlewFast
	SlewQuietIO
)

// Suspend is the suspend-mode behaviour of an IOB.
type Suspend int

const (
	SuspNone Suspend = iota
	SuspLastVal
	Susp3State
	Susp3StatePullup
	Susp3StatePulldown
	Susp3StateKeeper
	Susp3StateOctOn
)

// IOLVCMOS33 is the only I/O standard the codec round-trips.
const IOLVCMOS33 = "LVCMOS33"

// IOBConfig is the attribute set of a pad-level I/O block.
type IOBConfig struct {
	Instantiated bool
	IStandard    string
	OStandard    string
	IMux         IMux
	BypassMux    IMux
	Drive        int
	Slew         Slew
	Suspend      Suspend
	OUsed        bool
}

// LogicSub selects a sub-device of a logic tile.
type LogicSub int

const (
	LogM LogicSub = iota
	LogL
	LogX
	numLogicSubs
)

func (s LogicSub) String() string {
	switch s {
	case LogM:
		return "M"
	case LogL:
		return "L"
	case LogX:
		return "X"
	default:
		return "?"
	}
}

// LUT names the four look-up tables of a logic sub-device.
type LUT int

const (
	LutA LUT = iota
	LutB
	LutC
	LutD
	numLUTs
)

func (l LUT) String() string { return string(rune('A' + int(l))) }

// LogicConfig is the configuration of one logic sub-device.
type LogicConfig struct {
	Instantiated bool
	LUTs         [numLUTs]string // boolean expressions, empty = unset
}

// tile is the lazily allocated per-tile state.
type tile struct {
	iob      *IOBConfig
	logic    [numLogicSubs]*LogicConfig
	switches []SwitchInst
}

// SwitchRef identifies one switch instance at a tile.
type SwitchRef struct {
	Y, X int
	Idx  int
}

// Model is a populated device model.
type Model struct {
	tiles  map[[2]int]*tile
	bitpos []RoutingBitPos
	nets   [][]SwitchRef
}

// New returns an empty model of the supported die with the standard
// routing bit-position table.
func New() *Model {
	return &Model{
		tiles:  make(map[[2]int]*tile),
		bitpos: routingBitpos,
	}
}

func (m *Model) tileAt(y, x int) *tile {
	t, ok := m.tiles[[2]int{y, x}]
	if !ok {
		t = &tile{}
		if ColTypeAt(x) == ColRouting {
			t.switches = routingSwitches()
		}
		m.tiles[[2]int{y, x}] = t
	}
	return t
}

// ColTypeAt returns the classification of column x.
func ColTypeAt(x int) ColType {
	if x < 0 || x >= XWidth {
		return ColNone
	}
	return columns[x].typ
}

// XMajor returns the x-major index of column x, or -1 if the column maps
// to no major.
func XMajor(x int) int {
	if x < 0 || x >= XWidth {
		return -1
	}
	return columns[x].major
}

// IsRoutingCol reports whether column x is a routing column.
func IsRoutingCol(x int) bool { return ColTypeAt(x) == ColRouting }

// IsLogicCol reports whether column x hosts logic sites (fabric or
// center).
func IsLogicCol(x int) bool {
	t := ColTypeAt(x)
	return t == ColLogicXM || t == ColLogicXL || t == ColCenter
}

// IsXMCol reports whether column x is an XM logic column.
func IsXMCol(x int) bool { return ColTypeAt(x) == ColLogicXM }

// IsXLCol reports whether column x is an XL logic column.
func IsXLCol(x int) bool { return ColTypeAt(x) == ColLogicXL }

// IsInRow resolves tile line y to its configuration row and position
// within that row. Rows count from the bottom of the die; positions count
// from the top of the band, with position 8 being the HCLK line.
func IsInRow(y int) (row, pos int, ok bool) {
	if y < 0 || y >= YHeight {
		return -1, -1, false
	}
	return frame.NumRows - 1 - y/rowBandHeight, y % rowBandHeight, true
}

// IsHClkLine reports whether tile line y is the horizontal clock line of
// its row band.
func IsHClkLine(y int) bool {
	_, pos, ok := IsInRow(y)
	return ok && pos == frame.HClkPos
}

// IsIOLogicTile reports whether (y, x) hosts iologic devices: the inner
// and outer IO rings at the top and bottom of the fabric columns, and the
// left and right IO columns.
func IsIOLogicTile(y, x int) bool {
	if y < 0 || y >= YHeight {
		return false
	}
	t := ColTypeAt(x)
	if t == ColLeftIO || t == ColRightIO {
		return y >= TopIOTiles && y < YHeight-BotIOTiles
	}
	if t == ColRouting || t == ColNone || t == ColLeft || t == ColRight {
		return false
	}
	return y < TopIOTiles || y >= YHeight-BotIOTiles
}

// IOLogicSide classifies an iologic tile for the per-side switch tables.
type IOLogicSide int

const (
	SideNone IOLogicSide = iota
	SideLeft
	SideRight
	SideTopOuter
	SideTopInner
	SideBotInner
	SideBotOuter
)

// IOLogicSideAt returns which side table governs iologic tile (y, x).
func IOLogicSideAt(y, x int) IOLogicSide {
	switch ColTypeAt(x) {
	case ColLeftIO:
		return SideLeft
	case ColRightIO:
		return SideRight
	}
	switch y {
	case 0:
		return SideTopOuter
	case 1:
		return SideTopInner
	case YHeight - BotIOTiles:
		return SideBotInner
	case YHeight - 1:
		return SideBotOuter
	}
	return SideNone
}

// HasLogicM reports whether tile (y, x) hosts a LOGIC_M device.
func (m *Model) HasLogicM(y, x int) bool {
	if !IsXMCol(x) || y < TopIOTiles || y >= YHeight-BotIOTiles {
		return false
	}
	_, pos, ok := IsInRow(y)
	return ok && pos != frame.HClkPos
}

// Logic returns the logic sub-device configuration at (y, x), allocating
// it if needed. It returns an error if the tile hosts no such sub-device.
func (m *Model) Logic(y, x int, sub LogicSub) (*LogicConfig, error) {
	_, pos, ok := IsInRow(y)
	if !ok || pos == frame.HClkPos || y < TopIOTiles || y >= YHeight-BotIOTiles {
		return nil, xcerr.Newf(xcerr.BadFar, "no logic site at y%d x%d", y, x)
	}
	switch ColTypeAt(x) {
	case ColLogicXM:
		if sub == LogL {
			return nil, xcerr.Newf(xcerr.InternalInvariant, "no L device in XM column x%d", x)
		}
	case ColLogicXL, ColCenter:
		if sub == LogM {
			return nil, xcerr.Newf(xcerr.InternalInvariant, "no M device in XL/center column x%d", x)
		}
	default:
		return nil, xcerr.Newf(xcerr.BadFar, "no logic site at y%d x%d", y, x)
	}
	t := m.tileAt(y, x)
	if t.logic[sub] == nil {
		t.logic[sub] = &LogicConfig{}
	}
	return t.logic[sub], nil
}

// AddNet records a net made of the given switch instances.
func (m *Model) AddNet(sws []SwitchRef) {
	m.nets = append(m.nets, sws)
}

// Nets returns the nets recorded so far.
func (m *Model) Nets() [][]SwitchRef { return m.nets }
