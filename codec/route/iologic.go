/*
NAME
  iologic.go

DESCRIPTION
  iologic.go emits the switches of the iologic tiles at the edges of the
  die. Unlike the regular routing tiles these are not covered by the
  bit-position table; each side has a fixed table mapping a block of
  (from, to) switch pairs to the minor/bit positions that enable it.
  Entries with no bit positions consume their switches without setting
  anything. Switches not matched by any table entry are reported but do
  not fail emission.

AUTHORS
  The openfpga xc6bit contributors.
*/

package route

import (
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/xclog"
)

// ioSwPos is one switch block of a per-side table: the (from, to) pairs
// that must all be enabled together, and the bits that encode the block.
type ioSwPos struct {
	to    []string
	from  []string
	minor []int
	b64   []int
}

// The left, right and top tables carry no known blocks yet.
var (
	leftIOSwPos     []ioSwPos
	rightIOSwPos    []ioSwPos
	topOuterIOSwPos []ioSwPos
	topInnerIOSwPos []ioSwPos
)

var botInnerIOSwPos = []ioSwPos{
	// input
	{[]string{"D_ILOGIC_IDATAIN_IODELAY_S"}, []string{"BIOI_INNER_IBUF0"},
		[]int{23, 23}, []int{28, 29}},
	{[]string{"D_ILOGIC_SITE"}, []string{"D_ILOGIC_IDATAIN_IODELAY"}, []int{26}, []int{20}},
	{[]string{"D_ILOGIC_SITE_S"}, []string{"D_ILOGIC_IDATAIN_IODELAY_S"}, []int{26}, []int{23}},
	{[]string{"DFB_ILOGIC_SITE"}, []string{"D_ILOGIC_SITE"}, []int{28}, []int{63}},
	{[]string{"DFB_ILOGIC_SITE_S"}, []string{"D_ILOGIC_SITE_S"}, []int{28}, []int{0}},
	{[]string{"FABRICOUT_ILOGIC_SITE"}, []string{"D_ILOGIC_SITE"}, []int{29}, []int{49}},
	{[]string{"FABRICOUT_ILOGIC_SITE_S"}, []string{"D_ILOGIC_SITE_S"}, []int{29}, []int{14}},

	// output
	{[]string{"OQ_OLOGIC_SITE", "BIOI_INNER_O0"},
		[]string{"D1_OLOGIC_SITE", "OQ_OLOGIC_SITE"},
		[]int{26, 27, 28}, []int{40, 21, 57}},
	{[]string{"OQ_OLOGIC_SITE_S", "BIOI_INNER_O1"},
		[]string{"D1_OLOGIC_SITE_S", "OQ_OLOGIC_SITE_S"},
		[]int{26, 27, 28}, []int{43, 56, 6}},

	{[]string{"IOI_LOGICOUT0"}, []string{"IOI_INTER_LOGICOUT0"}, nil, nil},
	{[]string{"IOI_LOGICOUT7"}, []string{"IOI_INTER_LOGICOUT7"}, nil, nil},
	{[]string{"IOI_INTER_LOGICOUT0"}, []string{"FABRICOUT_ILOGIC_SITE"}, nil, nil},
	{[]string{"IOI_INTER_LOGICOUT7"}, []string{"FABRICOUT_ILOGIC_SITE_S"}, nil, nil},
	{[]string{"D_ILOGIC_IDATAIN_IODELAY"}, []string{"BIOI_INNER_IBUF0"}, nil, nil},
	{[]string{"D_ILOGIC_IDATAIN_IODELAY_S"}, []string{"BIOI_INNER_IBUF1"}, nil, nil},
	{[]string{"D1_OLOGIC_SITE"}, []string{"IOI_LOGICINB31"}, nil, nil},
}

var botOuterIOSwPos = []ioSwPos{
	// input
	{[]string{"D_ILOGIC_IDATAIN_IODELAY_S"}, []string{"BIOI_OUTER_IBUF0"},
		[]int{23, 23}, []int{28, 29}},
	{[]string{"D_ILOGIC_SITE"}, []string{"D_ILOGIC_IDATAIN_IODELAY"}, []int{26}, []int{20}},
	{[]string{"D_ILOGIC_SITE_S"}, []string{"D_ILOGIC_IDATAIN_IODELAY_S"}, []int{26}, []int{23}},
	{[]string{"DFB_ILOGIC_SITE"}, []string{"D_ILOGIC_SITE"}, []int{28}, []int{63}},
	{[]string{"DFB_ILOGIC_SITE_S"}, []string{"D_ILOGIC_SITE_S"}, []int{28}, []int{0}},
	{[]string{"FABRICOUT_ILOGIC_SITE"}, []string{"D_ILOGIC_SITE"}, []int{29}, []int{49}},
	{[]string{"FABRICOUT_ILOGIC_SITE_S"}, []string{"D_ILOGIC_SITE_S"}, []int{29}, []int{14}},

	// output
	{[]string{"OQ_OLOGIC_SITE", "BIOI_OUTER_O0"},
		[]string{"D1_OLOGIC_SITE", "OQ_OLOGIC_SITE"},
		[]int{26, 27, 28}, []int{40, 21, 57}},
	{[]string{"OQ_OLOGIC_SITE_S", "BIOI_OUTER_O1"},
		[]string{"D1_OLOGIC_SITE_S", "OQ_OLOGIC_SITE_S"},
		[]int{26, 27, 28}, []int{43, 56, 6}},

	{[]string{"IOI_LOGICOUT0"}, []string{"IOI_INTER_LOGICOUT0"}, nil, nil},
	{[]string{"IOI_LOGICOUT7"}, []string{"IOI_INTER_LOGICOUT7"}, nil, nil},
	{[]string{"IOI_INTER_LOGICOUT0"}, []string{"FABRICOUT_ILOGIC_SITE"}, nil, nil},
	{[]string{"IOI_INTER_LOGICOUT7"}, []string{"FABRICOUT_ILOGIC_SITE_S"}, nil, nil},
	{[]string{"D_ILOGIC_IDATAIN_IODELAY"}, []string{"BIOI_INNER_IBUF0"}, nil, nil},
	{[]string{"D_ILOGIC_IDATAIN_IODELAY_S"}, []string{"BIOI_INNER_IBUF1"}, nil, nil},
	{[]string{"D1_OLOGIC_SITE"}, []string{"IOI_LOGICINB31"}, nil, nil},
}

func sideTable(side model.IOLogicSide) []ioSwPos {
	switch side {
	case model.SideLeft:
		return leftIOSwPos
	case model.SideRight:
		return rightIOSwPos
	case model.SideTopOuter:
		return topOuterIOSwPos
	case model.SideTopInner:
		return topInnerIOSwPos
	case model.SideBotInner:
		return botInnerIOSwPos
	case model.SideBotOuter:
		return botOuterIOSwPos
	}
	return nil
}

// emitIOLogicTile writes the enabled switches of one iologic tile via its
// side table.
func emitIOLogicTile(m *model.Model, buf *frame.Buffer, log xclog.Log, y, x int) error {
	used := m.UsedSwitches(y, x)
	if len(used) == 0 {
		return nil
	}

	row, start, err := startInFrame(y)
	if err != nil {
		return err
	}
	major := model.XMajor(x)

	remaining := make(map[int]model.SwitchInst, len(used))
	for _, i := range used {
		remaining[i] = m.Switch(y, x, i)
	}

	for _, pos := range sideTable(model.IOLogicSideAt(y, x)) {
		matched := make([]int, 0, len(pos.to))
		for i := range pos.to {
			found := -1
			for idx, sw := range remaining {
				if sw.To == pos.to[i] && sw.From == pos.from[i] {
					found = idx
					break
				}
			}
			if found == -1 {
				matched = nil
				break
			}
			matched = append(matched, found)
		}
		if matched == nil {
			continue
		}
		for j, minor := range pos.minor {
			buf.SetBit(row, major, minor, start+pos.b64[j])
		}
		for _, idx := range matched {
			delete(remaining, idx)
		}
	}

	for _, sw := range remaining {
		log(xclog.WarnLevel, pkg+"unsupported iologic switch", "y", y, "x", x, "from", sw.From, "to", sw.To)
	}
	return nil
}
