/*
NAME
  route.go

DESCRIPTION
  route.go round-trips inter-tile routing switches between the model and
  the routing minors of the frame buffer. A switch is encoded as a two-bit
  field plus a one-bit field located by the model's bit-position table;
  minor 20 packs all three bits into one minor while the other minors
  spread them over a pair, with offsets halved. The asymmetry is silicon
  wiring and is preserved literally.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package route extracts and emits routing-switch configuration.
package route

import (
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/xcerr"
	"github.com/openfpga/xc6bit/xclog"
)

// MaxYXSwitches bounds the number of switches one extraction pass can
// collect.
const MaxYXSwitches = 1024

const pkg = "route: "

func startInFrame(y int) (row, start int, err error) {
	row, pos, ok := model.IsInRow(y)
	if !ok || pos == frame.HClkPos {
		return 0, 0, xcerr.Newf(xcerr.BadFar, "no switch position at y%d", y)
	}
	if pos > frame.HClkPos {
		return row, (pos-1)*64 + frame.HClkBits, nil
	}
	return row, pos * 64, nil
}

// bitposIsSet reports whether the switch located by bp is enabled at tile
// (y, x).
func bitposIsSet(buf *frame.Buffer, y, x int, bp model.RoutingBitPos) (bool, error) {
	row, start, err := startInFrame(y)
	if err != nil {
		return false, err
	}
	major := model.XMajor(x)

	if bp.Minor == 20 {
		twoBits := 0
		if buf.Bit(row, major, 20, start+bp.TwoBitsO) {
			twoBits |= 2
		}
		if buf.Bit(row, major, 20, start+bp.TwoBitsO+1) {
			twoBits |= 1
		}
		if twoBits != bp.TwoBitsVal {
			return false, nil
		}
		return buf.Bit(row, major, 20, start+bp.OneBitO), nil
	}

	twoBits := 0
	if buf.Bit(row, major, bp.Minor, start+bp.TwoBitsO/2) {
		twoBits |= 2
	}
	if buf.Bit(row, major, bp.Minor+1, start+bp.TwoBitsO/2) {
		twoBits |= 1
	}
	if twoBits != bp.TwoBitsVal {
		return false, nil
	}
	return buf.Bit(row, major, bp.Minor+(bp.OneBitO&1), start+bp.OneBitO/2), nil
}

// bitposClear clears the three bits of bp at tile (y, x).
func bitposClear(buf *frame.Buffer, y, x int, bp model.RoutingBitPos) error {
	row, start, err := startInFrame(y)
	if err != nil {
		return err
	}
	major := model.XMajor(x)

	if bp.Minor == 20 {
		buf.ClearBit(row, major, bp.Minor, start+bp.TwoBitsO)
		buf.ClearBit(row, major, bp.Minor, start+bp.TwoBitsO+1)
		buf.ClearBit(row, major, bp.Minor, start+bp.OneBitO)
		return nil
	}
	buf.ClearBit(row, major, bp.Minor, start+bp.TwoBitsO/2)
	buf.ClearBit(row, major, bp.Minor+1, start+bp.TwoBitsO/2)
	buf.ClearBit(row, major, bp.Minor+(bp.OneBitO&1), start+bp.OneBitO/2)
	return nil
}

// BitposSet sets the three bits of bp at tile (y, x). It is the inverse
// of the extraction test.
func BitposSet(buf *frame.Buffer, y, x int, bp model.RoutingBitPos) error {
	row, start, err := startInFrame(y)
	if err != nil {
		return err
	}
	major := model.XMajor(x)

	if bp.Minor == 20 {
		if bp.TwoBitsVal&2 != 0 {
			buf.SetBit(row, major, bp.Minor, start+bp.TwoBitsO)
		}
		if bp.TwoBitsVal&1 != 0 {
			buf.SetBit(row, major, bp.Minor, start+bp.TwoBitsO+1)
		}
		buf.SetBit(row, major, bp.Minor, start+bp.OneBitO)
		return nil
	}
	if bp.TwoBitsVal&2 != 0 {
		buf.SetBit(row, major, bp.Minor, start+bp.TwoBitsO/2)
	}
	if bp.TwoBitsVal&1 != 0 {
		buf.SetBit(row, major, bp.Minor+1, start+bp.TwoBitsO/2)
	}
	buf.SetBit(row, major, bp.Minor+(bp.OneBitO&1), start+bp.OneBitO/2)
	return nil
}

// isRoutingLine reports whether tile line y carries routing switches:
// inside the fabric, off the IO rows and off the HCLK lines.
func isRoutingLine(y int) bool {
	if y < model.TopIOTiles || y >= model.YHeight-model.BotIOTiles {
		return false
	}
	return !model.IsHClkLine(y)
}

// Extract scans every routing column tile for enabled switches, records
// them in the model and clears the consumed bits. Each recovered switch
// becomes a single-switch net.
func Extract(m *model.Model, buf *frame.Buffer, log xclog.Log) error {
	var found []model.SwitchRef
	for x := 0; x < model.XWidth; x++ {
		if !model.IsRoutingCol(x) {
			continue
		}
		for y := 0; y < model.YHeight; y++ {
			if !isRoutingLine(y) {
				continue
			}
			for _, bp := range m.BitposTable() {
				set, err := bitposIsSet(buf, y, x, bp)
				if err != nil {
					return err
				}
				if !set {
					continue
				}
				idx, ok := m.SwitchLookup(y, x, bp.From, bp.To)
				if !ok {
					return xcerr.Newf(xcerr.InternalInvariant, "bitpos entry %s -> %s has no switch at y%d x%d", bp.From, bp.To, y, x)
				}
				if m.SwitchUsed(y, x, idx) {
					log(xclog.WarnLevel, pkg+"switch already enabled", "y", y, "x", x, "from", bp.From, "to", bp.To)
				}
				if len(found) >= MaxYXSwitches {
					return xcerr.Newf(xcerr.PayloadOverflow, "more than %d switches", MaxYXSwitches)
				}
				found = append(found, model.SwitchRef{Y: y, X: x, Idx: idx})
				if err := bitposClear(buf, y, x, bp); err != nil {
					return err
				}
			}
		}
	}
	for _, ref := range found {
		m.UseSwitch(ref.Y, ref.X, ref.Idx)
		m.AddNet([]model.SwitchRef{ref})
	}
	return nil
}

// findBitpos locates the bit-position entry for a (from, to) switch,
// honouring bidirectional entries in either orientation.
func findBitpos(m *model.Model, from, to string) (model.RoutingBitPos, bool) {
	for _, bp := range m.BitposTable() {
		if bp.From == from && bp.To == to {
			return bp, true
		}
		if bp.Bidir && bp.From == to && bp.To == from {
			return bp, true
		}
	}
	return model.RoutingBitPos{}, false
}

// Emit writes every enabled switch of the model into the frame buffer:
// routing column tiles via the bit-position table, iologic tiles via the
// per-side switch tables.
func Emit(m *model.Model, buf *frame.Buffer, log xclog.Log) error {
	for x := 0; x < model.XWidth; x++ {
		for y := 0; y < model.YHeight; y++ {
			switch {
			case model.IsRoutingCol(x) && isRoutingLine(y):
				if err := emitRoutingTile(m, buf, y, x); err != nil {
					return err
				}
			case model.IsIOLogicTile(y, x):
				if err := emitIOLogicTile(m, buf, log, y, x); err != nil {
					return err
				}
			default:
				for _, i := range m.UsedSwitches(y, x) {
					sw := m.Switch(y, x, i)
					log(xclog.WarnLevel, pkg+"unsupported switch", "y", y, "x", x, "from", sw.From, "to", sw.To)
				}
			}
		}
	}
	return nil
}

func emitRoutingTile(m *model.Model, buf *frame.Buffer, y, x int) error {
	for _, i := range m.UsedSwitches(y, x) {
		sw := m.Switch(y, x, i)
		bp, ok := findBitpos(m, sw.From, sw.To)
		if !ok {
			return xcerr.Newf(xcerr.InternalInvariant, "switch %s -> %s at y%d x%d has no bitpos entry", sw.From, sw.To, y, x)
		}
		if err := BitposSet(buf, y, x, bp); err != nil {
			return err
		}
	}
	return nil
}
