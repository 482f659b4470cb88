/*
NAME
  logic.go

DESCRIPTION
  logic.go round-trips look-up-table configuration between the model and
  the logic minors of the frame buffer. The eight per-LUT base
  permutations and the X-device instantiation sentinel reflect silicon
  wiring; they are encoded literally and no regularity is assumed.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package logic extracts and emits logic-site LUT configuration.
package logic

import (
	"github.com/openfpga/xc6bit/boolexpr"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/xcerr"
	"github.com/openfpga/xc6bit/xclog"
)

// XDevSentinel is the 64-bit header read at minor 26 for an instantiated
// X sub-device.
const XDevSentinel = 0x000000B000600086

// xDevRequired are the sentinel bits that must all be set before the X
// device's LUTs are decoded; no other header bit may be set, so the
// header must equal XDevSentinel exactly.
const xDevRequired = 1<<1 | 1<<2 | 1<<7 | 1<<21 | 1<<22 | 1<<36 | 1<<37 | 1<<39

// lutBase is one entry of the per-LUT addressing table: which minor pair
// holds the truth table, whether it sits in the upper half of the 64-bit
// position, and the input permutation applied between the hardware bit
// order and the logical truth table.
type lutBase struct {
	minor  int
	upper  bool // +4 byte offset: the A/B half of the position
	base   [6]int
	flipB0 bool
}

// lutBases maps (sub-device, LUT) to its addressing entry.
var lutBases = map[model.LogicSub][4]lutBase{
	model.LogM: {
		model.LutA: {24, true, [6]int{0, 1, 0, 0, 1, 0}, true},
		model.LutB: {21, true, [6]int{1, 1, 0, 1, 0, 1}, true},
		model.LutC: {24, false, [6]int{0, 1, 0, 0, 1, 0}, true},
		model.LutD: {21, false, [6]int{1, 1, 0, 1, 0, 1}, true},
	},
	model.LogX: {
		model.LutA: {27, true, [6]int{1, 1, 0, 1, 1, 0}, false},
		model.LutB: {29, true, [6]int{1, 1, 0, 1, 1, 0}, false},
		model.LutC: {27, false, [6]int{0, 1, 0, 0, 0, 1}, false},
		model.LutD: {29, false, [6]int{0, 1, 0, 0, 0, 1}, false},
	},
}

const pkg = "logic: "

// mapLUT translates between the hardware bit order of a truth table and
// its logical order by permuting entry indices. The mapping is its own
// inverse, which the round-trip tests rely on.
func mapLUT(tt uint64, base [6]int, flipB0 bool) uint64 {
	var mask int
	for i, b := range base {
		if b != 0 {
			mask |= 1 << uint(i)
		}
	}
	if flipB0 {
		mask ^= 1
	}
	var out uint64
	for i := 0; i < 64; i++ {
		if tt&(1<<uint(i)) != 0 {
			out |= 1 << uint(i^mask)
		}
	}
	return out
}

// v32Index maps an adjusted row position and half selector to the 32-bit
// half index used by the frame LUT accessors.
func v32Index(rowPos int, upper bool) int {
	i := rowPos * 2
	if upper {
		i++
	}
	return i
}

// tilePos resolves a logic tile to its frame coordinates: configuration
// row, x-major and the adjusted row position (HCLK line folded out).
func tilePos(y, x int) (row, major, rowPos int, err error) {
	row, pos, ok := model.IsInRow(y)
	if !ok || pos == frame.HClkPos {
		return 0, 0, 0, xcerr.Newf(xcerr.BadFar, "no logic position at y%d", y)
	}
	if pos > frame.HClkPos {
		pos--
	}
	return row, model.XMajor(x), pos, nil
}

// Extract reads every logic site hosting an M device, decodes the M and X
// sub-device LUTs into the model and clears the consumed bits.
func Extract(m *model.Model, buf *frame.Buffer, log xclog.Log) error {
	for x := 0; x < model.XWidth; x++ {
		if !model.IsLogicCol(x) {
			continue
		}
		for y := model.TopIOTiles; y < model.YHeight-model.BotIOTiles; y++ {
			if !m.HasLogicM(y, x) {
				continue
			}
			if err := extractTile(m, buf, log, y, x); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractTile(m *model.Model, buf *frame.Buffer, log xclog.Log, y, x int) error {
	row, major, rowPos, err := tilePos(y, x)
	if err != nil {
		return err
	}

	// M device.
	for lut, lb := range lutBases[model.LogM] {
		if err := extractLUT(m, buf, y, x, model.LogM, model.LUT(lut), lb, row, major, rowPos); err != nil {
			return err
		}
	}

	// X device: the instantiation sentinel gates the LUT decode.
	byteOff, err := frame.PosByteOff(rowPos + posUnfold(rowPos))
	if err != nil {
		return err
	}
	u64 := buf.GetU64(frame.Off(row, major, 26) + byteOff)
	if u64 == 0 {
		return nil
	}
	if u64&xDevRequired != xDevRequired || u64&^uint64(XDevSentinel) != 0 {
		log(xclog.WarnLevel, pkg+"unexpected X device header", "y", y, "x", x, "header", u64)
		return nil
	}
	buf.SetU64(frame.Off(row, major, 26)+byteOff, 0)

	for lut, lb := range lutBases[model.LogX] {
		if err := extractLUT(m, buf, y, x, model.LogX, model.LUT(lut), lb, row, major, rowPos); err != nil {
			return err
		}
	}
	return nil
}

// posUnfold maps an adjusted row position back to its raw value for the
// byte-offset helper, which expects the HCLK line unfolded.
func posUnfold(rowPos int) int {
	if rowPos >= frame.HClkPos {
		return 1
	}
	return 0
}

func extractLUT(m *model.Model, buf *frame.Buffer, y, x int, sub model.LogicSub, lut model.LUT, lb lutBase, row, major, rowPos int) error {
	hw := buf.LUT64(row, major, lb.minor, v32Index(rowPos, lb.upper))
	if hw == 0 {
		return nil
	}
	expr := boolexpr.Format(mapLUT(hw, lb.base, lb.flipB0))
	if expr == "" {
		return nil
	}
	cfg, err := m.Logic(y, x, sub)
	if err != nil {
		return err
	}
	cfg.Instantiated = true
	cfg.LUTs[lut] = expr
	buf.SetLUT64(row, major, lb.minor, v32Index(rowPos, lb.upper), 0)
	return nil
}

// Emit writes the instantiated logic devices of the model into the frame
// buffer. Only LUT D of the X sub-device in XM columns is emitted in this
// iteration; any other configured LUT position is reported as a
// diagnostic and skipped.
func Emit(m *model.Model, buf *frame.Buffer, log xclog.Log) error {
	for x := 0; x < model.XWidth; x++ {
		xm := model.IsXMCol(x)
		if !xm && !model.IsXLCol(x) {
			continue
		}
		for y := model.TopIOTiles; y < model.YHeight-model.BotIOTiles; y++ {
			if _, pos, ok := model.IsInRow(y); !ok || pos == frame.HClkPos {
				continue
			}
			if err := emitTile(m, buf, log, y, x, xm); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitTile(m *model.Model, buf *frame.Buffer, log xclog.Log, y, x int, xm bool) error {
	if !xm {
		for _, sub := range []model.LogicSub{model.LogX, model.LogL} {
			cfg, err := m.Logic(y, x, sub)
			if err != nil {
				return err
			}
			if cfg.Instantiated {
				log(xclog.ErrorLevel, pkg+"XL column devices not supported for emission", "y", y, "x", x, "sub", sub)
			}
		}
		return nil
	}

	mdev, err := m.Logic(y, x, model.LogM)
	if err != nil {
		return err
	}
	if mdev.Instantiated {
		log(xclog.ErrorLevel, pkg+"M device not supported for emission", "y", y, "x", x)
	}

	xdev, err := m.Logic(y, x, model.LogX)
	if err != nil {
		return err
	}
	if !xdev.Instantiated {
		return nil
	}

	row, major, rowPos, err := tilePos(y, x)
	if err != nil {
		return err
	}
	byteOff, err := frame.PosByteOff(rowPos + posUnfold(rowPos))
	if err != nil {
		return err
	}
	buf.SetU64(frame.Off(row, major, 26)+byteOff, XDevSentinel)

	for lut := model.LutA; lut <= model.LutC; lut++ {
		if xdev.LUTs[lut] != "" {
			log(xclog.ErrorLevel, pkg+"X LUT not supported for emission", "y", y, "x", x, "lut", lut)
		}
	}
	if expr := xdev.LUTs[model.LutD]; expr != "" {
		tt, err := boolexpr.Parse(expr)
		if err != nil {
			return xcerr.Wrapf(err, xcerr.BadRegister, "LUT D expression at y%d x%d", y, x)
		}
		lb := lutBases[model.LogX][model.LutD]
		buf.SetLUT64(row, major, lb.minor, v32Index(rowPos, lb.upper), mapLUT(tt, lb.base, lb.flipB0))
	}
	return nil
}
