/*
NAME
  modelio.go

DESCRIPTION
  modelio.go converts between frame buffers and device models: WriteModel
  populates a buffer from a model (default bits, then switches, IOBs and
  logic), ExtractModel recovers a model from a populated buffer after
  asserting and clearing the default bits, and finishes with a residual
  scan reporting any bit no extractor accounted for.

AUTHORS
  The openfpga xc6bit contributors.
*/

package bitstream

import (
	"github.com/openfpga/xc6bit/codec/iob"
	"github.com/openfpga/xc6bit/codec/logic"
	"github.com/openfpga/xc6bit/codec/route"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/xcerr"
	"github.com/openfpga/xc6bit/xclog"
)

type bitPos struct {
	row, major, minor, bit int
}

// defaultBits are set in every valid bitstream of this family.
var defaultBits = []bitPos{
	{0, 0, 3, 66},
	{0, 1, 23, 1034},
	{0, 1, 23, 1035},
	{0, 1, 23, 1039},
	{2, 0, 3, 66},
}

// WriteModel encodes a device model into the frame buffer: the default
// bits first, then switches, IOBs and logic.
func WriteModel(buf *frame.Buffer, m *model.Model, log xclog.Log) error {
	if log == nil {
		log = xclog.Nop
	}
	for _, p := range defaultBits {
		buf.SetBit(p.row, p.major, p.minor, p.bit)
	}
	if err := route.Emit(m, buf, log); err != nil {
		return err
	}
	if err := iob.Emit(m, buf, log); err != nil {
		return err
	}
	return logic.Emit(m, buf, log)
}

// ExtractModel recovers device configuration from a populated frame
// buffer. The five default bits must be present; they are cleared before
// extraction, and every extractor clears the bits it consumes so the
// final residual scan can report anything left over.
func ExtractModel(cfg *Config, m *model.Model, log xclog.Log) error {
	if log == nil {
		log = xclog.Nop
	}
	if cfg.Frames == nil {
		return xcerr.New(xcerr.InternalInvariant, "config has no frame buffer")
	}
	buf := cfg.Frames

	for _, p := range defaultBits {
		if !buf.Bit(p.row, p.major, p.minor, p.bit) {
			return xcerr.Newf(xcerr.DefaultBitsMissing, "default bit r%d ma%d mi%d b%d not set", p.row, p.major, p.minor, p.bit)
		}
	}
	for _, p := range defaultBits {
		buf.ClearBit(p.row, p.major, p.minor, p.bit)
	}

	if err := iob.Extract(m, buf, log); err != nil {
		return err
	}
	if err := logic.Extract(m, buf, log); err != nil {
		return err
	}
	if err := route.Extract(m, buf, log); err != nil {
		return err
	}

	if n := residualBits(buf); n > 0 {
		log(xclog.WarnLevel, pkg+"bits left set after extraction", "count", n)
	}
	return nil
}

// residualBits counts the bits still set anywhere in the buffer.
func residualBits(buf *frame.Buffer) int {
	n := 0
	for _, b := range buf.Bytes() {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
