/*
NAME
  interp.go

DESCRIPTION
  interp.go drives the register-interpreter state machine over a packet
  sequence: prologue register collection, FDRI payload consumption with
  FAR/MFWR tracking, and the post-FDRI epilogue. Frame bytes land in a
  frame.Buffer allocated once the IDCODE/FLR pair has been confirmed.

AUTHORS
  The openfpga xc6bit contributors.
*/

package register

import (
	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/packet"
	"github.com/openfpga/xc6bit/xcerr"
	"github.com/openfpga/xc6bit/xclog"
)

// State is the interpreter's position in the register protocol.
type State int

const (
	// Prologue collects registers before the first FAR write.
	Prologue State = iota
	// Armed runs from the first FAR write until a GRESTORE or LFRM
	// command ends configuration; FDRI writes are only legal here, and
	// MFWR writes copy frames only here (elsewhere they are logged only).
	Armed
	// Epilogue collects the trailing register writes.
	Epilogue
)

// FAR is the decomposed frame address register.
type FAR struct {
	Block int
	Row   int
	Major int
	Minor int
}

// totalBlock0Words is the 16-bit word count of a full type-0 write: every
// row including its two trailing padding frames.
const totalBlock0Words = frame.NumRows * (frame.FramesPerRow + frame.PaddingPerRow) * (frame.Size / 2)

// bramDataWords is the 16-bit word count of the block-RAM portion of an
// FDRI payload: the block-RAM data frames plus the IOB block.
const bramDataWords = frame.BramDataLen/2 + frame.IOBWords

// Interpreter consumes the packet stream of one bitstream.
type Interpreter struct {
	Actions *Log
	Frames  *frame.Buffer
	AutoCRC uint32

	log      xclog.Log
	state    State
	far      FAR
	mfwSrc   int
	fdriSeen bool
}

// New returns an interpreter reporting diagnostics to log. A nil log
// discards them.
func New(log xclog.Log) *Interpreter {
	if log == nil {
		log = xclog.Nop
	}
	return &Interpreter{Actions: NewLog(), log: log, mfwSrc: -1}
}

// Run consumes packets from r until the byte offset end, populating the
// action log and the frame buffer. On any failure the frame buffer is
// released; no partial state escapes.
func (in *Interpreter) Run(r *bitio.Reader, end int) error {
	err := in.run(r, end)
	if err != nil && in.Frames != nil {
		in.Frames.Release()
		in.Frames = nil
	}
	return err
}

func (in *Interpreter) run(r *bitio.Reader, end int) error {
	for r.Pos() < end {
		p, err := packet.ReadOne(r)
		if err != nil {
			return err
		}
		switch p.Kind {
		case packet.NOOP:
			if err := in.Actions.Append(Action{Reg: RegNoop}); err != nil {
				return err
			}
		case packet.T1Read:
			return xcerr.Newf(xcerr.BadPacket, "read of register %v rejected", Reg(p.Reg))
		case packet.T1Write:
			if err := in.t1Write(p); err != nil {
				return err
			}
		case packet.T2Write:
			if err := in.fdri(r, p); err != nil {
				return err
			}
		}
	}
	if in.Actions.NumRegsBeforeBits == -1 {
		return xcerr.New(xcerr.BadPacket, "stream ended without an FDRI write")
	}
	return nil
}

func wantWords(p packet.Packet, n int) error {
	if len(p.Words) != n {
		return xcerr.Newf(xcerr.BadPacket, "%v write carries %d words, want %d", Reg(p.Reg), len(p.Words), n)
	}
	return nil
}

// oneWordRegs lists the registers carrying a single 16-bit value.
var oneWordRegs = map[Reg]bool{
	CMD: true, COR1: true, COR2: true, CTL: true, FLR: true, MASK: true,
	PWRDN_REG: true, HC_OPT_REG: true, PU_GWE: true, PU_GTS: true,
	CWDT: true, MODE_REG: true, CCLK_FREQ: true, EYE_MASK: true,
	GENERAL1: true, GENERAL2: true, GENERAL3: true, GENERAL4: true,
	GENERAL5: true, SEU_OPT: true,
}

func (in *Interpreter) t1Write(p packet.Packet) error {
	reg := Reg(p.Reg)
	switch reg {
	case CMD:
		if err := wantWords(p, 1); err != nil {
			return err
		}
		return in.cmd(uint32(p.Words[0]))

	case FAR_MAJ:
		if err := wantWords(p, 2); err != nil {
			return err
		}
		return in.farMaj(p.Words[0], p.Words[1])

	case MFWR:
		if err := wantWords(p, 4); err != nil {
			return err
		}
		return in.mfwr(p.Words)

	case IDCODE:
		if err := wantWords(p, 2); err != nil {
			return err
		}
		if in.Actions.IdcodeIdx != -1 {
			return xcerr.New(xcerr.BadRegister, "duplicate IDCODE write")
		}
		v := uint32(p.Words[0])<<16 | uint32(p.Words[1])
		if IDCodeName(v) == "" {
			in.log(xclog.WarnLevel, pkg+"unknown IDCODE", "idcode", v)
		}
		in.Actions.IdcodeIdx = in.Actions.Len()
		return in.Actions.Append(Action{Reg: IDCODE, Val: Int(v)})

	case FLR:
		if err := wantWords(p, 1); err != nil {
			return err
		}
		if in.Actions.FLRIdx != -1 {
			return xcerr.New(xcerr.BadRegister, "duplicate FLR write")
		}
		v := p.Words[0]
		if (int(v)*2)%8 != 0 {
			in.log(xclog.WarnLevel, pkg+"FLR*2 not a multiple of 8", "flr", v)
		}
		in.Actions.FLRIdx = in.Actions.Len()
		return in.Actions.Append(Action{Reg: FLR, Val: Int(v)})

	case CRC, EXP_SIGN:
		if err := wantWords(p, 2); err != nil {
			return err
		}
		v := uint32(p.Words[0])<<16 | uint32(p.Words[1])
		return in.Actions.Append(Action{Reg: reg, Val: Int(v)})
	}

	if oneWordRegs[reg] {
		if err := wantWords(p, 1); err != nil {
			return err
		}
		return in.Actions.Append(Action{Reg: reg, Val: Int(uint32(p.Words[0]))})
	}
	return xcerr.Newf(xcerr.BadRegister, "write to reserved register %v", reg)
}

func (in *Interpreter) cmd(v uint32) error {
	if err := in.Actions.Append(Action{Reg: CMD, Val: Int(v)}); err != nil {
		return err
	}
	if in.state != Armed {
		if CmdName(v) == "" {
			in.log(xclog.WarnLevel, pkg+"unknown CMD code", "cmd", v)
		}
		return nil
	}
	switch v {
	case CmdWCFG:
		in.mfwSrc = -1
	case CmdMFW:
		if in.far.Block != 0 {
			return xcerr.Newf(xcerr.BadFar, "MFW capture in block %d", in.far.Block)
		}
		src, err := frame.FARPos(in.far.Row, in.far.Major, in.far.Minor)
		if err != nil {
			return err
		}
		in.mfwSrc = src
	case CmdGRestore, CmdLFRM:
		if !in.fdriSeen {
			return xcerr.Newf(xcerr.BadPacket, "CMD %s before any FDRI payload", CmdName(v))
		}
		in.state = Epilogue
	default:
		return xcerr.Newf(xcerr.BadPacket, "unexpected CMD %#x during configuration", v)
	}
	return nil
}

func (in *Interpreter) farMaj(maj, min uint16) error {
	if err := in.Actions.Append(Action{Reg: FAR_MAJ, Val: Far{Maj: maj, Min: min}}); err != nil {
		return err
	}
	block := int(maj&0xF000) >> 12
	if block > 7 {
		return xcerr.Newf(xcerr.BadFar, "FAR block %d out of range", block)
	}
	if min&0x3C00 != 0 {
		in.log(xclog.WarnLevel, pkg+"reserved FAR minor bits set", "min", min)
	}
	in.far = FAR{
		Block: block,
		Row:   int(maj&0x0F00) >> 8,
		Major: int(maj & 0x00FF),
		Minor: int(min & 0x03FF),
	}
	if in.state == Prologue {
		if in.far != (FAR{}) {
			return xcerr.Newf(xcerr.BadFar, "first FAR write is %+v, want (0,0,0,0)", in.far)
		}
		in.state = Armed
	}
	return nil
}

func (in *Interpreter) mfwr(words []uint16) error {
	for _, w := range words {
		if w != 0 {
			return xcerr.New(xcerr.BadPacket, "MFWR payload words must be zero")
		}
	}
	if err := in.Actions.Append(Action{Reg: MFWR}); err != nil {
		return err
	}
	if in.state != Armed {
		return nil
	}
	if in.mfwSrc < 0 {
		return xcerr.New(xcerr.BadPacket, "MFWR without a preceding MFW capture")
	}
	if in.far.Block != 0 {
		return xcerr.Newf(xcerr.BadFar, "MFWR to block %d", in.far.Block)
	}
	dst, err := frame.FARPos(in.far.Row, in.far.Major, in.far.Minor)
	if err != nil {
		return err
	}
	// Source and destination may alias; CopyFrame moves through an
	// intermediate buffer.
	in.Frames.CopyFrame(dst, in.mfwSrc)
	return nil
}

func (in *Interpreter) fdri(r *bitio.Reader, p packet.Packet) error {
	if Reg(p.Reg) != FDRI {
		return xcerr.Newf(xcerr.BadRegister, "type-2 write targets %v, want FDRI", Reg(p.Reg))
	}
	if in.state != Armed {
		return xcerr.New(xcerr.BadPacket, "FDRI payload outside configuration")
	}
	if in.far != (FAR{}) {
		return xcerr.Newf(xcerr.BadFar, "FDRI block begins at %+v, want (0,0,0,0)", in.far)
	}
	if int(p.WordCount)*2 < frame.Size {
		return xcerr.Newf(xcerr.BadPacket, "FDRI payload of %d words below one frame", p.WordCount)
	}

	if !in.fdriSeen {
		if in.Actions.IdcodeIdx == -1 || in.Actions.FLRIdx == -1 {
			return xcerr.New(xcerr.BadPacket, "FDRI before IDCODE and FLR writes")
		}
		idcode := in.Actions.IDCode()
		if idcode != XC6SLX4 && idcode != XC6SLX9 {
			return xcerr.Newf(xcerr.UnsupportedDevice, "cannot decode frames for IDCODE %#x (%s)", idcode, IDCodeName(idcode))
		}
		if in.Actions.FLR() != FLRValue {
			return xcerr.Newf(xcerr.BadRegister, "FLR %d, want %d", in.Actions.FLR(), FLRValue)
		}
		if err := in.Actions.Append(Action{Reg: FDRI, Val: Int(p.WordCount)}); err != nil {
			return err
		}
		in.Actions.NumRegsBeforeBits = in.Actions.Len()
		in.Frames = frame.NewBuffer()
	}
	in.fdriSeen = true

	words := int(p.WordCount)
	if err := in.copyFrames(p.Payload, words); err != nil {
		return err
	}

	crc, err := r.ReadU32BE()
	if err != nil {
		return xcerr.Wrap(err, xcerr.ShortRead, "reading auto-CRC")
	}
	in.AutoCRC = crc
	return nil
}

// copyFrames lands an FDRI payload in the frame buffer: type-0 frames
// with per-row padding, then the block-RAM data and IOB block.
func (in *Interpreter) copyFrames(d []byte, words int) error {
	block0 := 0
	if in.far.Block == 0 {
		off, err := frame.FARPos(in.far.Row, in.far.Major, in.far.Minor)
		if err != nil {
			return err
		}
		if in.far.Row == 0 && in.far.Major == 0 && in.far.Minor == 0 && words > totalBlock0Words {
			block0 = totalBlock0Words
		} else {
			block0 = words
			if block0%(frame.Size/2) != 0 {
				return xcerr.Newf(xcerr.BadPacket, "type-0 payload of %d words not a multiple of %d", block0, frame.Size/2)
			}
		}

		buf := in.Frames.Bytes()
		padding := 0
		numFrames := block0 / (frame.Size / 2)
		wireRow := frame.FramesPerRow + frame.PaddingPerRow
		for i := 0; i < numFrames; i++ {
			src := d[i*frame.Size : (i+1)*frame.Size]
			if i > 0 && i+1 == numFrames && allFF(src) {
				// Trailing all-1 frame is block padding.
				break
			}
			if in.far.Major == 0 && in.far.Minor == 0 && i%wireRow == frame.FramesPerRow {
				if (i+2)*frame.Size > len(d) {
					return xcerr.Newf(xcerr.ShortRead, "payload ends inside row padding at frame %d", i)
				}
				if !allFF(d[i*frame.Size : (i+2)*frame.Size]) {
					return xcerr.Newf(xcerr.BadPacket, "row padding frames at frame %d not all-1", i)
				}
				i++
				padding += frame.PaddingPerRow
				continue
			}
			copy(buf[off+(i-padding)*frame.Size:], src)
		}
	}

	rem := words - block0
	if rem > 0 {
		if rem != bramDataWords+1 {
			return xcerr.Newf(xcerr.BadPacket, "block-RAM portion of %d words, want %d", rem, bramDataWords+1)
		}
		copy(in.Frames.Bytes()[frame.BramDataStart:], d[block0*2:(block0+bramDataWords)*2])
		if d[(block0+bramDataWords)*2] != 0 || d[(block0+bramDataWords)*2+1] != 0 {
			return xcerr.New(xcerr.BadPacket, "final padding word not zero")
		}
	}
	return nil
}

func allFF(b []byte) bool {
	for _, v := range b {
		if v != 0xFF {
			return false
		}
	}
	return true
}

const pkg = "register: "
