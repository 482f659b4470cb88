/*
NAME
  emit.go

DESCRIPTION
  emit.go serializes the fixed register script around an encoded frame
  payload: the prologue that brings the device into configuration, the
  Type-2 FDRI write carrying every frame with its per-row padding, and the
  epilogue that restores, starts and desyncs. The script is fixed; only
  the frame payload varies.

AUTHORS
  The openfpga xc6bit contributors.
*/

package register

import (
	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/packet"
	"github.com/openfpga/xc6bit/xcerr"
)

func noops(n int) []Action {
	acts := make([]Action, n)
	for i := range acts {
		acts[i] = Action{Reg: RegNoop}
	}
	return acts
}

// PrologueScript returns the register actions written before the FDRI
// payload.
func PrologueScript() []Action {
	acts := []Action{
		{CMD, Int(CmdRCRC)},
		{RegNoop, nil},
		{FLR, Int(FLRValue)},
		{COR1, Int(COR1Def | COR1CRCBypass)},
		{COR2, Int(COR2Def)},
		{IDCODE, Int(XC6SLX9)},
		{MASK, Int(MaskDef)},
		{CTL, Int(CtlDef)},
	}
	acts = append(acts, noops(17)...)
	acts = append(acts,
		Action{CCLK_FREQ, Int(CclkFreqDef)},
		Action{PWRDN_REG, Int(PwrdnRegDef)},
		Action{EYE_MASK, Int(EyeMaskDef)},
		Action{HC_OPT_REG, Int(HcOptRegDef)},
		Action{CWDT, Int(CwdtDef)},
		Action{PU_GWE, Int(PuGweDef)},
		Action{PU_GTS, Int(PuGtsDef)},
		Action{MODE_REG, Int(ModeRegDef)},
		Action{GENERAL1, Int(0)},
		Action{GENERAL2, Int(0)},
		Action{GENERAL3, Int(0)},
		Action{GENERAL4, Int(0)},
		Action{GENERAL5, Int(0)},
		Action{SEU_OPT, Int(SeuOptDef)},
		Action{EXP_SIGN, Int(ExpSignDef)},
	)
	acts = append(acts, noops(2)...)
	acts = append(acts,
		Action{FAR_MAJ, Far{0, 0}},
		Action{CMD, Int(CmdWCFG)},
	)
	return acts
}

// EpilogueScript returns the register actions written after the FDRI
// payload.
func EpilogueScript() []Action {
	acts := noops(24)
	acts = append(acts,
		Action{CMD, Int(CmdGRestore)},
		Action{CMD, Int(CmdLFRM)},
	)
	acts = append(acts, noops(4)...)
	acts = append(acts,
		Action{CMD, Int(CmdGRestore)},
		Action{CMD, Int(CmdStart)},
		Action{MASK, Int(MaskDef | MaskSecurity)},
		Action{CTL, Int(CtlDef)},
		Action{CRC, Int(DefaultAutoCRC)},
		Action{CMD, Int(CmdDesync)},
	)
	acts = append(acts, noops(14)...)
	return acts
}

// WriteAction serializes one register action as a packet.
func WriteAction(w *bitio.Writer, a Action) error {
	switch a.Reg {
	case RegNoop:
		return packet.WriteOne(w, packet.Packet{Kind: packet.NOOP})

	case MFWR:
		return packet.WriteOne(w, packet.Packet{
			Kind: packet.T1Write, Reg: int(MFWR), Words: []uint16{0, 0, 0, 0},
		})

	case FAR_MAJ:
		far, ok := a.Val.(Far)
		if !ok {
			return xcerr.New(xcerr.InternalInvariant, "FAR_MAJ action without Far value")
		}
		return packet.WriteOne(w, packet.Packet{
			Kind: packet.T1Write, Reg: int(FAR_MAJ), Words: []uint16{far.Maj, far.Min},
		})

	case CRC, IDCODE, EXP_SIGN:
		v, ok := a.Val.(Int)
		if !ok {
			return xcerr.Newf(xcerr.InternalInvariant, "%v action without Int value", a.Reg)
		}
		return packet.WriteOne(w, packet.Packet{
			Kind: packet.T1Write, Reg: int(a.Reg),
			Words: []uint16{uint16(uint32(v) >> 16), uint16(v)},
		})
	}

	if !oneWordRegs[a.Reg] {
		return xcerr.Newf(xcerr.BadRegister, "cannot emit register %v", a.Reg)
	}
	v, ok := a.Val.(Int)
	if !ok {
		return xcerr.Newf(xcerr.InternalInvariant, "%v action without Int value", a.Reg)
	}
	if uint32(v) > 0xFFFF {
		return xcerr.Newf(xcerr.BadRegister, "%v value %#x exceeds 16 bits", a.Reg, uint32(v))
	}
	return packet.WriteOne(w, packet.Packet{
		Kind: packet.T1Write, Reg: int(a.Reg), Words: []uint16{uint16(v)},
	})
}

// FDRIWordCount is the 16-bit word count of a full-device FDRI payload:
// every row with its padding frames, the block-RAM data, the IOB block,
// and the final zero padding word.
const FDRIWordCount = totalBlock0Words + bramDataWords + 1

// EmitFDRI writes the Type-2 FDRI packet carrying the whole frame buffer,
// followed by the auto-CRC trailer.
func EmitFDRI(w *bitio.Writer, buf *frame.Buffer, autoCRC uint32) error {
	payload := make([]byte, 0, FDRIWordCount*2)
	d := buf.Bytes()

	var padding [frame.PaddingPerRow * frame.Size]byte
	for i := range padding {
		padding[i] = 0xFF
	}
	for row := 0; row < frame.NumRows; row++ {
		start := row * frame.FramesPerRow * frame.Size
		payload = append(payload, d[start:start+frame.FramesPerRow*frame.Size]...)
		payload = append(payload, padding[:]...)
	}
	payload = append(payload, d[frame.BramDataStart:frame.BramDataStart+frame.BramDataLen]...)
	payload = append(payload, d[frame.IOBDataStart:frame.IOBDataStart+frame.IOBDataLen]...)
	payload = append(payload, 0, 0)

	err := packet.WriteOne(w, packet.Packet{
		Kind: packet.T2Write, Reg: int(FDRI),
		WordCount: uint32(len(payload) / 2), Payload: payload,
	})
	if err != nil {
		return err
	}
	w.WriteU32BE(autoCRC)
	return nil
}
