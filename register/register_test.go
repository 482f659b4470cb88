/*
NAME
  register_test.go

DESCRIPTION
  register_test.go contains testing for the register vocabulary, the
  action log, the emission script and the interpreter found in this
  package.

AUTHORS
  The openfpga xc6bit contributors.
*/

package register

import (
	"bytes"
	"testing"

	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/packet"
	"github.com/openfpga/xc6bit/xcerr"
)

// TestRegValues checks the wire encodings of a few registers against the
// device documentation values.
func TestRegValues(t *testing.T) {
	tests := []struct {
		reg  Reg
		want int
	}{
		{CRC, 0}, {FAR_MAJ, 1}, {FDRI, 3}, {CMD, 5}, {CTL, 6},
		{MASK, 7}, {COR1, 10}, {FLR, 13}, {IDCODE, 14}, {CSBO, 18},
		{GENERAL1, 19}, {MODE_REG, 24}, {MFWR, 27}, {CCLK_FREQ, 28},
		{EYE_MASK, 33}, {CBC_REG, 34},
	}
	for _, tt := range tests {
		if int(tt.reg) != tt.want {
			t.Errorf("%v encodes as %d, want %d", tt.reg, int(tt.reg), tt.want)
		}
	}
}

// TestLogOverflow checks the fixed action capacity.
func TestLogOverflow(t *testing.T) {
	l := NewLog()
	for i := 0; i < MaxRegActions; i++ {
		if err := l.Append(Action{Reg: RegNoop}); err != nil {
			t.Fatalf("did not expect error at action %d: %v", i, err)
		}
	}
	if err := l.Append(Action{Reg: RegNoop}); !xcerr.Is(err, xcerr.PayloadOverflow) {
		t.Errorf("got %v, want PayloadOverflow", err)
	}
}

// TestScriptShape checks the fixed prologue/epilogue against the emission
// rules: noop runs, ordering, and the CRC sentinel.
func TestScriptShape(t *testing.T) {
	pro := PrologueScript()
	if pro[0].Reg != CMD || pro[0].Val != Int(CmdRCRC) {
		t.Errorf("prologue does not start with CMD RCRC")
	}
	noops := 0
	for _, a := range pro {
		if a.Reg == RegNoop {
			noops++
		}
	}
	if noops != 1+17+2 {
		t.Errorf("prologue carries %d noops, want 20", noops)
	}
	last := pro[len(pro)-1]
	if last.Reg != CMD || last.Val != Int(CmdWCFG) {
		t.Errorf("prologue does not end with CMD WCFG")
	}
	if far := pro[len(pro)-2]; far.Reg != FAR_MAJ || far.Val != (Far{0, 0}) {
		t.Errorf("prologue FAR is %+v, want FAR_MAJ (0,0)", far)
	}

	epi := EpilogueScript()
	noops = 0
	crc := false
	for _, a := range epi {
		if a.Reg == RegNoop {
			noops++
		}
		if a.Reg == CRC {
			crc = true
			if a.Val != Int(DefaultAutoCRC) {
				t.Errorf("epilogue CRC %v, want the auto-CRC sentinel", a.Val)
			}
		}
	}
	if noops != 24+4+14 {
		t.Errorf("epilogue carries %d noops, want 42", noops)
	}
	if !crc {
		t.Errorf("epilogue carries no CRC write")
	}
}

// TestWriteActionEncodings checks a few known packet encodings.
func TestWriteActionEncodings(t *testing.T) {
	tests := []struct {
		a    Action
		want []byte
	}{
		{Action{Reg: RegNoop}, []byte{0x20, 0x00}},
		// Type 1 write, reg 5 (CMD), 1 word: 001 10 000101 00001.
		{Action{CMD, Int(CmdRCRC)}, []byte{0x30, 0xA1, 0x00, 0x07}},
		// FAR_MAJ carries two words.
		{Action{FAR_MAJ, Far{0x0102, 0x0003}}, []byte{0x30, 0x22, 0x01, 0x02, 0x00, 0x03}},
		// MFWR carries four zero words.
		{Action{Reg: MFWR}, []byte{0x33, 0x64, 0, 0, 0, 0, 0, 0, 0, 0}},
		// IDCODE carries a 32-bit value.
		{Action{IDCODE, Int(XC6SLX9)}, []byte{0x31, 0xC2, 0x04, 0x00, 0x10, 0x93}},
	}
	for _, tt := range tests {
		w := bitio.NewWriter()
		if err := WriteAction(w, tt.a); err != nil {
			t.Fatalf("%v: did not expect error: %v", tt.a.Reg, err)
		}
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("%v: got % X, want % X", tt.a.Reg, w.Bytes(), tt.want)
		}
	}
}

// runStream feeds a hand-built packet stream through an interpreter.
func runStream(t *testing.T, build func(w *bitio.Writer)) (*Interpreter, error) {
	t.Helper()
	w := bitio.NewWriter()
	build(w)
	in := New(nil)
	r := bitio.NewReader(w.Bytes())
	return in, in.Run(r, len(w.Bytes()))
}

func writeScript(t *testing.T, w *bitio.Writer, acts []Action) {
	t.Helper()
	for _, a := range acts {
		if err := WriteAction(w, a); err != nil {
			t.Fatalf("did not expect error writing action: %v", err)
		}
	}
}

// TestInterpreterRoundTrip checks that the emitter's own script parses
// cleanly and reproduces the frame payload.
func TestInterpreterRoundTrip(t *testing.T) {
	buf := frame.NewBuffer()
	buf.SetBit(0, 0, 3, 66)
	buf.SetBit(2, 0, 3, 66)
	buf.Bytes()[frame.BramDataStart] = 0xA5
	buf.Bytes()[frame.IOBDataStart] = 0x5A

	in, err := runStream(t, func(w *bitio.Writer) {
		writeScript(t, w, PrologueScript())
		if err := EmitFDRI(w, buf, DefaultAutoCRC); err != nil {
			t.Fatalf("did not expect error emitting FDRI: %v", err)
		}
		writeScript(t, w, EpilogueScript())
	})
	if err != nil {
		t.Fatalf("did not expect error interpreting stream: %v", err)
	}

	if in.Actions.NumRegsBeforeBits == -1 {
		t.Fatalf("prologue marker unset after parse")
	}
	if in.Actions.IDCode() != XC6SLX9 {
		t.Errorf("IDCODE %#x, want XC6SLX9", in.Actions.IDCode())
	}
	if in.Actions.FLR() != FLRValue {
		t.Errorf("FLR %d, want %d", in.Actions.FLR(), FLRValue)
	}
	if in.AutoCRC != DefaultAutoCRC {
		t.Errorf("auto-CRC %#x, want %#x", in.AutoCRC, uint32(DefaultAutoCRC))
	}
	if !bytes.Equal(in.Frames.Bytes(), buf.Bytes()) {
		t.Errorf("frame buffer did not round-trip")
	}

	// Packet validity over the whole log: the FDRI word count matches
	// the payload the interpreter consumed.
	fdri := in.Actions.At(in.Actions.NumRegsBeforeBits - 1)
	if fdri.Reg != FDRI || fdri.Val != Int(FDRIWordCount) {
		t.Errorf("logged FDRI %v %v, want %d words", fdri.Reg, fdri.Val, FDRIWordCount)
	}
}

// TestInterpreterMFWR checks the multi-frame-write blit, including the
// aliasing case where source and destination coincide.
func TestInterpreterMFWR(t *testing.T) {
	buf := frame.NewBuffer()
	src, err := frame.FARPos(0, 0, 0)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	for i := 0; i < frame.Size; i++ {
		buf.Bytes()[src+i] = byte(i + 1)
	}

	in, err := runStream(t, func(w *bitio.Writer) {
		writeScript(t, w, PrologueScript())
		if err := EmitFDRI(w, buf, DefaultAutoCRC); err != nil {
			t.Fatalf("did not expect error emitting FDRI: %v", err)
		}
		writeScript(t, w, []Action{
			{FAR_MAJ, Far{0, 0}},
			{CMD, Int(CmdMFW)},
			{Reg: MFWR}, // self-blit: source equals destination
			{FAR_MAJ, Far{0, 1}},
			{Reg: MFWR},
		})
		writeScript(t, w, EpilogueScript())
	})
	if err != nil {
		t.Fatalf("did not expect error interpreting stream: %v", err)
	}

	dst, err := frame.FARPos(0, 0, 1)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	got := in.Frames.Bytes()
	for i := 0; i < frame.Size; i++ {
		if got[src+i] != byte(i+1) {
			t.Fatalf("self-blit corrupted source byte %d", i)
		}
		if got[dst+i] != byte(i+1) {
			t.Fatalf("blit missed destination byte %d", i)
		}
	}
}

// TestInterpreterRejections checks the fatal parse paths.
func TestInterpreterRejections(t *testing.T) {
	tests := []struct {
		name  string
		kind  xcerr.Kind
		build func(w *bitio.Writer)
	}{
		{"read opcode", xcerr.BadPacket, func(w *bitio.Writer) {
			if err := packet.WriteOne(w, packet.Packet{Kind: packet.T1Read, Reg: int(CMD), Words: []uint16{0}}); err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
		}},
		{"reserved register", xcerr.BadRegister, func(w *bitio.Writer) {
			if err := packet.WriteOne(w, packet.Packet{Kind: packet.T1Write, Reg: int(LOUT), Words: []uint16{0}}); err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
		}},
		{"FDRI before FAR", xcerr.BadPacket, func(w *bitio.Writer) {
			writeScript(t, w, []Action{{IDCODE, Int(XC6SLX9)}, {FLR, Int(FLRValue)}})
			if err := EmitFDRI(w, frame.NewBuffer(), DefaultAutoCRC); err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
		}},
		{"nonzero first FAR", xcerr.BadFar, func(w *bitio.Writer) {
			writeScript(t, w, []Action{{FAR_MAJ, Far{0x0001, 0}}})
		}},
		{"duplicate IDCODE", xcerr.BadRegister, func(w *bitio.Writer) {
			writeScript(t, w, []Action{{IDCODE, Int(XC6SLX9)}, {IDCODE, Int(XC6SLX9)}})
		}},
		{"wrong FLR", xcerr.BadRegister, func(w *bitio.Writer) {
			writeScript(t, w, []Action{
				{IDCODE, Int(XC6SLX9)}, {FLR, Int(100)}, {FAR_MAJ, Far{0, 0}},
			})
			if err := EmitFDRI(w, frame.NewBuffer(), DefaultAutoCRC); err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
		}},
		{"unsupported idcode", xcerr.UnsupportedDevice, func(w *bitio.Writer) {
			writeScript(t, w, []Action{
				{IDCODE, Int(XC6SLX150)}, {FLR, Int(FLRValue)}, {FAR_MAJ, Far{0, 0}},
			})
			if err := EmitFDRI(w, frame.NewBuffer(), DefaultAutoCRC); err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
		}},
		{"no FDRI at all", xcerr.BadPacket, func(w *bitio.Writer) {
			writeScript(t, w, []Action{{CMD, Int(CmdRCRC)}})
		}},
	}
	for _, tt := range tests {
		in, err := runStream(t, tt.build)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !xcerr.Is(err, tt.kind) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.kind)
		}
		if in.Frames != nil {
			t.Errorf("%s: frame buffer leaked on failure", tt.name)
		}
	}
}
