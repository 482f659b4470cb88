/*
NAME
  logic_test.go

DESCRIPTION
  logic_test.go contains testing for the LUT addressing and permutation
  handling found in logic.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package logic

import (
	"math/rand"
	"testing"

	"github.com/openfpga/xc6bit/boolexpr"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/xclog"
)

// TestMapLUTInvolution checks that every (sub-device, LUT) permutation is
// its own inverse, so frame-to-expression-to-frame conversion cannot
// drift.
func TestMapLUTInvolution(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for sub, bases := range lutBases {
		for lut, lb := range bases {
			for i := 0; i < 20; i++ {
				want := r.Uint64()
				got := mapLUT(mapLUT(want, lb.base, lb.flipB0), lb.base, lb.flipB0)
				if got != want {
					t.Fatalf("%v LUT %v: %#x maps back to %#x", sub, model.LUT(lut), want, got)
				}
			}
		}
	}
}

// TestMapLUTPermutes checks that the permutation preserves popcount.
func TestMapLUTPermutes(t *testing.T) {
	for _, lb := range lutBases[model.LogM] {
		got := mapLUT(1, lb.base, lb.flipB0)
		if got == 0 || got&(got-1) != 0 {
			t.Errorf("single entry mapped to %#x", got)
		}
	}
}

// TestXDevRoundTrip checks emit-then-extract of an X device LUT D through
// a frame buffer.
func TestXDevRoundTrip(t *testing.T) {
	const expr = "A1*A2+~A3"
	const y, x = 5, 3 // an XM column tile

	m := model.New()
	cfg, err := m.Logic(y, x, model.LogX)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	cfg.Instantiated = true
	cfg.LUTs[model.LutD] = expr

	buf := frame.NewBuffer()
	if err := Emit(m, buf, xclog.Nop); err != nil {
		t.Fatalf("did not expect error emitting: %v", err)
	}

	// The instantiation sentinel must land at minor 26.
	row, major, rowPos, err := tilePos(y, x)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	byteOff, err := frame.PosByteOff(rowPos + posUnfold(rowPos))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if got := buf.GetU64(frame.Off(row, major, 26) + byteOff); got != XDevSentinel {
		t.Errorf("X header %#x, want %#x", got, uint64(XDevSentinel))
	}

	m2 := model.New()
	if err := Extract(m2, buf, xclog.Nop); err != nil {
		t.Fatalf("did not expect error extracting: %v", err)
	}
	got, err := m2.Logic(y, x, model.LogX)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !got.Instantiated {
		t.Fatalf("X device not recovered")
	}
	wantTT, err := boolexpr.Parse(expr)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	gotTT, err := boolexpr.Parse(got.LUTs[model.LutD])
	if err != nil {
		t.Fatalf("did not expect error parsing %q: %v", got.LUTs[model.LutD], err)
	}
	if gotTT != wantTT {
		t.Errorf("LUT D decoded to %q (%#x), want equivalent of %q (%#x)",
			got.LUTs[model.LutD], gotTT, expr, wantTT)
	}

	// Extraction must have consumed every bit it decoded.
	for _, b := range buf.Bytes() {
		if b != 0 {
			t.Errorf("bits left set after extraction")
			break
		}
	}
}

// TestMDevExtract checks decoding of an M device LUT planted directly in
// the frame bits.
func TestMDevExtract(t *testing.T) {
	const y, x = 2, 9 // an XM column tile in the top row band
	row, major, rowPos, err := tilePos(y, x)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	tt, err := boolexpr.Parse("A2*~A5")
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	lb := lutBases[model.LogM][model.LutA]
	buf := frame.NewBuffer()
	buf.SetLUT64(row, major, lb.minor, v32Index(rowPos, lb.upper), mapLUT(tt, lb.base, lb.flipB0))

	m := model.New()
	if err := Extract(m, buf, xclog.Nop); err != nil {
		t.Fatalf("did not expect error extracting: %v", err)
	}
	cfg, err := m.Logic(y, x, model.LogM)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	gotTT, err := boolexpr.Parse(cfg.LUTs[model.LutA])
	if err != nil {
		t.Fatalf("did not expect error parsing %q: %v", cfg.LUTs[model.LutA], err)
	}
	if gotTT != tt {
		t.Errorf("LUT A decoded to %#x, want %#x", gotTT, tt)
	}
}

// TestBadXHeader checks that a corrupted sentinel skips the tile with a
// diagnostic instead of failing.
func TestBadXHeader(t *testing.T) {
	const y, x = 5, 3
	row, major, rowPos, err := tilePos(y, x)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	byteOff, err := frame.PosByteOff(rowPos + posUnfold(rowPos))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	buf := frame.NewBuffer()
	buf.SetU64(frame.Off(row, major, 26)+byteOff, XDevSentinel|1)

	warned := false
	log := func(level int8, msg string, params ...interface{}) {
		if level >= xclog.WarnLevel {
			warned = true
		}
	}
	m := model.New()
	if err := Extract(m, buf, log); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !warned {
		t.Errorf("expected a diagnostic for the bad header")
	}
	cfg, err := m.Logic(y, x, model.LogX)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if cfg.Instantiated {
		t.Errorf("tile with bad header extracted anyway")
	}
}
