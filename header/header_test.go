/*
NAME
  header_test.go

DESCRIPTION
  header_test.go contains testing for the ASCII preamble codec found in
  header.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package header

import (
	"strings"
	"testing"

	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/xcerr"
)

func emitFields(t *testing.T, f Fields) []byte {
	t.Helper()
	w := bitio.NewWriter()
	if err := Emit(w, f); err != nil {
		t.Fatalf("did not expect error emitting header: %v", err)
	}
	return w.Bytes()
}

// TestHeaderRoundTrip checks parse(emit(f)) == f.
func TestHeaderRoundTrip(t *testing.T) {
	want := Fields{
		Tool: "xc6bit;UserID=0xFFFFFFFF",
		Part: "6slx9tqg144",
		Date: "2010/05/26",
		Time: "08:00:00",
	}
	got, err := Parse(bitio.NewReader(emitFields(t, want)))
	if err != nil {
		t.Fatalf("did not expect error parsing header: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestBadMagic checks that a corrupted magic prefix is rejected.
func TestBadMagic(t *testing.T) {
	d := emitFields(t, Fields{Tool: "t", Part: "p", Date: "d", Time: "x"})
	d[0] ^= 0xFF
	_, err := Parse(bitio.NewReader(d))
	if !xcerr.Is(err, xcerr.BadMagic) {
		t.Errorf("got %v, want BadMagic", err)
	}
}

// TestBadCode checks that a wrong record code byte is rejected.
func TestBadCode(t *testing.T) {
	d := emitFields(t, Fields{Tool: "t", Part: "p", Date: "d", Time: "x"})
	d[len(Magic)] = 'z'
	_, err := Parse(bitio.NewReader(d))
	if !xcerr.Is(err, xcerr.BadHeader) {
		t.Errorf("got %v, want BadHeader", err)
	}
}

// TestMissingNUL checks that a record without its trailing NUL is
// rejected.
func TestMissingNUL(t *testing.T) {
	d := emitFields(t, Fields{Tool: "t", Part: "p", Date: "d", Time: "x"})
	// The 'a' record body is "t\0"; flip the NUL.
	d[len(Magic)+3+1] = 'u'
	_, err := Parse(bitio.NewReader(d))
	if !xcerr.Is(err, xcerr.BadHeader) {
		t.Errorf("got %v, want BadHeader", err)
	}
}

// TestOverlongString checks the length limit on emission.
func TestOverlongString(t *testing.T) {
	f := Fields{Tool: strings.Repeat("x", MaxHeaderStrLen), Part: "p", Date: "d", Time: "x"}
	if err := Emit(bitio.NewWriter(), f); !xcerr.Is(err, xcerr.BadHeader) {
		t.Errorf("got %v, want BadHeader", err)
	}
}

// TestTruncatedHeader checks short-read detection.
func TestTruncatedHeader(t *testing.T) {
	d := emitFields(t, Fields{Tool: "t", Part: "p", Date: "d", Time: "x"})
	_, err := Parse(bitio.NewReader(d[:len(d)-1]))
	if !xcerr.Is(err, xcerr.ShortRead) {
		t.Errorf("got %v, want ShortRead", err)
	}
}
