/*
NAME
  bitio_test.go

DESCRIPTION
  bitio_test.go contains testing for the bit-level cursors found in
  reader.go and writer.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package bitio

import (
	"bytes"
	"io"
	"testing"
)

// TestReadBits checks MSB-first field extraction across byte boundaries.
func TestReadBits(t *testing.T) {
	r := NewReader([]byte{0b10110100, 0b01100001})
	tests := []struct {
		n    int
		want uint64
	}{
		{3, 0b101},
		{5, 0b10100},
		{4, 0b0110},
		{4, 0b0001},
	}
	for i, tt := range tests {
		got, err := r.ReadBits(tt.n)
		if err != nil {
			t.Fatalf("read %d: did not expect error: %v", i, err)
		}
		if got != tt.want {
			t.Errorf("read %d: got %#b, want %#b", i, got, tt.want)
		}
	}
	if _, err := r.ReadBits(1); err != io.ErrUnexpectedEOF {
		t.Errorf("expected EOF after consuming all bits, got %v", err)
	}
}

// TestWriteReadRoundTrip checks that Writer and Reader agree on packing.
func TestWriteReadRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0x5, 3)
	w.WriteBits(0x1F, 5)
	w.WriteU16BE(0xBEEF)
	w.WriteU32BE(0xAA995566)
	w.WriteBytes([]byte{1, 2, 3})

	r := NewReader(w.Bytes())
	if v, _ := r.ReadBits(3); v != 0x5 {
		t.Errorf("3-bit field: got %#x", v)
	}
	if v, _ := r.ReadBits(5); v != 0x1F {
		t.Errorf("5-bit field: got %#x", v)
	}
	if v, _ := r.ReadU16BE(); v != 0xBEEF {
		t.Errorf("u16: got %#x", v)
	}
	if v, _ := r.ReadU32BE(); v != 0xAA995566 {
		t.Errorf("u32: got %#x", v)
	}
	b, err := r.ReadBytes(3)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("bytes: got %v, %v", b, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining %d, want 0", r.Remaining())
	}
}

// TestPeekBits checks that peeking does not advance the cursor.
func TestPeekBits(t *testing.T) {
	r := NewReader([]byte{0xA5})
	v, err := r.PeekBits(4)
	if err != nil || v != 0xA {
		t.Fatalf("peek: got %#x, %v", v, err)
	}
	v, err = r.ReadBits(8)
	if err != nil || v != 0xA5 {
		t.Errorf("read after peek: got %#x, %v", v, err)
	}
}

// TestPatchU32BE checks in-place length patching.
func TestPatchU32BE(t *testing.T) {
	w := NewWriter()
	w.WriteByte('e')
	off := w.Len()
	w.WriteU32BE(0)
	w.WriteBytes([]byte{9, 9})
	w.PatchU32BE(off, 0x01020304)
	want := []byte{'e', 1, 2, 3, 4, 9, 9}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got % X, want % X", w.Bytes(), want)
	}
}

// TestSeek checks cursor repositioning.
func TestSeek(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadBytes(2); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	r.Seek(0)
	b, err := r.ReadByte()
	if err != nil || b != 1 {
		t.Errorf("after seek: got %d, %v", b, err)
	}
}
