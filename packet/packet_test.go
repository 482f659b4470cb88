/*
NAME
  packet_test.go

DESCRIPTION
  packet_test.go contains testing for the Type-1/Type-2 packet protocol
  found in packet.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package packet

import (
	"bytes"
	"testing"

	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/xcerr"
)

// TestPacketRoundTrip checks that packets survive write-then-read.
func TestPacketRoundTrip(t *testing.T) {
	tests := []Packet{
		{Kind: NOOP},
		{Kind: T1Write, Reg: 5, Words: []uint16{0x0007}},
		{Kind: T1Write, Reg: 1, Words: []uint16{0x1234, 0x5678}},
		{Kind: T2Write, Reg: 3, WordCount: 3, Payload: []byte{1, 2, 3, 4, 5, 6}},
	}
	w := bitio.NewWriter()
	for _, p := range tests {
		if err := WriteOne(w, p); err != nil {
			t.Fatalf("did not expect error writing packet: %v", err)
		}
	}
	r := bitio.NewReader(w.Bytes())
	got, err := ReadAll(r, len(w.Bytes()))
	if err != nil {
		t.Fatalf("did not expect error reading packets: %v", err)
	}
	if len(got) != len(tests) {
		t.Fatalf("got %d packets, want %d", len(got), len(tests))
	}
	for i, p := range got {
		want := tests[i]
		if p.Kind != want.Kind || p.Reg != want.Reg && want.Kind != NOOP && want.Kind != T2Write {
			t.Errorf("packet %d: got kind %v reg %d, want kind %v reg %d", i, p.Kind, p.Reg, want.Kind, want.Reg)
		}
		if want.Kind == T2Write && !bytes.Equal(p.Payload, want.Payload) {
			t.Errorf("packet %d: payload mismatch", i)
		}
	}
}

// TestNoopEncoding checks the canonical noop header value.
func TestNoopEncoding(t *testing.T) {
	w := bitio.NewWriter()
	if err := WriteOne(w, Packet{Kind: NOOP}); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !bytes.Equal(w.Bytes(), []byte{0x20, 0x00}) {
		t.Errorf("noop encoded as % X, want 20 00", w.Bytes())
	}
}

// TestBadPackets checks rejection of malformed headers.
func TestBadPackets(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"reserved opcode", []byte{0x38, 0x00}},
		{"bad type", []byte{0x60, 0x00}},
		{"noop with low bits", []byte{0x20, 0x01}},
		{"type-2 nonzero word count", []byte{0x50, 0x61, 0, 0, 0, 0}},
		{"type-2 read", []byte{0x48, 0x60, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		_, err := ReadOne(bitio.NewReader(tt.data))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !xcerr.Is(err, xcerr.BadPacket) {
			t.Errorf("%s: got %v, want BadPacket", tt.name, err)
		}
	}
}

// TestPreambleRoundTrip checks the 'e' tag, length field, filler and sync
// word handling, including the length patch.
func TestPreambleRoundTrip(t *testing.T) {
	w := bitio.NewWriter()
	lenOff := WritePreamble(w)
	if err := WriteOne(w, Packet{Kind: NOOP}); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	w.PatchU32BE(lenOff, uint32(w.Len()-lenOff-4))

	r := bitio.NewReader(w.Bytes())
	end, err := ReadPreamble(r)
	if err != nil {
		t.Fatalf("did not expect error reading preamble: %v", err)
	}
	if end != w.Len() {
		t.Errorf("announced end %d, want %d", end, w.Len())
	}
	p, err := ReadOne(r)
	if err != nil || p.Kind != NOOP {
		t.Errorf("expected a noop after the sync word, got %v, %v", p, err)
	}
}

// TestPreambleBadSync checks that a wrong sync word is rejected.
func TestPreambleBadSync(t *testing.T) {
	data := append([]byte{'e', 0, 0, 0, 8, 0xFF, 0xFF}, 0xAA, 0x99, 0x55, 0x67)
	_, err := ReadPreamble(bitio.NewReader(data))
	if err == nil {
		t.Errorf("expected error for bad sync word")
	}
}

// TestT1Overflow checks the 31-word limit on Type-1 packets.
func TestT1Overflow(t *testing.T) {
	err := WriteOne(bitio.NewWriter(), Packet{Kind: T1Write, Reg: 5, Words: make([]uint16, 32)})
	if !xcerr.Is(err, xcerr.PayloadOverflow) {
		t.Errorf("got %v, want PayloadOverflow", err)
	}
}
