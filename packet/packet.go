/*
NAME
  packet.go

DESCRIPTION
  packet.go implements PacketStream: the Type-1/Type-2 configuration-register
  packet protocol that sits between the ASCII header and the register
  semantics layer. It understands the packet header bit-fields (type,
  opcode, register index, word count) but nothing about what any particular
  register means — that's RegisterInterpreter's job.

  The header bit-field layout and the two-pass "write, then seek back and
  patch a length field" emission shape are both taken from
  protocol/rtmp/packet.go and protocol/rtmp/rtmp.go, which decode/encode RTMP
  chunk headers the same way: a few packed bit-fields up front, followed by
  a variable-length payload whose size was itself encoded in the header.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package packet implements the Type-1/Type-2 configuration-register packet
// protocol (PacketStream).
package packet

import (
	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/xcerr"
)

// Opcode is the 2-bit packet opcode field.
type Opcode int

const (
	OpNOOP     Opcode = 0
	OpRead     Opcode = 1
	OpWrite    Opcode = 2
	OpReserved Opcode = 3
)

// Kind tags the shape of a decoded Packet, matching the spec's tagged-value
// description: NOOP, T1Write, T1Read or T2Write.
type Kind int

const (
	NOOP Kind = iota
	T1Write
	T1Read
	T2Write
)

func (k Kind) String() string {
	switch k {
	case NOOP:
		return "NOOP"
	case T1Write:
		return "T1Write"
	case T1Read:
		return "T1Read"
	case T2Write:
		return "T2Write"
	default:
		return "Unknown"
	}
}

// Packet is a single decoded configuration-register packet. Reg and Words
// are populated for Type-1 packets; Payload and WordCount for Type-2.
type Packet struct {
	Kind      Kind
	Reg       int
	Words     []uint16
	WordCount uint32
	Payload   []byte
}

// SyncWord is the dword that separates the header/filler region from the
// packet stream.
const SyncWord = 0xAA995566

// FillerByte is the padding byte written (and tolerated on read) between
// the bytes-to-EOF field and the sync word.
const FillerByte = 0xFF

// fillerBytesOnWrite is the fixed filler length this emitter writes.
const fillerBytesOnWrite = 16

// maxT1Words is the largest word count a Type-1 header can carry (5-bit
// field).
const maxT1Words = 31

// ReadPreamble reads the 'e' tag, the bytes-to-EOF length field, the 0xFF
// filler run and the sync word that precede the packet sequence. It returns
// the byte offset (within r) at which the packet stream ends.
func ReadPreamble(r *bitio.Reader) (endOffset int, err error) {
	tag, err := r.ReadByte()
	if err != nil {
		return 0, xcerr.Wrap(err, xcerr.ShortRead, "reading stream tag byte")
	}
	if tag != 'e' {
		return 0, xcerr.Newf(xcerr.BadPacket, "expected stream tag 'e', got %q", tag)
	}

	bytesToEOF, err := r.ReadU32BE()
	if err != nil {
		return 0, xcerr.Wrap(err, xcerr.ShortRead, "reading bytes-to-EOF")
	}
	end := r.Pos() + int(bytesToEOF)

	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, xcerr.Wrap(err, xcerr.ShortRead, "reading filler/sync")
		}
		if b != FillerByte {
			rest, err := r.ReadBytes(3)
			if err != nil {
				return 0, xcerr.Wrap(err, xcerr.ShortRead, "reading sync word")
			}
			word := uint32(b)<<24 | uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2])
			if word != SyncWord {
				return 0, xcerr.Newf(xcerr.BadPacket, "expected sync word 0x%08X, got 0x%08X", uint32(SyncWord), word)
			}
			break
		}
	}
	return end, nil
}

// WritePreamble writes the 'e' tag, a placeholder bytes-to-EOF field, the
// filler run and the sync word. It returns the byte offset of the
// bytes-to-EOF field so the caller can patch it once the stream length is
// known.
func WritePreamble(w *bitio.Writer) (lengthFieldOffset int) {
	w.WriteByte('e')
	lengthFieldOffset = w.Len()
	w.WriteU32BE(0) // patched by the caller (bitio.Writer.PatchU32BE) once the stream is complete.
	for i := 0; i < fillerBytesOnWrite; i++ {
		w.WriteByte(FillerByte)
	}
	w.WriteU32BE(SyncWord)
	return lengthFieldOffset
}

// ReadAll reads packets from r until it has consumed end (an offset
// previously returned by ReadPreamble).
func ReadAll(r *bitio.Reader, end int) ([]Packet, error) {
	var pkts []Packet
	for r.Pos() < end {
		p, err := ReadOne(r)
		if err != nil {
			return nil, err
		}
		pkts = append(pkts, p)
	}
	return pkts, nil
}

// ReadOne reads a single packet. Callers that interleave packet reads with
// out-of-band bytes (the auto-CRC trailer after an FDRI payload) drive this
// directly instead of ReadAll.
func ReadOne(r *bitio.Reader) (Packet, error) {
	header, err := r.ReadU16BE()
	if err != nil {
		return Packet{}, xcerr.Wrap(err, xcerr.ShortRead, "reading packet header")
	}
	typ := (header >> 13) & 0x7
	opcode := Opcode((header >> 11) & 0x3)
	if opcode == OpReserved {
		return Packet{}, xcerr.New(xcerr.BadPacket, "reserved packet opcode")
	}
	if opcode == OpNOOP {
		if typ != 1 || header&0x7FF != 0 {
			return Packet{}, xcerr.Newf(xcerr.BadPacket, "malformed noop header 0x%04X", header)
		}
		return Packet{Kind: NOOP}, nil
	}

	switch typ {
	case 1:
		reg := int((header >> 5) & 0x3F)
		wc := int(header & 0x1F)
		words := make([]uint16, wc)
		for i := range words {
			words[i], err = r.ReadU16BE()
			if err != nil {
				return Packet{}, xcerr.Wrap(err, xcerr.ShortRead, "reading type-1 payload word")
			}
		}
		kind := T1Write
		if opcode == OpRead {
			kind = T1Read
		}
		return Packet{Kind: kind, Reg: reg, Words: words, WordCount: uint32(wc)}, nil

	case 2:
		if header&0x1F != 0 {
			return Packet{}, xcerr.New(xcerr.BadPacket, "type-2 header word count must be zero")
		}
		if opcode != OpWrite {
			return Packet{}, xcerr.New(xcerr.BadPacket, "type-2 packet must be a write")
		}
		reg := int((header >> 5) & 0x3F)
		wc, err := r.ReadU32BE()
		if err != nil {
			return Packet{}, xcerr.Wrap(err, xcerr.ShortRead, "reading type-2 word count")
		}
		payload, err := r.ReadBytes(int(wc) * 2)
		if err != nil {
			return Packet{}, xcerr.Wrap(err, xcerr.ShortRead, "reading type-2 payload")
		}
		return Packet{Kind: T2Write, Reg: reg, WordCount: wc, Payload: payload}, nil

	default:
		return Packet{}, xcerr.Newf(xcerr.BadPacket, "invalid packet type %d", typ)
	}
}

// WriteOne emits a single packet.
func WriteOne(w *bitio.Writer, p Packet) error {
	switch p.Kind {
	case NOOP:
		w.WriteU16BE(0x2000)
		return nil

	case T1Write, T1Read:
		if len(p.Words) > maxT1Words {
			return xcerr.Newf(xcerr.PayloadOverflow, "type-1 word count %d exceeds max %d", len(p.Words), maxT1Words)
		}
		op := Opcode(OpWrite)
		if p.Kind == T1Read {
			op = OpRead
		}
		header := uint16(1)<<13 | uint16(op)<<11 | uint16(p.Reg&0x3F)<<5 | uint16(len(p.Words)&0x1F)
		w.WriteU16BE(header)
		for _, word := range p.Words {
			w.WriteU16BE(word)
		}
		return nil

	case T2Write:
		header := uint16(2)<<13 | uint16(OpWrite)<<11 | uint16(p.Reg&0x3F)<<5
		w.WriteU16BE(header)
		w.WriteU32BE(p.WordCount)
		w.WriteBytes(p.Payload)
		return nil

	default:
		return xcerr.Newf(xcerr.InternalInvariant, "unknown packet kind %v", p.Kind)
	}
}
