/*
NAME
  header.go

DESCRIPTION
  header.go implements HeaderCodec: the fixed 13-byte magic preamble followed
  by four length-prefixed, NUL-terminated ASCII records ('a'..'d': tool/user
  tag, part name, date, time). Layout mirrors the fixed-field binary headers
  in container/mts/psi and container/flv, scaled down to this format's much
  smaller, fully static field list.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package header implements the bitstream file's HeaderCodec: parsing and
// emitting the ASCII preamble that precedes the packet stream.
package header

import (
	"bytes"

	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/xcerr"
)

// Magic is the fixed 13-byte prefix every bitstream file begins with.
var Magic = []byte{0x00, 0x09, 0x0F, 0xF0, 0x0F, 0xF0, 0x0F, 0xF0, 0x0F, 0xF0, 0x00, 0x00, 0x01}

// MaxHeaderStrLen is the maximum encoded length (including the trailing NUL)
// of any of the four header strings.
const MaxHeaderStrLen = 128

// codes is the fixed code-byte sequence, in order.
var codes = [4]byte{'a', 'b', 'c', 'd'}

// Fields holds the four header strings, keyed by their role rather than
// their wire code byte.
type Fields struct {
	Tool string // code 'a': tool/user tag
	Part string // code 'b': part name
	Date string // code 'c': date
	Time string // code 'd': time
}

// Parse reads the magic prefix and the four header records from r.
func Parse(r *bitio.Reader) (Fields, error) {
	var f Fields

	magic, err := r.ReadBytes(len(Magic))
	if err != nil {
		return f, xcerr.Wrap(err, xcerr.ShortRead, "reading header magic")
	}
	if !bytes.Equal(magic, Magic) {
		return f, xcerr.New(xcerr.BadMagic, "header magic mismatch")
	}

	strs := make([]string, len(codes))
	for i, code := range codes {
		s, err := parseRecord(r, code)
		if err != nil {
			return f, err
		}
		strs[i] = s
	}
	f.Tool, f.Part, f.Date, f.Time = strs[0], strs[1], strs[2], strs[3]
	return f, nil
}

func parseRecord(r *bitio.Reader, wantCode byte) (string, error) {
	gotCode, err := r.ReadByte()
	if err != nil {
		return "", xcerr.Wrap(err, xcerr.ShortRead, "reading header record code")
	}
	if gotCode != wantCode {
		return "", xcerr.Newf(xcerr.BadHeader, "expected header code %q, got %q", wantCode, gotCode)
	}

	length, err := r.ReadU16BE()
	if err != nil {
		return "", xcerr.Wrap(err, xcerr.ShortRead, "reading header record length")
	}
	if length == 0 || int(length) > MaxHeaderStrLen {
		return "", xcerr.Newf(xcerr.BadHeader, "header record %q length %d out of range", wantCode, length)
	}

	raw, err := r.ReadBytes(int(length))
	if err != nil {
		return "", xcerr.Wrap(err, xcerr.ShortRead, "reading header record body")
	}
	if raw[len(raw)-1] != 0 {
		return "", xcerr.Newf(xcerr.BadHeader, "header record %q not NUL terminated", wantCode)
	}
	return string(raw[:len(raw)-1]), nil
}

// Emit writes the magic prefix and the four header records to w.
func Emit(w *bitio.Writer, f Fields) error {
	w.WriteBytes(Magic)
	strs := [4]string{f.Tool, f.Part, f.Date, f.Time}
	for i, code := range codes {
		if err := emitRecord(w, code, strs[i]); err != nil {
			return err
		}
	}
	return nil
}

func emitRecord(w *bitio.Writer, code byte, s string) error {
	length := len(s) + 1 // +1 for the trailing NUL
	if length > MaxHeaderStrLen {
		return xcerr.Newf(xcerr.BadHeader, "header record %q of length %d exceeds max %d", code, length, MaxHeaderStrLen)
	}
	if err := w.WriteByte(code); err != nil {
		return err
	}
	w.WriteU16BE(uint16(length))
	w.WriteBytes([]byte(s))
	return w.WriteByte(0)
}
