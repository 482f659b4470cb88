/*
NAME
  bitstream.go

DESCRIPTION
  bitstream.go ties the codec layers together: Config owns the parsed
  header, register-action log and frame buffer of one bitstream, and the
  Decoder/Encoder pair read and write the on-wire form. The reader slurps
  the stream fully into memory before parsing; the writer assembles the
  whole file in memory and patches the bytes-to-EOF field before flushing,
  so plain io.Reader/io.Writer streams suffice.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package bitstream reads and writes device configuration bitstreams and
// converts between them and device models.
package bitstream

import (
	"io"

	"github.com/openfpga/xc6bit/bitio"
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/header"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/packet"
	"github.com/openfpga/xc6bit/register"
	"github.com/openfpga/xc6bit/xcerr"
	"github.com/openfpga/xc6bit/xclog"
)

// Config is the in-memory form of one parsed or to-be-written bitstream.
// It exclusively owns its frame buffer and register log.
type Config struct {
	Header  header.Fields
	Log     *register.Log
	Frames  *frame.Buffer
	AutoCRC uint32
}

// Release zeroes the configuration and drops the frame buffer.
func (c *Config) Release() {
	if c.Frames != nil {
		c.Frames.Release()
	}
	*c = Config{}
}

// Option adjusts a Decoder or Encoder.
type Option func(*options) error

type options struct {
	log    xclog.Log
	fields header.Fields
}

// defaultHeader is the header written when the caller supplies none.
var defaultHeader = header.Fields{
	Tool: "xc6bit;UserID=0xFFFFFFFF",
	Part: "6slx9tqg144",
	Date: "2010/05/26",
	Time: "08:00:00",
}

func newOptions(opts []Option) (*options, error) {
	o := &options{log: xclog.Nop, fields: defaultHeader}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithLogger directs diagnostics to log.
func WithLogger(log xclog.Log) Option {
	return func(o *options) error {
		if log == nil {
			return xcerr.New(xcerr.InternalInvariant, "nil logger")
		}
		o.log = log
		return nil
	}
}

// WithHeader overrides the header strings written by an Encoder.
func WithHeader(f header.Fields) Option {
	return func(o *options) error {
		o.fields = f
		return nil
	}
}

// Decoder reads bitstreams.
type Decoder struct {
	opts *options
}

// NewDecoder returns a Decoder with the given options.
func NewDecoder(opts ...Option) (*Decoder, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Decoder{opts: o}, nil
}

// Read slurps and parses one bitstream. On failure no frame buffer
// escapes.
func (dec *Decoder) Read(r io.Reader) (*Config, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, xcerr.Wrap(err, xcerr.ShortRead, "reading bitstream")
	}
	if len(d) == 0 {
		return nil, xcerr.New(xcerr.ShortRead, "empty bitstream")
	}

	br := bitio.NewReader(d)
	hdr, err := header.Parse(br)
	if err != nil {
		return nil, err
	}
	end, err := packet.ReadPreamble(br)
	if err != nil {
		return nil, err
	}
	if end > len(d) {
		return nil, xcerr.Newf(xcerr.ShortRead, "announced stream end %d beyond file length %d", end, len(d))
	}
	if end < len(d) {
		dec.opts.log(xclog.WarnLevel, pkg+"unexpected continuation after announced end", "end", end, "len", len(d))
	}

	in := register.New(dec.opts.log)
	if err := in.Run(br, end); err != nil {
		return nil, err
	}
	return &Config{Header: hdr, Log: in.Actions, Frames: in.Frames, AutoCRC: in.AutoCRC}, nil
}

// ReadBitfile parses one bitstream from r.
func ReadBitfile(r io.Reader, opts ...Option) (*Config, error) {
	dec, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}
	return dec.Read(r)
}

// Encoder writes bitstreams.
type Encoder struct {
	opts *options
}

// NewEncoder returns an Encoder with the given options.
func NewEncoder(opts ...Option) (*Encoder, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Encoder{opts: o}, nil
}

// Write encodes the model and writes the complete bitstream to w.
func (enc *Encoder) Write(w io.Writer, m *model.Model) error {
	buf := frame.NewBuffer()
	if err := WriteModel(buf, m, enc.opts.log); err != nil {
		buf.Release()
		return err
	}
	err := enc.writeStream(w, enc.opts.fields, buf, register.DefaultAutoCRC, nil)
	buf.Release()
	return err
}

// WriteConfig re-serializes a previously parsed Config, reproducing its
// logged register actions byte for byte.
func (enc *Encoder) WriteConfig(w io.Writer, cfg *Config) error {
	if cfg.Frames == nil || cfg.Log == nil || cfg.Log.NumRegsBeforeBits == -1 {
		return xcerr.New(xcerr.InternalInvariant, "config has no frame payload")
	}
	return enc.writeStream(w, cfg.Header, cfg.Frames, cfg.AutoCRC, cfg.Log)
}

// writeStream assembles header, preamble, register packets and the FDRI
// payload, then patches the bytes-to-EOF field. A nil log writes the
// fixed prologue/epilogue script.
func (enc *Encoder) writeStream(w io.Writer, fields header.Fields, buf *frame.Buffer, autoCRC uint32, log *register.Log) error {
	bw := bitio.NewWriter()
	if err := header.Emit(bw, fields); err != nil {
		return err
	}
	lenOff := packet.WritePreamble(bw)

	if log == nil {
		for _, a := range register.PrologueScript() {
			if err := register.WriteAction(bw, a); err != nil {
				return err
			}
		}
		if err := register.EmitFDRI(bw, buf, autoCRC); err != nil {
			return err
		}
		for _, a := range register.EpilogueScript() {
			if err := register.WriteAction(bw, a); err != nil {
				return err
			}
		}
	} else {
		for i := 0; i < log.Len(); i++ {
			a := log.At(i)
			if a.Reg == register.FDRI {
				if err := register.EmitFDRI(bw, buf, autoCRC); err != nil {
					return err
				}
				continue
			}
			if err := register.WriteAction(bw, a); err != nil {
				return err
			}
		}
	}

	bw.PatchU32BE(lenOff, uint32(bw.Len()-lenOff-4))
	if _, err := w.Write(bw.Bytes()); err != nil {
		return xcerr.Wrap(err, xcerr.ShortRead, "writing bitstream")
	}
	return nil
}

// WriteBitfile encodes model m as a bitstream on w.
func WriteBitfile(w io.Writer, m *model.Model, opts ...Option) error {
	enc, err := NewEncoder(opts...)
	if err != nil {
		return err
	}
	return enc.Write(w, m)
}

const pkg = "bitstream: "
