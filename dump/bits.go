/*
NAME
  bits.go

DESCRIPTION
  bits.go renders the frame contents of a parsed bitstream: per-major
  frame lines, routing minor pairs, the minor-20 clock/fan bits, LUT
  contents, block-RAM configuration and data, and the IOB entries.

AUTHORS
  The openfpga xc6bit contributors.
*/

package dump

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/openfpga/xc6bit/bitstream"
	"github.com/openfpga/xc6bit/frame"
)

// topBotIORows is the number of logic positions displaced by IO devices
// at the top and bottom of majors carrying them.
const topBotIORows = 2

func dumpBits(w io.Writer, cfg *bitstream.Config) error {
	buf := cfg.Frames
	for major := 0; major < frame.NumMajors; major++ {
		for row := frame.NumRows - 1; row >= 0; row-- {
			switch frame.MajorTypeOf(major) {
			case frame.MajZero, frame.MajLeft, frame.MajRight:
				for minor := 0; minor < frame.MajorMinors(major); minor++ {
					printClock(w, buf, row, major, minor)
				}
				for minor := 0; minor < frame.MajorMinors(major); minor++ {
					printFrame(w, buf, row, major, minor)
				}
			case frame.MajLogicXM, frame.MajLogicXL, frame.MajCenter:
				dumpMajLogic(w, buf, row, major)
			case frame.MajBram:
				dumpMajBram(w, buf, row, major)
			case frame.MajMacc:
				dumpMajMacc(w, buf, row, major)
			}
		}
	}
	return nil
}

// u64At reads the 64-bit word of logical position pos within frame
// (row, major, minor), skipping the HCLK gap.
func u64At(buf *frame.Buffer, row, major, minor, pos int) uint64 {
	off := pos * 8
	if pos >= 8 {
		off += frame.HClkBytes
	}
	return buf.GetU64(frame.Off(row, major, minor) + off)
}

// u64Str renders a 64-bit word as 64 '0'/'1' characters, bit 0 first.
func u64Str(v uint64) string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = '0' + byte(v>>uint(i)&1)
	}
	return string(b)
}

// printClock prints the 16 HCLK bits of one frame if any are set.
func printClock(w io.Writer, buf *frame.Buffer, row, major, minor int) {
	off := frame.Off(row, major, minor) + 64
	v := uint16(buf.Bytes()[off])<<8 | uint16(buf.Bytes()[off+1])
	if v == 0 {
		return
	}
	b := make([]byte, 16)
	for i := range b {
		b[i] = '0' + byte(v>>uint(i)&1)
	}
	fmt.Fprintf(w, "r%d ma%d hclk mi%02d %s\n", row, major, minor, b)
}

// printFrame prints the nonzero 64-bit positions of one frame: the full
// bit string, or individual b<index> lines when fewer than five bits are
// set.
func printFrame(w io.Writer, buf *frame.Buffer, row, major, minor int) {
	for pos := 0; pos < frame.RowPositions; pos++ {
		v := u64At(buf, row, major, minor, pos)
		if v == 0 {
			continue
		}
		if bits.OnesCount64(v) < 5 {
			for i := 0; i < 64; i++ {
				if v&(1<<uint(i)) != 0 {
					fmt.Fprintf(w, "r%d ma%d v64_%02d mi%02d b%d\n", row, major, pos, minor, i)
				}
			}
		} else {
			fmt.Fprintf(w, "r%d ma%d v64_%02d mi%02d %s\n", row, major, pos, minor, u64Str(v))
		}
	}
}

// printRoutingPair prints an even/odd minor pair as interleaved 128-bit
// strings, one line per nonzero position.
func printRoutingPair(w io.Writer, buf *frame.Buffer, row, major, evenMinor int) {
	for pos := 0; pos < frame.RowPositions; pos++ {
		v0 := u64At(buf, row, major, evenMinor, pos)
		v1 := u64At(buf, row, major, evenMinor+1, pos)
		if v0 == 0 && v1 == 0 {
			continue
		}
		b := make([]byte, 128)
		for i := 0; i < 64; i++ {
			b[i*2] = '0' + byte(v0>>uint(i)&1)
			b[i*2+1] = '0' + byte(v1>>uint(i)&1)
		}
		fmt.Fprintf(w, "r%d ma%d v64_%02d mip%02d %s\n", row, major, pos, evenMinor, b)
	}
}

// printV64Mi20 prints minor 20 as 64-bit strings, with individual bit
// lines added for sparse words.
func printV64Mi20(w io.Writer, buf *frame.Buffer, row, major int) {
	for pos := 0; pos < frame.RowPositions; pos++ {
		v := u64At(buf, row, major, 20, pos)
		if v == 0 {
			continue
		}
		fmt.Fprintf(w, "r%d ma%d v64_%02d mi20 %s\n", row, major, pos, u64Str(v))
		if bits.OnesCount64(v) < 5 {
			for i := 0; i < 64; i++ {
				if v&(1<<uint(i)) != 0 {
					fmt.Fprintf(w, "r%d ma%d v64_%02d mi20 b%d\n", row, major, pos, i)
				}
			}
		}
	}
}

// printLUT prints one 32-bit-half LUT if nonzero: sparse tables as bit
// lists, dense ones as 64-character strings.
func printLUT(w io.Writer, buf *frame.Buffer, row, major, minor, v32I int) {
	v := buf.LUT64(row, major, minor, v32I)
	if v == 0 {
		return
	}
	if bits.OnesCount64(v) < 5 {
		fmt.Fprintf(w, "r%d ma%02d v32_%02d mip%02d_lut", row, major, v32I, minor)
		for i := 0; i < 64; i++ {
			if v&(1<<uint(i)) != 0 {
				fmt.Fprintf(w, " b%d", i)
			}
		}
		fmt.Fprintf(w, "\n")
	} else {
		fmt.Fprintf(w, "r%d ma%02d v32_%02d mip%02d_lut %s\n", row, major, v32I, minor, u64Str(v))
	}
}

// logDevRange returns the first and last logic positions of a major in
// the given row, folding out the IO rows of top/bottom-IO majors.
func logDevRange(major, row int) (start, end int) {
	start, end = 0, 15
	if frame.MajorHasTopBotIO(major) {
		if row == frame.NumRows-1 {
			start += topBotIORows
		} else if row == 0 {
			end -= topBotIORows
		}
	}
	return start, end
}

func dumpMajLogic(w io.Writer, buf *frame.Buffer, row, major int) {
	for minor := 0; minor < frame.MajorMinors(major); minor++ {
		printClock(w, buf, row, major, minor)
	}
	for i := 0; i < 10; i++ {
		printRoutingPair(w, buf, row, major, i*2)
	}
	printV64Mi20(w, buf, row, major)

	start, end := logDevRange(major, row)
	if frame.MajorTypeOf(major) == frame.MajLogicXM {
		// M devices.
		for i := start; i <= end; i++ {
			printLUT(w, buf, row, major, 21, i*2)
			printLUT(w, buf, row, major, 21, i*2+1)
		}
		printFrame(w, buf, row, major, 23)
		for i := start; i <= end; i++ {
			printLUT(w, buf, row, major, 24, i*2)
			printLUT(w, buf, row, major, 24, i*2+1)
		}
		// X devices.
		printFrame(w, buf, row, major, 26)
		for i := start; i <= end; i++ {
			printLUT(w, buf, row, major, 27, i*2)
			printLUT(w, buf, row, major, 29, i*2)
			printLUT(w, buf, row, major, 27, i*2+1)
			printLUT(w, buf, row, major, 29, i*2+1)
		}
	} else {
		// L devices.
		for i := start; i <= end; i++ {
			printLUT(w, buf, row, major, 21, i*2)
			printLUT(w, buf, row, major, 23, i*2)
			printLUT(w, buf, row, major, 21, i*2+1)
			printLUT(w, buf, row, major, 23, i*2+1)
		}
		printFrame(w, buf, row, major, 25)
		// X devices.
		for i := start; i <= end; i++ {
			printLUT(w, buf, row, major, 26, i*2)
			printLUT(w, buf, row, major, 28, i*2)
			printLUT(w, buf, row, major, 26, i*2+1)
			printLUT(w, buf, row, major, 28, i*2+1)
		}
		// The center major carries one extra minor.
		if frame.MajorTypeOf(major) == frame.MajCenter {
			printFrame(w, buf, row, major, 30)
		}
	}
}

func dumpMajMacc(w io.Writer, buf *frame.Buffer, row, major int) {
	for minor := 0; minor < frame.MajorMinors(major); minor++ {
		printClock(w, buf, row, major, minor)
	}
	for i := 0; i < 10; i++ {
		printRoutingPair(w, buf, row, major, i*2)
	}
	printV64Mi20(w, buf, row, major)
	for minor := 21; minor < frame.MajorMinors(major); minor++ {
		printFrame(w, buf, row, major, minor)
	}
}

// dumpIOBEntries prints the nonzero entries of the IOB data block.
func dumpIOBEntries(w io.Writer, cfg *bitstream.Config) {
	for i := 0; i < frame.IOBEntries; i++ {
		v := cfg.Frames.GetU64(frame.IOBDataStart + i*frame.IOBEntryLen)
		if v != 0 {
			fmt.Fprintf(w, "iob i%d 0x%016X\n", i, v)
		}
	}
}
