/*
NAME
  bram.go

DESCRIPTION
  bram.go decodes and prints block-RAM configuration and data. A RAMB16
  configuration is 64 bytes gathered from minors 23 and 24, bit-mangled
  into 256 ordered bit pairs and then matched against the attribute atoms
  below; the data itself lives in the block-RAM data frames after the
  type-0 region.

AUTHORS
  The openfpga xc6bit contributors.
*/

package dump

import (
	"fmt"
	"io"

	"github.com/openfpga/xc6bit/bitstream"
	"github.com/openfpga/xc6bit/frame"
)

// cfgAtom is one RAMB16 attribute: the pair bits that must be clear, the
// pair bits that must be set, and the attribute text.
type cfgAtom struct {
	must0 []int
	must1 []int
	str   string
}

// ramb16Instance is the set of bits present on every instantiated RAMB16.
var ramb16Instance = cfgAtom{
	nil,
	[]int{12, 13, 274, 275, 276, 277, 316, 317, 318, 319, 420, 421, 422, 423},
	"default_bits",
}

var ramb16Atoms = []cfgAtom{
	// data_width_a
	{[]int{264, 265, 260, 261, 256, 257}, nil, "data_width_a 1"},
	{[]int{264, 265, 260, 261}, []int{256, 257}, "data_width_a 2"},
	{[]int{264, 265, 256, 257}, []int{260, 261}, "data_width_a 4"},
	{[]int{264, 265}, []int{260, 261, 256, 257}, "data_width_a 9"},
	{[]int{260, 261, 256, 257}, []int{264, 265}, "data_width_a 18"},
	{[]int{260, 261}, []int{264, 265, 256, 257}, "data_width_a 36"},
	{nil, []int{264, 265, 260, 261, 256, 257}, "data_width_a 0"},

	// data_width_b
	{[]int{262, 263, 286, 287, 258, 259}, nil, "data_width_b 1"},
	{[]int{262, 263, 286, 287}, []int{258, 259}, "data_width_b 2"},
	{[]int{262, 263, 258, 259}, []int{286, 287}, "data_width_b 4"},
	{[]int{262, 263}, []int{286, 287, 258, 259}, "data_width_b 9"},
	{[]int{286, 287, 258, 259}, []int{262, 263}, "data_width_b 18"},
	{[]int{286, 287}, []int{262, 263, 258, 259}, "data_width_b 36"},
	{nil, []int{262, 263, 286, 287, 258, 259}, "data_width_b 0"},

	// required
	{nil, []int{266, 267}, "RST_PRIORITY_B:CE"},
	{[]int{266, 267}, nil, "RST_PRIORITY_B:SR"},
	{nil, []int{268, 269}, "RST_PRIORITY_A:CE"},
	{[]int{268, 269}, nil, "RST_PRIORITY_A:SR"},
	{nil, []int{290, 291}, "EN_RSTRAM_A:TRUE"},
	{[]int{290, 291}, nil, "EN_RSTRAM_A:FALSE"},
	{nil, []int{444, 445}, "EN_RSTRAM_B:TRUE"},
	{[]int{444, 445}, nil, "EN_RSTRAM_B:FALSE"},

	// optional
	{nil, []int{26, 27}, "CLKAINV:CLKA"},
	{[]int{26, 27}, nil, "CLKAINV:CLKA_B"},
	{nil, []int{30, 31}, "CLKBINV:CLKB"},
	{[]int{30, 31}, nil, "CLKBINV:CLKB_B"},
	{nil, []int{270, 271}, "RSTTYPE:ASYNC"},
	{[]int{270, 271}, nil, "RSTTYPE:SYNC"},
	{nil, []int{278, 279}, "WRITE_MODE_B:READ_FIRST"},
	{nil, []int{280, 281}, "WRITE_MODE_A:READ_FIRST"},
	{nil, []int{282, 283}, "WRITE_MODE_B:NO_CHANGE"},
	{nil, []int{284, 285}, "WRITE_MODE_A:NO_CHANGE"},
	{[]int{278, 279, 282, 283}, nil, "WRITE_MODE_B:WRITE_FIRST"},
	{[]int{280, 281, 284, 285}, nil, "WRITE_MODE_A:WRITE_FIRST"},
	{nil, []int{306, 307}, "DOB_REG:1"},
	{[]int{306, 306}, nil, "DOB_REG:0"},
	{nil, []int{308, 309}, "DOA_REG:1"},
	{[]int{308, 309}, nil, "DOA_REG:0"},
	{[]int{431, 467}, []int{430, 466}, "ENAINV:ENA"},
	{[]int{430, 431, 466, 467}, nil, "ENAINV:ENA_B"},
	{[]int{465, 469}, []int{464, 468}, "ENBINV:ENB"},
	{[]int{464, 465, 468, 469}, nil, "ENBINV:ENB_B"},
	{nil, []int{20, 21}, "REGCEAINV:REGCEA"},
	{[]int{20, 21}, nil, "REGCEAINV:REGCEA_B"},
	{nil, []int{8, 9}, "REGCEBINV:REGCEB"},
	{[]int{8, 9}, nil, "REGCEBINV:REGCEB_B"},
	{[]int{24, 25}, nil, "RSTAINV:RSTA"},
	{nil, []int{24, 25}, "RSTAINV:RSTA_B"},
	{nil, []int{4, 5}, "RSTBINV:RSTB"},
	{[]int{4, 5}, nil, "RSTBINV:RSTB_B"},
	{nil, []int{19}, "WEA0INV:WEA0"},
	{[]int{19}, nil, "WEA0INV:WEA0_B"},
	{nil, []int{23}, "WEA2INV:WEA1"},
	{[]int{23}, nil, "WEA2INV:WEA1_B"},
	{nil, []int{18}, "WEA2INV:WEA2"},
	{[]int{18}, nil, "WEA2INV:WEA2_B"},
	{nil, []int{22}, "WEA2INV:WEA3"},
	{[]int{22}, nil, "WEA2INV:WEA3_B"},
	{nil, []int{7}, "WEB0INV:WEB0"},
	{[]int{7}, nil, "WEB0INV:WEB0_B"},
	{nil, []int{3}, "WEB1INV:WEB1"},
	{[]int{3}, nil, "WEB1INV:WEB1_B"},
	{nil, []int{6}, "WEB2INV:WEB2"},
	{[]int{6}, nil, "WEB2INV:WEB2_B"},
	{nil, []int{2}, "WEB3INV:WEB3"},
	{[]int{2}, nil, "WEB3INV:WEB3_B"},
}

func atomFound(bits []bool, a cfgAtom) bool {
	for _, b := range a.must0 {
		if bits[b] {
			return false
		}
	}
	for _, b := range a.must1 {
		if !bits[b] {
			return false
		}
	}
	return true
}

func atomRemove(bits []bool, a cfgAtom) {
	for _, b := range a.must1 {
		bits[b] = false
	}
}

// printRamb16Cfg decodes one 64-byte RAMB16 configuration.
//
// Bits 0..255 come from minor 23 and bits 256..511 from minor 24. Each
// set of 256 bits is divided into two halves of 128 bits swept forward
// and backward to form 2-bit pairs: pairs 0..127 from bits 0..127 and
// 255..128, pairs 128..255 from bits 256..383 and 511..384. The bits are
// sorted so each pair sits next to each other.
func printRamb16Cfg(w io.Writer, cfg []byte) {
	d := make([]byte, 64)
	copy(d, cfg)
	for i := 0; i < 32; i++ {
		d[i*2], d[i*2+1] = d[i*2+1], d[i*2]
	}
	for i := range d {
		var r byte
		for j := 0; j < 8; j++ {
			if d[i]&(1<<uint(j)) != 0 {
				r |= 0x80 >> uint(j)
			}
		}
		d[i] = r
	}

	bits := make([]bool, 512)
	for i := 0; i < 128; i++ {
		bits[i*2] = d[i/8]&(1<<uint(i%8)) != 0
		bits[i*2+1] = d[(255-i)/8]&(1<<uint(7-i%8)) != 0
	}
	for i := 0; i < 128; i++ {
		bits[256+i*2] = d[32+i/8]&(1<<uint(i%8)) != 0
		bits[256+i*2+1] = d[32+(255-i)/8]&(1<<uint(7-i%8)) != 0
	}

	fmt.Fprintf(w, "{\n")
	found := make([]bool, len(ramb16Atoms))
	for i, a := range ramb16Atoms {
		if atomFound(bits, a) && len(a.must1) > 0 {
			fmt.Fprintf(w, "  %s\n", a.str)
			found[i] = true
		}
	}
	for i, a := range ramb16Atoms {
		if found[i] {
			atomRemove(bits, a)
		}
	}
	if atomFound(bits, ramb16Instance) {
		for _, b := range ramb16Instance.must1 {
			fmt.Fprintf(w, "  b%d\n", b)
		}
		atomRemove(bits, ramb16Instance)
	} else {
		fmt.Fprintf(w, "  #W Not all instantiation bits set.\n")
	}
	firstExtra := true
	for i, b := range bits {
		if b {
			if firstExtra {
				fmt.Fprintf(w, "  #W Extra bits set.\n")
				firstExtra = false
			}
			fmt.Fprintf(w, "  b%d\n", i)
		}
	}
	fmt.Fprintf(w, "}\n")
}

func dumpMajBram(w io.Writer, buf *frame.Buffer, row, major int) {
	for minor := 0; minor < frame.MajorMinors(major); minor++ {
		printClock(w, buf, row, major, minor)
	}
	for i := 0; i < 10; i++ {
		printRoutingPair(w, buf, row, major, i*2)
	}
	printV64Mi20(w, buf, row, major)
	printFrame(w, buf, row, major, 21)
	printFrame(w, buf, row, major, 22)

	// Four RAMB16 configurations per column, 32 bytes in each of minors
	// 23 and 24, with the HCLK bytes skipped in the upper half.
	d := buf.Bytes()
	for i := 0; i < 4; i++ {
		off := i * 32
		if off >= 64 {
			off += frame.HClkBytes
		}
		var cfg [64]byte
		copy(cfg[:32], d[frame.Off(row, major, 23)+off:])
		copy(cfg[32:], d[frame.Off(row, major, 24)+off:])
		empty := true
		for _, b := range cfg {
			if b != 0 {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		fmt.Fprintf(w, "r%d ma%d ramb16 i%d\n", row, major, i)
		printRamb16Cfg(w, cfg[:])
	}
}

// ramb16DataLen is the byte length of one block's data: 18 frames.
const ramb16DataLen = 18 * frame.Size

// dumpBram prints the nonzero block-RAM data blocks.
func dumpBram(w io.Writer, cfg *bitstream.Config) {
	d := cfg.Frames.Bytes()
	newline := false
	for row := 0; row < frame.BramRows; row++ {
		for i := 0; i < 8; i++ {
			off := frame.BramDataStart + row*frame.BramFramesPerRow*frame.Size + i*ramb16DataLen
			empty := true
			for j := 0; j < ramb16DataLen; j++ {
				if d[off+j] != 0 {
					empty = false
					break
				}
			}
			if empty {
				continue
			}
			if !newline {
				newline = true
				fmt.Fprintf(w, "\n")
			}
			fmt.Fprintf(w, "br%d ramb16 i%d\n", row, i)
			fmt.Fprintf(w, "{\n")
			printRamb16Data(w, d[off:off+ramb16DataLen])
			fmt.Fprintf(w, "}\n")
		}
	}
}

// printRamb16Data hex-dumps the nonzero 16-byte lines of one data block.
func printRamb16Data(w io.Writer, d []byte) {
	for off := 0; off < len(d); off += 16 {
		end := off + 16
		if end > len(d) {
			end = len(d)
		}
		empty := true
		for _, b := range d[off:end] {
			if b != 0 {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		fmt.Fprintf(w, "  %04x:", off)
		for _, b := range d[off:end] {
			fmt.Fprintf(w, " %02x", b)
		}
		fmt.Fprintf(w, "\n")
	}
}
