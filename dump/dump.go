/*
NAME
  dump.go

DESCRIPTION
  dump.go renders the human-readable configuration dump: header strings,
  the decoded register actions with their bit-fields spelled out, the
  frame contents, and the auto-CRC. The exact whitespace and token order
  of every line is a regression surface for downstream tooling and must
  not drift.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package dump renders parsed bitstream configuration as plain text.
package dump

import (
	"fmt"
	"io"

	"github.com/openfpga/xc6bit/bitstream"
	"github.com/openfpga/xc6bit/register"
	"github.com/openfpga/xc6bit/xcerr"
)

// Flags select which sections Dump renders.
type Flags int

const (
	FlagHeader Flags = 1 << iota
	FlagRegs
	FlagBits
	FlagCRC

	FlagAll = FlagHeader | FlagRegs | FlagBits | FlagCRC
)

// Dump renders the selected sections of cfg to w.
func Dump(w io.Writer, cfg *bitstream.Config, flags Flags) error {
	if flags&FlagHeader != 0 {
		dumpHeader(w, cfg)
	}
	if flags&FlagRegs != 0 {
		if err := dumpRegs(w, cfg.Log, 0, cfg.Log.NumRegsBeforeBits, flags&FlagCRC != 0); err != nil {
			return err
		}
	}
	if flags&FlagBits != 0 {
		if err := dumpBits(w, cfg); err != nil {
			return err
		}
		dumpBram(w, cfg)
		dumpIOBEntries(w, cfg)
		if flags&FlagCRC != 0 {
			fmt.Fprintf(w, "auto-crc 0x%X\n", cfg.AutoCRC)
		}
	}
	if flags&FlagRegs != 0 {
		if err := dumpRegs(w, cfg.Log, cfg.Log.NumRegsBeforeBits, cfg.Log.Len(), flags&FlagCRC != 0); err != nil {
			return err
		}
	}
	return nil
}

func dumpHeader(w io.Writer, cfg *bitstream.Config) {
	fmt.Fprintf(w, "header_str_a %s\n", cfg.Header.Tool)
	fmt.Fprintf(w, "header_str_b %s\n", cfg.Header.Part)
	fmt.Fprintf(w, "header_str_c %s\n", cfg.Header.Date)
	fmt.Fprintf(w, "header_str_d %s\n", cfg.Header.Time)
}

// bitstr renders the low n bits of v most-significant first.
func bitstr(v uint32, n int) string {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = '0' + byte(v>>uint(n-1-i)&1)
	}
	return string(b)
}

func intVal(a register.Action) uint32 {
	v, _ := a.Val.(register.Int)
	return uint32(v)
}

func dumpRegs(w io.Writer, log *register.Log, start, end int, dumpCRC bool) error {
	for i := start; i < end; i++ {
		a := log.At(i)
		switch a.Reg {
		case register.RegNoop:
			times := 1
			for i+times < end && log.At(i+times).Reg == register.RegNoop {
				times++
			}
			if times > 1 {
				fmt.Fprintf(w, "noop times %d\n", times)
			} else {
				fmt.Fprintf(w, "noop\n")
			}
			i += times - 1

		case register.IDCODE:
			if name := register.IDCodeName(intVal(a)); name != "" {
				fmt.Fprintf(w, "T1 IDCODE %s\n", name)
			} else {
				fmt.Fprintf(w, "#W Unknown IDCODE 0x%X.\n", intVal(a))
			}

		case register.CMD:
			if name := register.CmdName(intVal(a)); name != "" {
				fmt.Fprintf(w, "T1 CMD %s\n", name)
			} else {
				fmt.Fprintf(w, "#W Unknown CMD 0x%X.\n", intVal(a))
			}

		case register.FDRI:
			fmt.Fprintf(w, "T2 FDRI %d\n", intVal(a))

		case register.FLR:
			fmt.Fprintf(w, "T1 FLR %d\n", intVal(a))

		case register.CRC:
			if dumpCRC {
				fmt.Fprintf(w, "T1 CRC 0x%X\n", intVal(a))
			} else {
				fmt.Fprintf(w, "T1 CRC\n")
			}

		case register.COR1:
			dumpCOR1(w, uint16(intVal(a)))

		case register.COR2:
			dumpCOR2(w, uint16(intVal(a)))

		case register.FAR_MAJ:
			far, ok := a.Val.(register.Far)
			if !ok {
				return xcerr.New(xcerr.InternalInvariant, "FAR_MAJ action without Far value")
			}
			dumpFAR(w, far)

		case register.MFWR:
			fmt.Fprintf(w, "T1 MFWR\n")

		case register.CTL:
			dumpCtlMask(w, "CTL", uint16(intVal(a)))

		case register.MASK:
			dumpCtlMask(w, "MASK", uint16(intVal(a)))

		case register.PWRDN_REG:
			dumpPwrdn(w, uint16(intVal(a)))

		case register.HC_OPT_REG:
			dumpHcOpt(w, uint16(intVal(a)))

		case register.PU_GWE:
			fmt.Fprintf(w, "T1 PU_GWE 0x%03X\n", intVal(a))

		case register.PU_GTS:
			fmt.Fprintf(w, "T1 PU_GTS 0x%03X\n", intVal(a))

		case register.CWDT:
			fmt.Fprintf(w, "T1 CWDT 0x%X\n", intVal(a))
			if intVal(a) < 0x0201 {
				fmt.Fprintf(w, "#W Watchdog timer clock below minimum value of 0x0201.\n")
			}

		case register.MODE_REG:
			dumpModeReg(w, uint16(intVal(a)))

		case register.CCLK_FREQ:
			dumpCclkFreq(w, uint16(intVal(a)))

		case register.EYE_MASK:
			fmt.Fprintf(w, "T1 EYE_MASK 0x%X\n", intVal(a))

		case register.GENERAL1, register.GENERAL2, register.GENERAL3,
			register.GENERAL4, register.GENERAL5:
			fmt.Fprintf(w, "T1 %v 0x%X\n", a.Reg, intVal(a))

		case register.EXP_SIGN:
			fmt.Fprintf(w, "T1 EXP_SIGN 0x%X\n", intVal(a))

		case register.SEU_OPT:
			dumpSeuOpt(w, uint16(intVal(a)))

		default:
			return xcerr.Newf(xcerr.BadRegister, "cannot dump register %v", a.Reg)
		}
	}
	return nil
}

func dumpCOR1(w io.Writer, u16 uint16) {
	unexpectedClk11 := false
	fmt.Fprintf(w, "T1 COR1")
	if u16&0x8000 != 0 {
		fmt.Fprintf(w, " DRIVE_AWAKE")
		u16 &^= 0x8000
	}
	if u16&0x0010 != 0 {
		fmt.Fprintf(w, " CRC_BYPASS")
		u16 &^= 0x0010
	}
	if u16&0x0008 != 0 {
		fmt.Fprintf(w, " DONE_PIPE")
		u16 &^= 0x0008
	}
	if u16&0x0004 != 0 {
		fmt.Fprintf(w, " DRIVE_DONE")
		u16 &^= 0x0004
	}
	if u16&0x0003 != 0 {
		if u16&0x0002 != 0 {
			if u16&0x0001 != 0 {
				unexpectedClk11 = true
			}
			fmt.Fprintf(w, " SSCLKSRC=TCK")
		} else {
			fmt.Fprintf(w, " SSCLKSRC=UserClk")
		}
		u16 &^= 0x0003
	}
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	if unexpectedClk11 {
		fmt.Fprintf(w, "#W Unexpected SSCLKSRC 11.\n")
	}
	// Reserved bits 14:5 are 0110111000 per the documentation.
	if u16 != 0x3700 {
		fmt.Fprintf(w, "#W Expected reserved 0x%x, got 0x%x.\n", 0x3700, u16)
	}
}

func dumpCOR2(w io.Writer, u16 uint16) {
	fmt.Fprintf(w, "T1 COR2")
	if u16&0x8000 != 0 {
		fmt.Fprintf(w, " RESET_ON_ERROR")
		u16 &^= 0x8000
	}
	doneCycle := uint32(u16&0x0E00) >> 9
	fmt.Fprintf(w, " DONE_CYCLE=%s", bitstr(doneCycle, 3))
	u16 &^= 0x0E00
	lckCycle := uint32(u16&0x01C0) >> 6
	fmt.Fprintf(w, " LCK_CYCLE=%s", bitstr(lckCycle, 3))
	u16 &^= 0x01C0
	fmt.Fprintf(w, " GTS_CYCLE=%s", bitstr(uint32(u16&0x0038)>>3, 3))
	u16 &^= 0x0038
	fmt.Fprintf(w, " GWE_CYCLE=%s", bitstr(uint32(u16&0x0007), 3))
	u16 &^= 0x0007
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	if doneCycle == 0 || doneCycle == 7 {
		fmt.Fprintf(w, "#W Unexpected DONE_CYCLE %s.\n", bitstr(doneCycle, 3))
	}
	if lckCycle == 0 {
		fmt.Fprintf(w, "#W Unexpected LCK_CYCLE 0b000.\n")
	}
	if u16 != 0 {
		fmt.Fprintf(w, "#W Expected reserved 0, got 0x%x.\n", u16)
	}
}

func dumpFAR(w io.Writer, far register.Far) {
	fmt.Fprintf(w, "T1 FAR_MAJ")
	blk := (far.Maj & 0xF000) >> 12
	fmt.Fprintf(w, " BLK=%d", blk)
	fmt.Fprintf(w, " ROW=%d", (far.Maj&0x0F00)>>8)
	fmt.Fprintf(w, " MAJOR=%d", far.Maj&0x00FF)
	fmt.Fprintf(w, " BRAM=%d", (far.Min&0xC000)>>14)
	fmt.Fprintf(w, " MINOR=%d", far.Min&0x03FF)
	if far.Min&0x3C00 != 0 {
		fmt.Fprintf(w, " 0x%x", far.Min&0x3C00)
	}
	fmt.Fprintf(w, "\n")
	if blk > 7 {
		fmt.Fprintf(w, "#W Unexpected BLK bit 4 set.\n")
	}
	if far.Min&0x3C00 != 0 {
		fmt.Fprintf(w, "#W Expected reserved 0, got 0x%x.\n", far.Min&0x3C00)
	}
}

func dumpCtlMask(w io.Writer, name string, u16 uint16) {
	fmt.Fprintf(w, "T1 %s", name)
	if u16&0x0040 != 0 {
		fmt.Fprintf(w, " DECRYPT")
		u16 &^= 0x0040
	}
	if name == "MASK" && u16&register.MaskSecurity == register.MaskSecurity {
		fmt.Fprintf(w, " SECURITY")
		u16 &^= register.MaskSecurity
	} else if name == "CTL" {
		if u16&0x0020 != 0 {
			if u16&0x0010 != 0 {
				fmt.Fprintf(w, " SBITS=NO_RW")
			} else {
				fmt.Fprintf(w, " SBITS=NO_READ")
			}
			u16 &^= 0x0030
		} else if u16&0x0010 != 0 {
			fmt.Fprintf(w, " SBITS=ICAP_READ")
			u16 &^= 0x0010
		}
	}
	if u16&0x0008 != 0 {
		fmt.Fprintf(w, " PERSIST")
		u16 &^= 0x0008
	}
	if u16&0x0004 != 0 {
		fmt.Fprintf(w, " USE_EFUSE_KEY")
		u16 &^= 0x0004
	}
	if u16&0x0002 != 0 {
		fmt.Fprintf(w, " CRC_EXTSTAT_DISABLE")
		u16 &^= 0x0002
	}
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	// Bit 0 is reserved as 1, and bit 7 has been observed on as well.
	if u16 != 0x81 {
		fmt.Fprintf(w, "#W Expected reserved 0x%x, got 0x%x.\n", 0x0081, u16)
	}
}

func dumpPwrdn(w io.Writer, u16 uint16) {
	fmt.Fprintf(w, "T1 PWRDN_REG")
	if u16&0x4000 != 0 {
		fmt.Fprintf(w, " EN_EYES")
		u16 &^= 0x4000
	}
	if u16&0x0020 != 0 {
		fmt.Fprintf(w, " FILTER_B")
		u16 &^= 0x0020
	}
	if u16&0x0010 != 0 {
		fmt.Fprintf(w, " EN_PGSR")
		u16 &^= 0x0010
	}
	if u16&0x0004 != 0 {
		fmt.Fprintf(w, " EN_PWRDN")
		u16 &^= 0x0004
	}
	if u16&0x0001 != 0 {
		fmt.Fprintf(w, " KEEP_SCLK")
		u16 &^= 0x0001
	}
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	// Reserved bits 13:6 are 00100010 per the documentation.
	if u16 != 0x0880 {
		fmt.Fprintf(w, "#W Expected reserved 0x%x, got 0x%x.\n", 0x0880, u16)
	}
}

func dumpHcOpt(w io.Writer, u16 uint16) {
	fmt.Fprintf(w, "T1 HC_OPT_REG")
	if u16&0x0040 != 0 {
		fmt.Fprintf(w, " INIT_SKIP")
		u16 &^= 0x0040
	}
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	// Reserved bits 5:0 are 011111 per the documentation.
	if u16 != 0x001F {
		fmt.Fprintf(w, "#W Expected reserved 0x%x, got 0x%x.\n", 0x001F, u16)
	}
}

func dumpModeReg(w io.Writer, u16 uint16) {
	unexpectedBuswidth := false
	fmt.Fprintf(w, "T1 MODE_REG")
	if u16&(1<<13) != 0 {
		fmt.Fprintf(w, " NEW_MODE=BITSTREAM")
		u16 &^= 1 << 13
	}
	if u16&(1<<12) != 0 && u16&(1<<11) != 0 {
		unexpectedBuswidth = true
	} else if u16&(1<<12) != 0 {
		fmt.Fprintf(w, " BUSWIDTH=4")
		u16 &^= 1 << 12
	} else if u16&(1<<11) != 0 {
		fmt.Fprintf(w, " BUSWIDTH=2")
		u16 &^= 1 << 11
	}
	// BUSWIDTH=1 is the default and not displayed.
	if u16&(1<<9) != 0 {
		fmt.Fprintf(w, " BOOTMODE_1")
		u16 &^= 1 << 9
	}
	if u16&(1<<8) != 0 {
		fmt.Fprintf(w, " BOOTMODE_0")
		u16 &^= 1 << 8
	}
	if unexpectedBuswidth {
		fmt.Fprintf(w, " #W Unexpected bus width 0b11.")
	}
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	if u16 != 0 {
		fmt.Fprintf(w, "#W Expected reserved 0, got 0x%x.\n", u16)
	}
}

func dumpCclkFreq(w io.Writer, u16 uint16) {
	fmt.Fprintf(w, "T1 CCLK_FREQ")
	if u16&(1<<14) != 0 {
		fmt.Fprintf(w, " EXT_MCLK")
		u16 &^= 1 << 14
	}
	fmt.Fprintf(w, " MCLK_FREQ=0x%03X", u16&0x03FF)
	u16 &^= 0x03FF
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	if u16 != 0 {
		fmt.Fprintf(w, "#W Expected reserved 0, got 0x%x.\n", u16)
	}
}

func dumpSeuOpt(w io.Writer, u16 uint16) {
	fmt.Fprintf(w, "T1 SEU_OPT SEU_FREQ=0x%X", (u16&0x3FF0)>>4)
	u16 &^= 0x3FF0
	if u16&(1<<3) != 0 {
		fmt.Fprintf(w, " SEU_RUN_ON_ERR")
		u16 &^= 1 << 3
	}
	if u16&(1<<1) != 0 {
		fmt.Fprintf(w, " GLUT_MASK")
		u16 &^= 1 << 1
	}
	if u16&(1<<0) != 0 {
		fmt.Fprintf(w, " SEU_ENABLE")
		u16 &^= 1 << 0
	}
	if u16 != 0 {
		fmt.Fprintf(w, " 0x%x", u16)
	}
	fmt.Fprintf(w, "\n")
	if u16 != 0 {
		fmt.Fprintf(w, "#W Expected reserved 0, got 0x%x.\n", u16)
	}
}
