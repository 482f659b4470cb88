/*
NAME
  iob.go

DESCRIPTION
  iob.go round-trips I/O block configuration between the model and the
  IOB data block at the end of the frame buffer: one packed 64-bit entry
  per pad, plus a single device-global marker bit asserted whenever at
  least one IOB is instantiated.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package iob extracts and emits I/O block attributes.
package iob

import (
	"github.com/openfpga/xc6bit/frame"
	"github.com/openfpga/xc6bit/model"
	"github.com/openfpga/xc6bit/xclog"
)

// Field layout of a packed 64-bit IOB entry.
const (
	MaskInstantiated uint64 = 0xF000000000000000
	Instantiated     uint64 = 0x9000000000000000

	MaskIO               uint64 = 0x00FF000000000000
	InputLVCMOS33        uint64 = 0x0010000000000000
	OutputLVCMOS33Drive2 uint64 = 0x0021000000000000
	OutputLVCMOS33Drive4 uint64 = 0x0022000000000000
	OutputLVCMOS33Drive6 uint64 = 0x0023000000000000
	OutputLVCMOS33Drive8 uint64 = 0x0024000000000000
	OutputLVCMOS33Drive12 uint64 = 0x0025000000000000
	OutputLVCMOS33Drive16 uint64 = 0x0026000000000000
	OutputLVCMOS33Drive24 uint64 = 0x0027000000000000

	MaskIMux uint64 = 0x0000F00000000000
	IMuxI    uint64 = 0x0000100000000000
	IMuxIB   uint64 = 0x0000200000000000

	MaskOPinW uint64 = 0x0000080000000000

	MaskSlew    uint64 = 0x0000000000000060
	SlewSlow    uint64 = 0x0000000000000000
	SlewFast    uint64 = 0x0000000000000020
	SlewQuietIO uint64 = 0x0000000000000040

	MaskSuspend         uint64 = 0x000000000000000E
	SuspLastVal         uint64 = 0x0000000000000000
	Susp3State          uint64 = 0x0000000000000002
	Susp3StatePullup    uint64 = 0x0000000000000004
	Susp3StatePulldown  uint64 = 0x0000000000000006
	Susp3StateKeeper    uint64 = 0x0000000000000008
	Susp3StateOctOn     uint64 = 0x000000000000000A
)

// The device-global "first IOB" marker bit. It lives on the right-side
// major only; the other sides are an open question carried over from the
// hardware observations.
const (
	markerRow   = 0
	markerMinor = 22
	markerBit   = 64*15 + frame.HClkBits + 4
)

const pkg = "iob: "

var driveToBits = map[int]uint64{
	2:  OutputLVCMOS33Drive2,
	4:  OutputLVCMOS33Drive4,
	6:  OutputLVCMOS33Drive6,
	8:  OutputLVCMOS33Drive8,
	12: OutputLVCMOS33Drive12,
	16: OutputLVCMOS33Drive16,
	24: OutputLVCMOS33Drive24,
}

var bitsToDrive = func() map[uint64]int {
	m := make(map[uint64]int)
	for d, b := range driveToBits {
		m[b] = d
	}
	return m
}()

var slewToBits = map[model.Slew]uint64{
	model.SlewSlow:    SlewSlow,
	model.SlewFast:    SlewFast,
	model.SlewQuietIO: SlewQuietIO,
}

var suspToBits = map[model.Suspend]uint64{
	model.SuspLastVal:         SuspLastVal,
	model.Susp3State:          Susp3State,
	model.Susp3StatePullup:    Susp3StatePullup,
	model.Susp3StatePulldown:  Susp3StatePulldown,
	model.Susp3StateKeeper:    Susp3StateKeeper,
	model.Susp3StateOctOn:     Susp3StateOctOn,
}

// MarkerSet reports whether the first-IOB marker bit is set.
func MarkerSet(buf *frame.Buffer) bool {
	return buf.Bit(markerRow, frame.RightsideMajor, markerMinor, markerBit)
}

// Emit packs every instantiated IOB of the model into the frame buffer's
// IOB data block and asserts the first-IOB marker.
func Emit(m *model.Model, buf *frame.Buffer, log xclog.Log) error {
	firstIOB := false
	for i := 0; ; i++ {
		name, y, x, idx := model.EnumIOB(i)
		if name == "" {
			break
		}
		cfg, err := m.IOB(y, x, idx)
		if err != nil {
			return err
		}
		if !cfg.Instantiated {
			continue
		}
		partIdx := model.FindIOBSite(name)
		if partIdx < 0 {
			log(xclog.WarnLevel, pkg+"no data entry for site", "site", name)
			continue
		}

		if !firstIOB {
			firstIOB = true
			buf.SetBit(markerRow, frame.RightsideMajor, markerMinor, markerBit)
		}

		u64 := Instantiated
		switch {
		case cfg.IStandard != "":
			if cfg.IMux == model.IMuxNone || cfg.BypassMux == model.IMuxNone ||
				cfg.IStandard != model.IOLVCMOS33 || cfg.OStandard != "" {
				log(xclog.WarnLevel, pkg+"inconsistent input IOB attributes", "site", name)
			}
			u64 |= InputLVCMOS33
			switch cfg.IMux {
			case model.IMuxI:
				u64 |= IMuxI
			case model.IMuxIB:
				u64 |= IMuxIB
			default:
				log(xclog.WarnLevel, pkg+"unknown I_mux", "site", name)
			}

		case cfg.OStandard != "":
			if cfg.Drive == 0 || cfg.Slew == model.SlewNone || cfg.Suspend == model.SuspNone ||
				cfg.OStandard != model.IOLVCMOS33 {
				log(xclog.WarnLevel, pkg+"inconsistent output IOB attributes", "site", name)
			}
			// O_PINW goes on whether or not a net reaches the pin.
			u64 |= MaskOPinW
			bits, ok := driveToBits[cfg.Drive]
			if !ok {
				log(xclog.WarnLevel, pkg+"unknown drive strength", "site", name, "drive", cfg.Drive)
			}
			u64 |= bits
			bits, ok = slewToBits[cfg.Slew]
			if !ok {
				log(xclog.WarnLevel, pkg+"unknown slew", "site", name, "slew", cfg.Slew)
			}
			u64 |= bits
			bits, ok = suspToBits[cfg.Suspend]
			if !ok {
				log(xclog.WarnLevel, pkg+"unknown suspend mode", "site", name, "suspend", cfg.Suspend)
			}
			u64 |= bits

		default:
			log(xclog.WarnLevel, pkg+"IOB neither input nor output", "site", name)
		}

		buf.SetU64(frame.IOBDataStart+partIdx*frame.IOBEntryLen, u64)
	}
	return nil
}

// Extract walks the IOB data block and populates the model with the
// decoded pad attributes, clearing the consumed entries and the marker
// bit.
func Extract(m *model.Model, buf *frame.Buffer, log xclog.Log) error {
	firstIOB := false
	for i := 0; i < frame.IOBEntries; i++ {
		u64 := buf.GetU64(frame.IOBDataStart + i*frame.IOBEntryLen)
		if u64 == 0 {
			continue
		}

		name := model.IOBSiteName(i)
		if name == "" {
			log(xclog.WarnLevel, pkg+"data entry for unbonded pad", "entry", i)
			continue
		}
		y, x, idx, err := model.FindIOB(name)
		if err != nil {
			return err
		}

		if !firstIOB {
			firstIOB = true
			if !MarkerSet(buf) {
				log(xclog.WarnLevel, pkg+"first-IOB marker bit missing")
			}
			buf.ClearBit(markerRow, frame.RightsideMajor, markerMinor, markerBit)
		}
		if model.ColTypeAt(x) != model.ColRightIO {
			log(xclog.WarnLevel, pkg+"IOB not on the side carrying the first-IOB marker", "site", name, "y", y)
		}

		if u64&MaskInstantiated == Instantiated {
			u64 &^= MaskInstantiated
		} else {
			log(xclog.WarnLevel, pkg+"entry without instantiation bits", "site", name)
		}

		var cfg model.IOBConfig
		switch io := u64 & MaskIO; {
		case io == InputLVCMOS33:
			u64 &^= MaskIO
			cfg.IStandard = model.IOLVCMOS33
			cfg.BypassMux = model.IMuxI
			switch u64 & MaskIMux {
			case IMuxI:
				u64 &^= MaskIMux
				cfg.IMux = model.IMuxI
			case IMuxIB:
				u64 &^= MaskIMux
				cfg.IMux = model.IMuxIB
			default:
				log(xclog.WarnLevel, pkg+"unknown I_mux bits", "site", name)
			}

		case bitsToDrive[io] != 0:
			cfg.Drive = bitsToDrive[io]
			u64 &^= MaskIO
			u64 &^= MaskOPinW
			cfg.OStandard = model.IOLVCMOS33
			cfg.OUsed = true
			switch u64 & MaskSlew {
			case SlewSlow:
				cfg.Slew = model.SlewSlow
			case SlewFast:
				cfg.Slew = model.SlewFast
			case SlewQuietIO:
				cfg.Slew = model.SlewQuietIO
			}
			u64 &^= MaskSlew
			switch u64 & MaskSuspend {
			case SuspLastVal:
				cfg.Suspend = model.SuspLastVal
			case Susp3State:
				cfg.Suspend = model.Susp3State
			case Susp3StatePullup:
				cfg.Suspend = model.Susp3StatePullup
			case Susp3StatePulldown:
				cfg.Suspend = model.Susp3StatePulldown
			case Susp3StateKeeper:
				cfg.Suspend = model.Susp3StateKeeper
			case Susp3StateOctOn:
				cfg.Suspend = model.Susp3StateOctOn
			}
			u64 &^= MaskSuspend

		default:
			log(xclog.WarnLevel, pkg+"unknown IO field", "site", name, "bits", io)
		}

		if u64 != 0 {
			// Residual bits after all known fields: leave the entry
			// alone so the residual scan reports it.
			log(xclog.WarnLevel, pkg+"residual bits in IOB entry", "site", name, "bits", u64)
			continue
		}
		buf.SetU64(frame.IOBDataStart+i*frame.IOBEntryLen, 0)
		dev, err := m.IOB(y, x, idx)
		if err != nil {
			return err
		}
		*dev = cfg
		dev.Instantiated = true
	}
	return nil
}
