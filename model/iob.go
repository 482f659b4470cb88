/*
NAME
  iob.go

DESCRIPTION
  iob.go maps between IOB site names (the P* package pins), their tile
  coordinates, and their entry index in the bitstream's IOB data block.

AUTHORS
  The openfpga xc6bit contributors.
*/

package model

import (
	"fmt"

	"github.com/openfpga/xc6bit/xcerr"
)

// NumIOBSites is the number of bonded pads in the supported package. The
// bitstream's IOB data block has room for frame.IOBEntries entries; only
// the first NumIOBSites are bonded.
const NumIOBSites = 28

type iobSite struct {
	name string
	y, x int
}

// iobSites lists the bonded pads of the supported package in IOB data
// block order: sites P1..P14 across the top outer IO ring, P15..P28
// across the bottom outer ring.
var iobSites = func() [NumIOBSites]iobSite {
	var sites [NumIOBSites]iobSite
	i := 0
	for x := 0; x < XWidth && i < NumIOBSites/2; x++ {
		t := ColTypeAt(x)
		if t != ColLogicXM && t != ColLogicXL && t != ColCenter && t != ColBram && t != ColMacc {
			continue
		}
		sites[i] = iobSite{fmt.Sprintf("P%d", i+1), 0, x}
		sites[i+NumIOBSites/2] = iobSite{fmt.Sprintf("P%d", i+1+NumIOBSites/2), YHeight - 1, x}
		i++
	}
	return sites
}()

// IOBSiteName returns the site name of IOB data entry partIdx, or "" if
// out of range.
func IOBSiteName(partIdx int) string {
	if partIdx < 0 || partIdx >= NumIOBSites {
		return ""
	}
	return iobSites[partIdx].name
}

// FindIOBSite returns the IOB data entry index of the named site, or -1.
func FindIOBSite(name string) int {
	for i := range iobSites {
		if iobSites[i].name == name {
			return i
		}
	}
	return -1
}

// FindIOB resolves a site name to its tile coordinates and in-tile index.
func FindIOB(name string) (y, x, idx int, err error) {
	i := FindIOBSite(name)
	if i < 0 {
		return 0, 0, 0, xcerr.Newf(xcerr.UnsupportedDevice, "unknown IOB site %q", name)
	}
	return iobSites[i].y, iobSites[i].x, 0, nil
}

// EnumIOB enumerates the device's IOB sites in site order. It returns ""
// once i runs past the last site.
func EnumIOB(i int) (name string, y, x, idx int) {
	if i < 0 || i >= NumIOBSites {
		return "", 0, 0, 0
	}
	return iobSites[i].name, iobSites[i].y, iobSites[i].x, 0
}

// IOB returns the IOB configuration at (y, x, idx), allocating it if the
// tile hosts an IOB site.
func (m *Model) IOB(y, x, idx int) (*IOBConfig, error) {
	found := false
	for i := range iobSites {
		if iobSites[i].y == y && iobSites[i].x == x {
			found = true
			break
		}
	}
	if !found || idx != 0 {
		return nil, xcerr.Newf(xcerr.BadFar, "no IOB site at y%d x%d i%d", y, x, idx)
	}
	t := m.tileAt(y, x)
	if t.iob == nil {
		t.iob = &IOBConfig{}
	}
	return t.iob, nil
}
