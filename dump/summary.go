/*
NAME
  summary.go

DESCRIPTION
  summary.go appends a short statistical footer to a dump: switch counts
  per routing tile and LUT occupancy per logic site, summarized over the
  extracted model.

AUTHORS
  The openfpga xc6bit contributors.
*/

package dump

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/openfpga/xc6bit/model"
)

// Summary prints aggregate statistics over an extracted model: the mean
// and standard deviation of enabled switches per routing tile, and the
// fraction of logic sites with at least one LUT configured.
func Summary(w io.Writer, m *model.Model) {
	var perTile []float64
	for x := 0; x < model.XWidth; x++ {
		if !model.IsRoutingCol(x) {
			continue
		}
		for y := 0; y < model.YHeight; y++ {
			if _, pos, ok := model.IsInRow(y); !ok || pos == 8 {
				continue
			}
			perTile = append(perTile, float64(len(m.UsedSwitches(y, x))))
		}
	}

	logicSites, occupied := 0, 0
	for x := 0; x < model.XWidth; x++ {
		if !model.IsXMCol(x) {
			continue
		}
		for y := model.TopIOTiles; y < model.YHeight-model.BotIOTiles; y++ {
			if !m.HasLogicM(y, x) {
				continue
			}
			logicSites++
			used := false
			for _, sub := range []model.LogicSub{model.LogM, model.LogX} {
				cfg, err := m.Logic(y, x, sub)
				if err != nil {
					continue
				}
				for _, lut := range cfg.LUTs {
					if lut != "" {
						used = true
					}
				}
			}
			if used {
				occupied++
			}
		}
	}

	mean, std := stat.MeanStdDev(perTile, nil)
	fmt.Fprintf(w, "summary tiles %d switches_mean %.4f switches_stddev %.4f\n",
		len(perTile), mean, std)
	if logicSites > 0 {
		fmt.Fprintf(w, "summary logic_sites %d lut_occupancy %.4f\n",
			logicSites, float64(occupied)/float64(logicSites))
	}
	fmt.Fprintf(w, "summary nets %d\n", len(m.Nets()))
}
