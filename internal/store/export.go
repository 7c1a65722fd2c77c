// Package store serializes solve results for external analysis.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/qtraj"
	"github.com/san-kum/qtraj/internal/analysis"
)

// BatchData is the serialized form of one batch element. Expectation
// values are split into real and imaginary parts; states are omitted.
type BatchData struct {
	Expects     [][][]float64 `json:"expects_re"`
	ExpectsImag [][][]float64 `json:"expects_im"`
	ClickTimes  [][][]float64 `json:"click_times"`
	NClicks     [][]int       `json:"nclicks"`
	NoClickProb []float64     `json:"noclick_prob,omitempty"`
}

// ExportData is the top-level JSON layout.
type ExportData struct {
	BatchShape []int       `json:"batch_shape"`
	SaveTimes  []float64   `json:"save_times"`
	NTraj      int         `json:"ntraj"`
	Batches    []BatchData `json:"batches"`
}

// trimClicks drops the NaN padding; JSON has no encoding for NaN.
func trimClicks(clickTimes [][][]float64) [][][]float64 {
	out := make([][][]float64, len(clickTimes))
	for ti, chans := range clickTimes {
		out[ti] = make([][]float64, len(chans))
		for ci, times := range chans {
			kept := []float64{}
			for _, t := range times {
				if !math.IsNaN(t) {
					kept = append(kept, t)
				}
			}
			out[ti][ci] = kept
		}
	}
	return out
}

func exportData(res *qtraj.Result) ExportData {
	data := ExportData{
		BatchShape: res.BatchShape,
		SaveTimes:  res.SaveTimes,
		NTraj:      len(res.Keys),
		Batches:    make([]BatchData, len(res.Batches)),
	}
	for i, b := range res.Batches {
		bd := BatchData{
			Expects:     make([][][]float64, len(b.Expects)),
			ExpectsImag: make([][][]float64, len(b.Expects)),
			ClickTimes:  trimClicks(b.ClickTimes),
			NClicks:     b.NClicks,
			NoClickProb: b.NoClickProb,
		}
		for ti, trajExp := range b.Expects {
			bd.Expects[ti] = make([][]float64, len(trajExp))
			bd.ExpectsImag[ti] = make([][]float64, len(trajExp))
			for oi, row := range trajExp {
				re := make([]float64, len(row))
				im := make([]float64, len(row))
				for k, v := range row {
					re[k] = real(v)
					im[k] = imag(v)
				}
				bd.Expects[ti][oi] = re
				bd.ExpectsImag[ti][oi] = im
			}
		}
		data.Batches[i] = bd
	}
	return data
}

// ExportJSON writes the full result to path as indented JSON.
func ExportJSON(path string, res *qtraj.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(res))
}

// ExportCSV writes a save-time table to path: per batch element and
// observable, the ensemble-mean expectation value.
func ExportCSV(path string, res *qtraj.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	nObs := 0
	if len(res.Batches) > 0 && len(res.Batches[0].Expects) > 0 {
		nObs = len(res.Batches[0].Expects[0])
	}

	header := []string{"time"}
	for bi := range res.Batches {
		for oi := 0; oi < nObs; oi++ {
			header = append(header, fmt.Sprintf("batch%d_obs%d", bi, oi))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	means := make([][][]float64, len(res.Batches))
	for bi, b := range res.Batches {
		means[bi] = make([][]float64, nObs)
		for oi := 0; oi < nObs; oi++ {
			perTraj := make([][]complex128, len(b.Expects))
			for ti := range b.Expects {
				perTraj[ti] = b.Expects[ti][oi]
			}
			means[bi][oi] = analysis.EnsembleMean(perTraj)
		}
	}

	for k, tk := range res.SaveTimes {
		row := []string{fmt.Sprintf("%g", tk)}
		for bi := range res.Batches {
			for oi := 0; oi < nObs; oi++ {
				row = append(row, fmt.Sprintf("%g", means[bi][oi][k]))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
