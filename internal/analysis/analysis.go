package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// EnsembleMean averages an expectation value over trajectories at each
// save time. expects is [ntraj][nsave]; only the real part is averaged,
// which is exact for Hermitian observables.
func EnsembleMean(expects [][]complex128) []float64 {
	if len(expects) == 0 {
		return nil
	}
	nSave := len(expects[0])
	mean := make([]float64, nSave)
	col := make([]float64, len(expects))
	for k := 0; k < nSave; k++ {
		for i, traj := range expects {
			col[i] = real(traj[k])
		}
		mean[k] = stat.Mean(col, nil)
	}
	return mean
}

// WeightedMean combines the deterministic no-click trajectory with the
// clicked ensemble: pnc*noclick + (1-pnc)*mean(clicked). noclick is the
// per-save expectation of trajectory 0, clicked is [ntraj-1][nsave].
func WeightedMean(pnc float64, noclick []complex128, clicked [][]complex128) []float64 {
	mean := EnsembleMean(clicked)
	out := make([]float64, len(noclick))
	for k := range noclick {
		m := 0.0
		if mean != nil {
			m = mean[k]
		}
		out[k] = pnc*real(noclick[k]) + (1-pnc)*m
	}
	return out
}

// ClickRate returns the mean number of clicks per trajectory on one
// channel divided by the record duration. nclicks is the per-trajectory
// click count of the channel.
func ClickRate(nclicks []int, duration float64) float64 {
	if len(nclicks) == 0 || duration <= 0 {
		return 0
	}
	total := 0
	for _, n := range nclicks {
		total += n
	}
	return float64(total) / (float64(len(nclicks)) * duration)
}

// WaitingTimes returns the sorted inter-click intervals of one
// trajectory, merging the NaN-padded click-time buffers of all channels.
func WaitingTimes(clickTimes [][]float64) []float64 {
	var times []float64
	for _, ch := range clickTimes {
		for _, t := range ch {
			if !math.IsNaN(t) {
				times = append(times, t)
			}
		}
	}
	if len(times) < 2 {
		return nil
	}
	sort.Float64s(times)
	waits := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		waits[i-1] = times[i] - times[i-1]
	}
	return waits
}
