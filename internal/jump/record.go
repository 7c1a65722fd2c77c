package jump

import "math"

// clickRecord accumulates click times per channel into fixed-capacity
// buffers padded with NaN. Counts keep increasing past capacity so the
// caller can see how many clicks were lost.
type clickRecord struct {
	times    [][]float64
	counts   []int
	capacity int
}

func newClickRecord(nChannels, capacity int) *clickRecord {
	times := make([][]float64, nChannels)
	for k := range times {
		row := make([]float64, capacity)
		for i := range row {
			row[i] = math.NaN()
		}
		times[k] = row
	}
	return &clickRecord{
		times:    times,
		counts:   make([]int, nChannels),
		capacity: capacity,
	}
}

// add records a click on channel ch and reports whether the channel's
// buffer overflowed.
func (r *clickRecord) add(ch int, t float64) (overflow bool) {
	if r.counts[ch] < r.capacity {
		r.times[ch][r.counts[ch]] = t
	}
	r.counts[ch]++
	return r.counts[ch] > r.capacity
}
