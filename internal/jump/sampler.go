package jump

import "github.com/san-kum/qtraj/prng"

// Channel rates below this floor are treated as zero when selecting a
// channel; a crossing with no rate to attribute it to is discarded.
const minTotalRate = 1e-300

// sampler draws the survival thresholds and channel choices of one
// trajectory from its dedicated stream. With rmin > 0 the first
// threshold is restricted to [rmin, 1), which is how smart sampling
// confines non-deterministic trajectories to the click region.
type sampler struct {
	stream *prng.Stream
	rmin   float64
	drawn  bool
}

func newSampler(stream *prng.Stream, rmin float64) *sampler {
	return &sampler{stream: stream, rmin: rmin}
}

// nextThreshold draws the next survival threshold.
func (s *sampler) nextThreshold() float64 {
	u := s.stream.Uniform()
	if !s.drawn {
		s.drawn = true
		return s.rmin + u*(1-s.rmin)
	}
	return u
}

// pickChannel selects a jump channel proportionally to the given rates.
// It reports false when the total rate is numerically zero, in which
// case no draw is consumed.
func (s *sampler) pickChannel(rates []float64) (int, bool) {
	total := 0.0
	for _, r := range rates {
		total += r
	}
	if total < minTotalRate {
		return 0, false
	}
	u := s.stream.Uniform() * total
	acc := 0.0
	for k, r := range rates {
		acc += r
		if u < acc {
			return k, true
		}
	}
	return len(rates) - 1, true
}
