package bench

import "math"

// Stats summarizes repeated measurements. Best is the minimum.
type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

// CalcStats returns the sample statistics of values. Std is zero for fewer
// than two values.
func CalcStats(values []float64) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}

	best := values[0]
	sum := 0.0
	for _, v := range values {
		if v < best {
			best = v
		}
		sum += v
	}
	mean := sum / float64(s.N)

	variance := 0.0
	if s.N >= 2 {
		for _, v := range values {
			d := v - mean
			variance += d * d
		}
		variance /= float64(s.N - 1)
	}

	s.Best = best
	s.Mean = mean
	s.Std = math.Sqrt(variance)
	return s
}
