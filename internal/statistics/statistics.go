// Package statistics provides the descriptive statistics the replay
// analyzer is built on: streaming mean/variance plus order statistics over
// a retained sample.
package statistics

import (
	"math"
	"sort"
)

// Sample accumulates float64 observations. The zero value is ready to use.
type Sample struct {
	n      int
	sum    float64
	sum2   float64 // sum of squares, for single-pass variance
	max    float64
	values []float64
}

// Add incorporates one observation.
func (s *Sample) Add(v float64) {
	s.n++
	s.sum += v
	s.sum2 += v * v
	if s.n == 1 || v > s.max {
		s.max = v
	}
	s.values = append(s.values, v)
}

// Count returns the number of observations.
func (s *Sample) Count() int {
	return s.n
}

// Sum returns the total of all observations.
func (s *Sample) Sum() float64 {
	return s.sum
}

// Max returns the largest observation, or 0 for an empty sample.
func (s *Sample) Max() float64 {
	return s.max
}

// Mean returns the arithmetic mean, or 0 for an empty sample.
func (s *Sample) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

// Variance returns the sample variance (n-1 denominator).
func (s *Sample) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.sum2 - float64(s.n)*mean*mean) / float64(s.n-1)
}

// StdDev returns the sample standard deviation.
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Sample) StdError() float64 {
	if s.n == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.n))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the middle observation (mean of the middle two for even
// counts), or 0 for an empty sample.
func (s *Sample) Median() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at percentile p in [0,1] using linear
// interpolation between the closest ranks.
func (s *Sample) Percentile(p float64) float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if lower < 0 {
		return sorted[0]
	}
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Sample) sorted() []float64 {
	sorted := make([]float64, len(s.values))
	copy(sorted, s.values)
	sort.Float64s(sorted)
	return sorted
}
