// Package sample selects which rows of a table get checksummed when full
// validation is too costly. Strategies are pluggable and isolated from the
// pipeline so that 100% sampling is trivially available to tests.
package sample

import "math/rand"

// Strategy picks the indexes of the rows to checksum out of n rows. The
// returned indexes are strictly increasing.
type Strategy interface {
	Pick(n int) []int
}

// All checksums every row.
type All struct{}

func (All) Pick(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Percent keeps roughly p percent of rows, chosen uniformly at random from a
// seeded source so a run is reproducible.
type Percent struct {
	P    float64 // 0..100
	Seed int64
}

func (s Percent) Pick(n int) []int {
	if s.P >= 100 {
		return All{}.Pick(n)
	}
	if s.P <= 0 || n == 0 {
		return nil
	}
	rnd := rand.New(rand.NewSource(s.Seed))
	idx := make([]int, 0, n)
	threshold := s.P / 100
	for i := 0; i < n; i++ {
		if rnd.Float64() < threshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// FixedCount keeps at most Count rows at a fixed interval across the table,
// always including the first row when Count > 0.
type FixedCount struct {
	Count int
}

func (s FixedCount) Pick(n int) []int {
	if s.Count <= 0 || n == 0 {
		return nil
	}
	if s.Count >= n {
		return All{}.Pick(n)
	}
	idx := make([]int, 0, s.Count)
	step := float64(n) / float64(s.Count)
	for i := 0; i < s.Count; i++ {
		idx = append(idx, int(float64(i)*step))
	}
	return idx
}

// ForConfig builds a strategy from the sampling configuration: a positive
// fixed count wins over a percentage; neither set means sample everything.
func ForConfig(percent float64, count int, seed int64) Strategy {
	switch {
	case count > 0:
		return FixedCount{Count: count}
	case percent > 0 && percent < 100:
		return Percent{P: percent, Seed: seed}
	default:
		return All{}
	}
}
