package stats

import (
	"math"
	"sort"
)

// BenjaminiHochberg adjusts p-values with the Benjamini-Hochberg step-up
// procedure. The result is in input order, monotone in p and capped at 1.
// NaN inputs stay NaN and do not count towards the number of tests.
func BenjaminiHochberg(p []float64) []float64 {
	var (
		adjusted = make([]float64, len(p))
		order    = make([]int, 0, len(p))
	)
	for i, v := range p {
		adjusted[i] = math.NaN()
		if !math.IsNaN(v) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return p[order[i]] < p[order[j]] })

	var (
		m       = float64(len(order))
		running = 1.0
	)
	for rank := len(order); rank >= 1; rank-- {
		var i = order[rank-1]
		var q = p[i] * m / float64(rank)
		if q < running {
			running = q
		}
		adjusted[i] = running
	}
	return adjusted
}
