package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ZScore standardizes x by its mean and sample standard deviation, both
// computed over the non-missing values. Missing values stay NaN. A row with
// no spread maps to 0.
func ZScore(x []float64) []float64 {
	var (
		out  = make([]float64, len(x))
		vals = DropNaN(x)
	)
	if len(vals) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	var mean, sd = stat.MeanStdDev(vals, nil)
	for i, v := range x {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case sd == 0 || math.IsNaN(sd):
			out[i] = 0
		default:
			out[i] = (v - mean) / sd
		}
	}
	return out
}
