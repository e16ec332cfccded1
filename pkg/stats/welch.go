// Package stats implements the hypothesis tests and estimators used by the
// expression and survival analyses.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTest is the outcome of a two-sample t-test. P is NaN when the test is
// undefined for the data.
type TTest struct {
	T  float64
	DF float64
	P  float64

	N1, N2       int
	Mean1, Mean2 float64
}

// DropNaN returns the non-missing values of x.
func DropNaN(x []float64) []float64 {
	var out = make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean of the non-missing values; NaN when there are none.
func Mean(x []float64) float64 {
	var v = DropNaN(x)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// WelchTTest runs a two-sided two-sample t-test without assuming equal
// variances. Missing values are dropped from each group independently.
//
// Each group needs at least two observations. When both groups have zero
// variance the statistic is infinite (p = 0) if the means differ and
// undefined (p = NaN) if they are equal. An undefined Welch-Satterthwaite
// df is replaced by 1.
func WelchTTest(a, b []float64) TTest {
	var (
		x = DropNaN(a)
		y = DropNaN(b)
		r = TTest{N1: len(x), N2: len(y), T: math.NaN(), DF: math.NaN(), P: math.NaN()}
	)
	if len(x) > 0 {
		r.Mean1 = stat.Mean(x, nil)
	} else {
		r.Mean1 = math.NaN()
	}
	if len(y) > 0 {
		r.Mean2 = stat.Mean(y, nil)
	} else {
		r.Mean2 = math.NaN()
	}
	if len(x) < 2 || len(y) < 2 {
		return r
	}

	var (
		_, var1 = stat.MeanVariance(x, nil)
		_, var2 = stat.MeanVariance(y, nil)
		n1      = float64(len(x))
		n2      = float64(len(y))
		v1      = var1 / n1
		v2      = var2 / n2
		diff    = r.Mean1 - r.Mean2
	)

	r.DF = (v1 + v2) * (v1 + v2) / (v1*v1/(n1-1) + v2*v2/(n2-1))
	if math.IsNaN(r.DF) {
		r.DF = 1
	}

	var denom = math.Sqrt(v1 + v2)
	if denom == 0 {
		if diff == 0 {
			return r
		}
		r.T = math.Inf(1)
		if diff < 0 {
			r.T = math.Inf(-1)
		}
		r.P = 0
		return r
	}

	r.T = diff / denom
	var dist = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: r.DF}
	r.P = math.Min(1, 2*dist.Survival(math.Abs(r.T)))
	return r
}
