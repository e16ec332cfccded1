package report

import "math"

// distance is the Euclidean distance over the coordinates present in both
// vectors, rescaled to the full dimension.
func distance(a, b []float64) float64 {
	var (
		sum  float64
		used int
	)
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		var d = a[i] - b[i]
		sum += d * d
		used++
	}
	if used == 0 {
		return 0
	}
	return math.Sqrt(sum * float64(len(a)) / float64(used))
}

type cluster struct {
	leaves []int
}

// ClusterOrder returns the leaf order of an average-linkage (UPGMA) tree
// built over the rows of x. Ties merge the lowest-index pair first, so the
// order is deterministic.
func ClusterOrder(x [][]float64) []int {
	var n = len(x)
	if n == 0 {
		return nil
	}
	var (
		clusters = make([]*cluster, n)
		dist     = make([][]float64, n)
	)
	for i := range x {
		clusters[i] = &cluster{leaves: []int{i}}
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			var d = distance(x[i], x[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	for alive := n; alive > 1; alive-- {
		var (
			bi, bj = -1, -1
			best   = math.Inf(1)
		)
		for i := range clusters {
			if clusters[i] == nil {
				continue
			}
			for j := i + 1; j < n; j++ {
				if clusters[j] == nil {
					continue
				}
				if dist[i][j] < best {
					best, bi, bj = dist[i][j], i, j
				}
			}
		}
		if bi < 0 {
			break
		}

		var (
			ni = float64(len(clusters[bi].leaves))
			nj = float64(len(clusters[bj].leaves))
		)
		for k := range clusters {
			if clusters[k] == nil || k == bi || k == bj {
				continue
			}
			var d = (ni*dist[bi][k] + nj*dist[bj][k]) / (ni + nj)
			dist[bi][k] = d
			dist[k][bi] = d
		}
		clusters[bi].leaves = append(clusters[bi].leaves, clusters[bj].leaves...)
		clusters[bj] = nil
	}

	for _, c := range clusters {
		if c != nil {
			return c.leaves
		}
	}
	return nil
}

func transpose(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	var out = make([][]float64, len(x[0]))
	for j := range out {
		out[j] = make([]float64, len(x))
		for i := range x {
			out[j][i] = x[i][j]
		}
	}
	return out
}
