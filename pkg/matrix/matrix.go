// Package matrix holds gene x sample expression tables.
package matrix

import (
	"fmt"
	"math"
)

// Matrix is a dense gene x sample table. Missing values are NaN.
type Matrix struct {
	Genes   []string
	Samples []string

	values      [][]float64
	geneIndex   map[string]int
	sampleIndex map[string]int
}

// New builds a matrix from row-major values. values[i] belongs to genes[i]
// and must have len(samples) entries. The slices are copied.
func New(genes, samples []string, values [][]float64) (*Matrix, error) {
	if len(values) != len(genes) {
		return nil, fmt.Errorf("matrix: %d genes but %d rows", len(genes), len(values))
	}
	var m = &Matrix{
		Genes:       append([]string(nil), genes...),
		Samples:     append([]string(nil), samples...),
		values:      make([][]float64, len(values)),
		geneIndex:   make(map[string]int, len(genes)),
		sampleIndex: make(map[string]int, len(samples)),
	}
	for j, s := range samples {
		if _, dup := m.sampleIndex[s]; dup {
			return nil, fmt.Errorf("matrix: duplicate sample %q", s)
		}
		m.sampleIndex[s] = j
	}
	for i, g := range genes {
		if _, dup := m.geneIndex[g]; dup {
			return nil, fmt.Errorf("matrix: duplicate gene %q", g)
		}
		if len(values[i]) != len(samples) {
			return nil, fmt.Errorf("matrix: gene %q has %d values, want %d", g, len(values[i]), len(samples))
		}
		m.geneIndex[g] = i
		m.values[i] = append([]float64(nil), values[i]...)
	}
	return m, nil
}

// Dims returns the number of genes and samples.
func (m *Matrix) Dims() (genes, samples int) {
	return len(m.Genes), len(m.Samples)
}

// Value returns the value at gene row i and sample column j.
func (m *Matrix) Value(i, j int) float64 {
	return m.values[i][j]
}

func (m *Matrix) HasGene(gene string) bool {
	var _, ok = m.geneIndex[gene]
	return ok
}

func (m *Matrix) HasSample(sample string) bool {
	var _, ok = m.sampleIndex[sample]
	return ok
}

// GeneIndex returns the row of gene, or -1.
func (m *Matrix) GeneIndex(gene string) int {
	if i, ok := m.geneIndex[gene]; ok {
		return i
	}
	return -1
}

// Row returns a copy of the values of gene across all samples.
func (m *Matrix) Row(gene string) ([]float64, bool) {
	var i, ok = m.geneIndex[gene]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.values[i]...), true
}

// RowAt returns a copy of row i restricted to the given sample columns.
func (m *Matrix) RowAt(i int, cols []int) []float64 {
	var out = make([]float64, len(cols))
	for k, j := range cols {
		out[k] = m.values[i][j]
	}
	return out
}

// Column returns a copy of the values of sample across all genes.
func (m *Matrix) Column(sample string) ([]float64, bool) {
	var j, ok = m.sampleIndex[sample]
	if !ok {
		return nil, false
	}
	var out = make([]float64, len(m.Genes))
	for i := range m.values {
		out[i] = m.values[i][j]
	}
	return out, true
}

// SampleColumns resolves sample names to column indices.
func (m *Matrix) SampleColumns(samples []string) ([]int, error) {
	var cols = make([]int, len(samples))
	for k, s := range samples {
		var j, ok = m.sampleIndex[s]
		if !ok {
			return nil, fmt.Errorf("matrix: unknown sample %q", s)
		}
		cols[k] = j
	}
	return cols, nil
}

// Select returns a new matrix with only the given samples, in that order.
func (m *Matrix) Select(samples []string) (*Matrix, error) {
	var cols, err = m.SampleColumns(samples)
	if err != nil {
		return nil, err
	}
	var values = make([][]float64, len(m.Genes))
	for i := range m.values {
		values[i] = m.RowAt(i, cols)
	}
	return New(m.Genes, samples, values)
}

// SelectGenes returns a new matrix with only the given genes, in that order.
func (m *Matrix) SelectGenes(genes []string) (*Matrix, error) {
	var values = make([][]float64, len(genes))
	for k, g := range genes {
		var i, ok = m.geneIndex[g]
		if !ok {
			return nil, fmt.Errorf("matrix: unknown gene %q", g)
		}
		values[k] = m.values[i]
	}
	return New(genes, m.Samples, values)
}

// Missing counts NaN cells.
func (m *Matrix) Missing() int {
	var n = 0
	for _, row := range m.values {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}
