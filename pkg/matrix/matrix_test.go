package matrix

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expr = "sample\tTCGA-AA-0001-01A\tTCGA-AA-0001-11A\tTCGA-AA-0002-01A\n" +
	"GENE_1\t1.5\t0.5\t\n" +
	"GENE_2\t2.5\tNA\t3\n"

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(expr))
	require.NoError(t, err)

	genes, samples := m.Dims()
	assert.Equal(t, 2, genes)
	assert.Equal(t, 3, samples)
	assert.Equal(t, []string{"GENE_1", "GENE_2"}, m.Genes)
	assert.Equal(t, 2, m.Missing())

	row, ok := m.Row("GENE_2")
	require.True(t, ok)
	assert.Equal(t, 2.5, row[0])
	assert.True(t, math.IsNaN(row[1]))
	assert.Equal(t, 3.0, row[2])

	col, ok := m.Column("TCGA-AA-0001-11A")
	require.True(t, ok)
	assert.Equal(t, 0.5, col[0])
}

func TestParseErrors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "",
		"no samples":     "gene\n",
		"ragged":         "gene\tS1\tS2\nG1\t1\n",
		"not a number":   "gene\tS1\nG1\tabc\n",
		"duplicate gene": "gene\tS1\nG1\t1\nG1\t2\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestSelectDoesNotAlias(t *testing.T) {
	m, err := Parse(strings.NewReader(expr))
	require.NoError(t, err)

	sub, err := m.Select([]string{"TCGA-AA-0002-01A", "TCGA-AA-0001-01A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TCGA-AA-0002-01A", "TCGA-AA-0001-01A"}, sub.Samples)
	row, _ := sub.Row("GENE_1")
	assert.True(t, math.IsNaN(row[0]))
	assert.Equal(t, 1.5, row[1])

	sub.values[0][1] = 99
	orig, _ := m.Row("GENE_1")
	assert.Equal(t, 1.5, orig[0])

	_, err = m.Select([]string{"TCGA-AA-0009-01A"})
	assert.Error(t, err)
}

func TestSelectGenes(t *testing.T) {
	m, err := Parse(strings.NewReader(expr))
	require.NoError(t, err)
	sub, err := m.SelectGenes([]string{"GENE_2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GENE_2"}, sub.Genes)
	assert.Equal(t, m.Samples, sub.Samples)
	assert.Equal(t, -1, sub.GeneIndex("GENE_1"))
}

func TestRead(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "expr.tsv")
	require.NoError(t, os.WriteFile(path, []byte(expr), 0644))
	m, err := Read(path)
	require.NoError(t, err)
	assert.True(t, m.HasGene("GENE_1"))
	assert.True(t, m.HasSample("TCGA-AA-0002-01A"))
}
