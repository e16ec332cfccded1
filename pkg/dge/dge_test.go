package dge

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OmicsExplore/pkg/matrix"
	"OmicsExplore/pkg/sampleid"
)

var nan = math.NaN()

func testMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()
	samples := []string{
		"TCGA-AA-0003-01A", "TCGA-AA-0001-11A", "TCGA-AA-0001-01A",
		"TCGA-AA-0002-01A", "TCGA-AA-0002-11A", "TCGA-AA-0003-11A",
		"TCGA-AA-0004-01A", "TCGA-AA-0005-06A",
	}
	genes := []string{"NOISE", "UP", "MID", "GAP", "FLAT"}
	values := [][]float64{
		{3, 2, 1, 2, 1, 3, 9, 9},
		{5, 0.5, 5, 5, 0.5, 0.5, 100, 100},
		{5, 1, 3, 4, 2, 3, 0, 0},
		{1, nan, 2, 3, nan, nan, 1, 1},
		{2, 2, 2, 2, 2, 2, 7, 7},
	}
	m, err := matrix.New(genes, samples, values)
	require.NoError(t, err)
	return m
}

func TestPerformDGE(t *testing.T) {
	result, err := PerformDGE(testMatrix(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"TCGA-AA-0001-01A", "TCGA-AA-0002-01A", "TCGA-AA-0003-01A"}, result.MatchedTumor)
	assert.Equal(t, []string{"TCGA-AA-0001-11A", "TCGA-AA-0002-11A", "TCGA-AA-0003-11A"}, result.MatchedNormal)
	assert.Equal(t, 2, result.Dropped)
	require.Len(t, result.Records, 3)

	up, ok := result.Record("UP")
	require.True(t, ok)
	assert.Equal(t, 4.5, up.Log2FC)
	assert.Equal(t, 0.0, up.PValue)
	assert.Equal(t, 3, up.NTumor)
	assert.Equal(t, 3, up.NNormal)

	noise, ok := result.Record("NOISE")
	require.True(t, ok)
	assert.InDelta(t, 0, noise.Log2FC, 1e-12)
	assert.InDelta(t, 1, noise.PValue, 1e-12)

	_, ok = result.Record("GAP")
	assert.False(t, ok)

	top := result.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, "UP", top[0].Gene)
	assert.Len(t, result.Top(50), 3)
	assert.Equal(t, 1, result.Significant(0.05))
}

func TestPerformDGEFDR(t *testing.T) {
	result, err := PerformDGE(testMatrix(t), nil)
	require.NoError(t, err)

	sorted := result.SortedByFDR()
	for i, rec := range sorted {
		assert.GreaterOrEqual(t, rec.FDR, rec.PValue, rec.Gene)
		assert.LessOrEqual(t, rec.FDR, 1.0, rec.Gene)
		if i > 0 {
			assert.GreaterOrEqual(t, rec.FDR, sorted[i-1].FDR)
			if rec.PValue > sorted[i-1].PValue {
				assert.GreaterOrEqual(t, rec.FDR, sorted[i-1].FDR)
			}
		}
	}
}

func TestMatchedPairs(t *testing.T) {
	t.Run("equal patient sets", func(t *testing.T) {
		tumor, normal, err := MatchedPairs(testMatrix(t).Samples)
		require.NoError(t, err)
		require.Equal(t, len(tumor), len(normal))

		tp, err := sampleid.Patients(tumor)
		require.NoError(t, err)
		np, err := sampleid.Patients(normal)
		require.NoError(t, err)
		assert.Equal(t, tp, np)
	})

	t.Run("no matched pairs", func(t *testing.T) {
		_, _, err := MatchedPairs([]string{"TCGA-AA-0001-01A", "TCGA-AA-0002-11A", "TCGA-AA-0003-06A"})
		var target *EmptyCohortError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, 1, target.Tumors)
		assert.Equal(t, 1, target.Normals)
	})

	t.Run("malformed identifier", func(t *testing.T) {
		_, _, err := MatchedPairs([]string{"TCGA-AA-0001-01A", "sample_7"})
		var target *sampleid.MalformedError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "sample_7", target.Raw)
	})
}

func TestPairs(t *testing.T) {
	result := &Result{
		MatchedTumor:  []string{"TCGA-AA-0001-01A", "TCGA-AA-0001-01B", "TCGA-AA-0002-01A"},
		MatchedNormal: []string{"TCGA-AA-0001-11A", "TCGA-AA-0002-11A"},
	}
	assert.Equal(t, []Pair{
		{Patient: "0001", Tumor: []string{"TCGA-AA-0001-01A", "TCGA-AA-0001-01B"}, Normal: []string{"TCGA-AA-0001-11A"}},
		{Patient: "0002", Tumor: []string{"TCGA-AA-0002-01A"}, Normal: []string{"TCGA-AA-0002-11A"}},
	}, result.Pairs())
}

func TestPerformDGEEmptyCohort(t *testing.T) {
	m, err := matrix.New(
		[]string{"G1"},
		[]string{"TCGA-AA-0001-01A", "TCGA-AA-0002-01A"},
		[][]float64{{1, 2}},
	)
	require.NoError(t, err)

	_, err = PerformDGE(m, nil)
	var target *EmptyCohortError
	assert.True(t, errors.As(err, &target))
}

func TestWriteTSV(t *testing.T) {
	result, err := PerformDGE(testMatrix(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.WriteTSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "gene\tlog2fc\tp_value\tfdr\tn_tumor\tn_normal", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "UP\t4.5\t0\t0\t"))

	records, err := ReadTSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, result.SortedByFDR(), records)
}
