// Package report renders analysis results as charts, plots and workbooks.
package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"OmicsExplore/pkg/dge"
	"OmicsExplore/pkg/matrix"
	"OmicsExplore/pkg/stats"
)

const HeatmapFile = "diffexp_heatmap.html"

var heatmapColors = []string{"#313695", "#4575b4", "#abd9e9", "#ffffbf", "#fdae61", "#d73027", "#a50026"}

// HeatmapData selects the topN lowest-FDR genes over the matched tumor then
// matched normal columns, z-scores each gene row and orders rows and columns
// by average-linkage clustering.
func HeatmapData(m *matrix.Matrix, result *dge.Result, topN int) (*matrix.Matrix, error) {
	var top = result.Top(topN)
	if len(top) == 0 {
		return nil, errors.New("heatmap: no tested genes")
	}
	var genes = make([]string, len(top))
	for i, rec := range top {
		genes[i] = rec.Gene
	}
	var columns = append(append([]string(nil), result.MatchedTumor...), result.MatchedNormal...)

	sub, err := m.SelectGenes(genes)
	if err != nil {
		return nil, err
	}
	sub, err = sub.Select(columns)
	if err != nil {
		return nil, err
	}

	var z = make([][]float64, len(genes))
	for i, g := range genes {
		var row, _ = sub.Row(g)
		z[i] = stats.ZScore(row)
	}

	var (
		rowOrder = ClusterOrder(z)
		colOrder = ClusterOrder(transpose(z))
		rg       = make([]string, len(rowOrder))
		cs       = make([]string, len(colOrder))
		values   = make([][]float64, len(rowOrder))
	)
	for k, j := range colOrder {
		cs[k] = columns[j]
	}
	for k, i := range rowOrder {
		rg[k] = genes[i]
		values[k] = make([]float64, len(colOrder))
		for c, j := range colOrder {
			values[k][c] = z[i][j]
		}
	}
	return matrix.New(rg, cs, values)
}

// NewHeatmap builds the chart for a z-scored gene x sample matrix.
func NewHeatmap(z *matrix.Matrix, topN int) *charts.HeatMap {
	var (
		hm        = charts.NewHeatMap()
		items     = make([]opts.HeatMapData, 0, len(z.Genes)*len(z.Samples))
		lim       = 0.0
		nGenes, _ = z.Dims()
	)
	for i := 0; i < nGenes; i++ {
		for j := range z.Samples {
			var v = z.Value(i, j)
			if math.IsNaN(v) {
				items = append(items, opts.HeatMapData{Value: [3]interface{}{j, i, "-"}})
				continue
			}
			lim = math.Max(lim, math.Abs(v))
			items = append(items, opts.HeatMapData{Value: [3]interface{}{j, i, math.Round(v*1000) / 1000}})
		}
	}
	if lim == 0 {
		lim = 1
	}

	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Differential expression heatmap",
			Width:     "1400px",
			Height:    "1800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Top %d Differentially expressed genes (Tumor vs. Matched Normal)", topN),
			Subtitle: "row z-score, average-linkage ordering",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithGridOpts(opts.Grid{Left: "10%", Bottom: "12%"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      z.Samples,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Rotate: 90, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      z.Genes,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Interval: "0"},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(-lim),
			Max:        float32(lim),
			Orient:     "horizontal",
			Left:       "center",
			Bottom:     "2%",
			InRange:    &opts.VisualMapInRange{Color: heatmapColors},
		}),
	)
	hm.SetXAxis(z.Samples).AddSeries("z-score", items)
	return hm
}

// WriteHeatmap renders the top differentially expressed genes to
// {outputDir}/diffexp_heatmap.html and returns the path.
func WriteHeatmap(m *matrix.Matrix, result *dge.Result, topN int, outputDir string) (string, error) {
	var z, err = HeatmapData(m, result, topN)
	if err != nil {
		return "", err
	}
	var path = filepath.Join(outputDir, HeatmapFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := NewHeatmap(z, topN).Render(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
