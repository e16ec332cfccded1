package report

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"OmicsExplore/pkg/stats"
	"OmicsExplore/pkg/survival"
)

// SurvivalCurveFile is the file name of the Kaplan-Meier plot of gene.
func SurvivalCurveFile(gene string) string {
	return gene + "_surv_curve.png"
}

// SurvivalPlot describes a written Kaplan-Meier plot.
type SurvivalPlot struct {
	Gene    string
	Path    string
	Median  float64
	High    []stats.KMStep
	Low     []stats.KMStep
	LogRank stats.LogRankResult
	Strata  *survival.Strata
}

var groupLegend = map[survival.Group]string{
	survival.High: "High Expression",
	survival.Low:  "Low Expression",
}

// NewSurvivalPlot stratifies table at the median expression of gene and fits
// a Kaplan-Meier curve per group.
func NewSurvivalPlot(table *survival.Table, gene string) (*SurvivalPlot, error) {
	var strata, err = table.Stratify(gene)
	if err != nil {
		return nil, err
	}
	var sp = &SurvivalPlot{Gene: gene, Median: strata.Median, Strata: strata}
	sp.High, err = stats.KaplanMeier(strata.Events(survival.High))
	if err != nil {
		return nil, err
	}
	sp.Low, err = stats.KaplanMeier(strata.Events(survival.Low))
	if err != nil {
		return nil, err
	}
	sp.LogRank, err = strata.LogRank()
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// Title is the plot title carrying the log-rank p-value.
func (sp *SurvivalPlot) Title() string {
	return fmt.Sprintf("Survival Curves by %s Expression (p-value: %.3g)", sp.Gene, sp.LogRank.P)
}

func stepCurve(steps []stats.KMStep, c color.Color) (*plotter.Line, *plotter.Scatter, error) {
	var (
		xys     = make(plotter.XYs, len(steps))
		censors plotter.XYs
	)
	for i, s := range steps {
		xys[i] = plotter.XY{X: s.Time, Y: s.Survival}
		if s.Censored > 0 {
			censors = append(censors, plotter.XY{X: s.Time, Y: s.Survival})
		}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, nil, err
	}
	line.StepStyle = plotter.PostStep
	line.Color = c
	line.Width = vg.Points(2)

	marks, err := plotter.NewScatter(censors)
	if err != nil {
		return nil, nil, err
	}
	marks.GlyphStyle.Color = c
	marks.GlyphStyle.Shape = draw.PlusGlyph{}
	marks.GlyphStyle.Radius = vg.Points(3)
	return line, marks, nil
}

// Plot draws both groups' step curves with censor marks.
func (sp *SurvivalPlot) Plot() (*plot.Plot, error) {
	var p = plot.New()
	p.Title.Text = sp.Title()
	p.X.Label.Text = "Days"
	p.Y.Label.Text = "Overall Survival Probability"
	p.X.Min = 0
	p.Y.Min = 0
	p.Y.Max = 1.05
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, g := range []survival.Group{survival.High, survival.Low} {
		var steps = sp.High
		if g == survival.Low {
			steps = sp.Low
		}
		line, marks, err := stepCurve(steps, plotutil.Color(i))
		if err != nil {
			return nil, err
		}
		p.Add(line)
		if len(marks.XYs) > 0 {
			p.Add(marks)
		}
		p.Legend.Add(fmt.Sprintf("%s (n=%d)", groupLegend[g], sp.Strata.Count(g)), line)
	}
	return p, nil
}

// WriteSurvivalCurve writes {outputDir}/{gene}_surv_curve.png. An unknown
// gene is reported as *survival.UnknownGeneError.
func WriteSurvivalCurve(table *survival.Table, outputDir, gene string) (*SurvivalPlot, error) {
	var sp, err = NewSurvivalPlot(table, gene)
	if err != nil {
		return nil, err
	}
	p, err := sp.Plot()
	if err != nil {
		return nil, err
	}
	sp.Path = filepath.Join(outputDir, SurvivalCurveFile(gene))
	if err := p.Save(8*vg.Inch, 6*vg.Inch, sp.Path); err != nil {
		return nil, err
	}
	return sp, nil
}

// GroupRow is one patient's stratum assignment.
type GroupRow struct {
	PatientID   string  `csv:"patient_id"`
	SampleID    string  `csv:"sample_id"`
	Gene        string  `csv:"gene"`
	Expression  float64 `csv:"expression"`
	Group       string  `csv:"group"`
	Deceased    int     `csv:"deceased"`
	TimeToEvent float64 `csv:"time_to_event"`
}

// GroupRows lists the stratum of every patient in record order.
func (sp *SurvivalPlot) GroupRows() []GroupRow {
	var (
		records = sp.Strata.Records()
		rows    = make([]GroupRow, len(records))
	)
	for i, rec := range records {
		rows[i] = GroupRow{
			PatientID:   rec.PatientID,
			SampleID:    rec.SampleID,
			Gene:        sp.Gene,
			Expression:  sp.Strata.Expression[i],
			Group:       sp.Strata.Groups[i].String(),
			Deceased:    rec.Deceased,
			TimeToEvent: rec.TimeToEvent,
		}
	}
	return rows
}

// WriteSurvivalGroups writes GroupRows as a tab-separated table.
func WriteSurvivalGroups(sp *SurvivalPlot, w io.Writer) error {
	var (
		rows = sp.GroupRows()
		out  = csv.NewWriter(w)
	)
	out.Comma = '\t'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(out)); err != nil {
		return err
	}
	out.Flush()
	return out.Error()
}
