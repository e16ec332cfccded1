// Package dge finds genes differentially expressed between primary tumors and
// matched normal tissue of the same patients.
package dge

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"OmicsExplore/pkg/matrix"
	"OmicsExplore/pkg/sampleid"
	"OmicsExplore/pkg/stats"
)

// EmptyCohortError means no patient has both a tumor and a normal sample.
type EmptyCohortError struct {
	Tumors  int
	Normals int
}

func (e *EmptyCohortError) Error() string {
	return fmt.Sprintf(
		"no matched tumor-normal pairs found (%d tumor, %d normal samples): cannot perform differential expression",
		e.Tumors, e.Normals,
	)
}

// Record is the differential expression result of one gene.
type Record struct {
	Gene    string  `csv:"gene"`
	Log2FC  float64 `csv:"log2fc"`
	PValue  float64 `csv:"p_value"`
	FDR     float64 `csv:"fdr"`
	NTumor  int     `csv:"n_tumor"`
	NNormal int     `csv:"n_normal"`
}

// Result holds per-gene records in matrix order and the matched sample lists.
type Result struct {
	Records       []Record
	MatchedTumor  []string
	MatchedNormal []string

	// Dropped counts genes without a defined p-value.
	Dropped int

	index map[string]int
}

// MatchedPairs returns the sorted tumor and normal samples of patients that
// have both, sorted by full sample identifier.
func MatchedPairs(samples []string) (tumor, normal []string, err error) {
	allTumor, allNormal, err := sampleid.Classify(samples)
	if err != nil {
		return nil, nil, err
	}
	tumorPatients, err := sampleid.Patients(allTumor)
	if err != nil {
		return nil, nil, err
	}
	normalPatients, err := sampleid.Patients(allNormal)
	if err != nil {
		return nil, nil, err
	}
	var matched = make(map[string]struct{})
	for p := range tumorPatients {
		if _, ok := normalPatients[p]; ok {
			matched[p] = struct{}{}
		}
	}

	var keep = func(ids []string) []string {
		var out []string
		for _, s := range ids {
			var id, _ = sampleid.Parse(s)
			if _, ok := matched[id.Patient]; ok {
				out = append(out, s)
			}
		}
		sort.Strings(out)
		return out
	}
	tumor, normal = keep(allTumor), keep(allNormal)
	if len(tumor) == 0 || len(normal) == 0 {
		return nil, nil, &EmptyCohortError{Tumors: len(allTumor), Normals: len(allNormal)}
	}
	return tumor, normal, nil
}

// Pair is one matched patient with all of its tumor and normal samples.
type Pair struct {
	Patient string
	Tumor   []string
	Normal  []string
}

// Pairs groups the matched samples by patient, sorted by patient.
func (r *Result) Pairs() []Pair {
	var (
		index = make(map[string]int)
		pairs []Pair
	)
	var pair = func(sample string) *Pair {
		var id, _ = sampleid.Parse(sample)
		i, ok := index[id.Patient]
		if !ok {
			i = len(pairs)
			index[id.Patient] = i
			pairs = append(pairs, Pair{Patient: id.Patient})
		}
		return &pairs[i]
	}
	for _, s := range r.MatchedTumor {
		p := pair(s)
		p.Tumor = append(p.Tumor, s)
	}
	for _, s := range r.MatchedNormal {
		p := pair(s)
		p.Normal = append(p.Normal, s)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Patient < pairs[j].Patient })
	return pairs
}

// PerformDGE tests every gene of m with Welch's t-test between matched tumor
// and matched normal columns, reports log2 fold change as the difference of
// group means and adjusts p-values with Benjamini-Hochberg. Genes whose test
// is undefined are dropped before adjustment.
func PerformDGE(m *matrix.Matrix, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("Running DGE analysis", "genes", len(m.Genes), "samples", len(m.Samples))

	var tumor, normal, err = MatchedPairs(m.Samples)
	if err != nil {
		return nil, err
	}
	logger.Info("matched tumor-normal pairs", "tumor", len(tumor), "normal", len(normal))

	tumorCols, err := m.SampleColumns(tumor)
	if err != nil {
		return nil, err
	}
	normalCols, err := m.SampleColumns(normal)
	if err != nil {
		return nil, err
	}

	var result = &Result{
		MatchedTumor:  tumor,
		MatchedNormal: normal,
		Records:       make([]Record, 0, len(m.Genes)),
	}
	for i, gene := range m.Genes {
		var test = stats.WelchTTest(m.RowAt(i, tumorCols), m.RowAt(i, normalCols))
		if math.IsNaN(test.P) {
			result.Dropped++
			logger.Debug("no p-value", "gene", gene, "tumor", test.N1, "normal", test.N2)
			continue
		}
		result.Records = append(result.Records, Record{
			Gene:    gene,
			Log2FC:  test.Mean1 - test.Mean2,
			PValue:  test.P,
			NTumor:  test.N1,
			NNormal: test.N2,
		})
	}

	var p = make([]float64, len(result.Records))
	for i := range result.Records {
		p[i] = result.Records[i].PValue
	}
	for i, q := range stats.BenjaminiHochberg(p) {
		result.Records[i].FDR = q
	}
	result.buildIndex()

	logger.Info("DGE analysis done", "tested", len(result.Records), "dropped", result.Dropped)
	return result, nil
}

func (r *Result) buildIndex() {
	r.index = make(map[string]int, len(r.Records))
	for i, rec := range r.Records {
		r.index[rec.Gene] = i
	}
}

// Record looks up the result of gene.
func (r *Result) Record(gene string) (Record, bool) {
	if r.index == nil {
		r.buildIndex()
	}
	var i, ok = r.index[gene]
	if !ok {
		return Record{}, false
	}
	return r.Records[i], true
}

// SortedByFDR returns a copy of the records ordered by ascending FDR, then
// ascending p-value, then gene.
func (r *Result) SortedByFDR() []Record {
	var out = append([]Record(nil), r.Records...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FDR != out[j].FDR {
			return out[i].FDR < out[j].FDR
		}
		if out[i].PValue != out[j].PValue {
			return out[i].PValue < out[j].PValue
		}
		return out[i].Gene < out[j].Gene
	})
	return out
}

// Top returns the n lowest-FDR records.
func (r *Result) Top(n int) []Record {
	var sorted = r.SortedByFDR()
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Significant counts records with FDR at or below alpha.
func (r *Result) Significant(alpha float64) int {
	var n = 0
	for _, rec := range r.Records {
		if rec.FDR <= alpha {
			n++
		}
	}
	return n
}
