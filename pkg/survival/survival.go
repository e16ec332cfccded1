// Package survival joins primary-tumor expression with clinical outcomes into
// one time-to-event record per patient.
package survival

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"

	"OmicsExplore/pkg/clinical"
	"OmicsExplore/pkg/matrix"
	"OmicsExplore/pkg/sampleid"
)

// UnknownGeneError reports a gene that is not part of the survival table.
type UnknownGeneError struct {
	Gene string
}

func (e *UnknownGeneError) Error() string {
	return fmt.Sprintf("gene %q not found in survival data", e.Gene)
}

// Options name the clinical columns and literals used to build records.
type Options struct {
	VitalStatusColumn    string
	DaysToDeathColumn    string
	DaysToFollowUpColumn string

	// DeadValue is the vital status that marks an observed death.
	DeadValue string
	// MissingToken is the placeholder clinical exports use for empty cells.
	MissingToken string

	Logger *slog.Logger
}

// DefaultOptions match GDC clinical exports.
func DefaultOptions() Options {
	return Options{
		VitalStatusColumn:    "demographic.vital_status",
		DaysToDeathColumn:    "demographic.days_to_death",
		DaysToFollowUpColumn: "diagnoses.days_to_last_follow_up",
		DeadValue:            "Dead",
		MissingToken:         "'--",
	}
}

// Record is one patient's primary-tumor expression and outcome.
type Record struct {
	PatientID string
	SampleID  string

	// Expression is aligned with Table.Genes.
	Expression []float64

	VitalStatus    string
	DaysToDeath    null.Float
	DaysToFollowUp null.Float

	Deceased    int
	TimeToEvent float64
}

// Table is the survival cohort, sorted by patient id.
type Table struct {
	Genes   []string
	Records []Record

	// Unmatched counts tumor patients without a clinical row.
	Unmatched int
	// NoTime counts matched patients dropped for a missing time to event.
	NoTime int
	// Replicates counts extra primary-tumor samples of already seen patients.
	Replicates int

	geneIndex map[string]int
	logger    *slog.Logger
}

// PrepareSurvivalData aligns the primary-tumor columns of m with ct by
// patient key. Neither input is modified.
func PrepareSurvivalData(m *matrix.Matrix, ct *clinical.Table, opts Options) (*Table, error) {
	var logger = opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("Preparing data for survival analysis")

	if err := ct.Require(opts.VitalStatusColumn, opts.DaysToDeathColumn, opts.DaysToFollowUpColumn); err != nil {
		return nil, err
	}

	var tumor, _, err = sampleid.Classify(m.Samples)
	if err != nil {
		return nil, err
	}
	tumor = append([]string(nil), tumor...)
	sort.Strings(tumor)

	var t = &Table{
		Genes:     append([]string(nil), m.Genes...),
		geneIndex: make(map[string]int, len(m.Genes)),
		logger:    logger,
	}
	var seen = make(map[string]bool)
	for i, g := range t.Genes {
		t.geneIndex[g] = i
	}

	for _, sample := range tumor {
		var id, _ = sampleid.Parse(sample)
		var patient = id.PatientKey()
		if seen[patient] {
			t.Replicates++
			logger.Debug("skip extra tumor sample", "patient", patient, "sample", sample)
			continue
		}
		seen[patient] = true
		if !ct.HasPatient(patient) {
			t.Unmatched++
			continue
		}

		var (
			vital, _      = ct.Get(patient, opts.VitalStatusColumn)
			deathCell, _  = ct.Get(patient, opts.DaysToDeathColumn)
			followCell, _ = ct.Get(patient, opts.DaysToFollowUpColumn)
			expression, _ = m.Column(sample)
		)
		var rec = Record{
			PatientID:      patient,
			SampleID:       sample,
			Expression:     expression,
			VitalStatus:    vital,
			DaysToDeath:    parseDays(deathCell, opts.MissingToken),
			DaysToFollowUp: parseDays(followCell, opts.MissingToken),
		}
		var timeToEvent = rec.DaysToFollowUp
		if vital == opts.DeadValue {
			rec.Deceased = 1
			timeToEvent = rec.DaysToDeath
		}
		if !timeToEvent.Valid {
			t.NoTime++
			continue
		}
		rec.TimeToEvent = timeToEvent.Float64
		t.Records = append(t.Records, rec)
	}

	sort.Slice(t.Records, func(i, j int) bool { return t.Records[i].PatientID < t.Records[j].PatientID })
	logger.Info(
		"survival data ready",
		"patients", len(t.Records),
		"unmatched", t.Unmatched,
		"missing_time", t.NoTime,
		"extra_tumor_samples", t.Replicates,
	)
	return t, nil
}

// parseDays coerces a clinical day count; blanks, the placeholder token and
// unparsable cells are null.
func parseDays(cell, missingToken string) null.Float {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == missingToken {
		return null.Float{}
	}
	var v, err = strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func (t *Table) Len() int {
	return len(t.Records)
}

func (t *Table) HasGene(gene string) bool {
	var _, ok = t.geneIndex[gene]
	return ok
}

// Expression returns gene's expression per record.
func (t *Table) Expression(gene string) ([]float64, error) {
	var i, ok = t.geneIndex[gene]
	if !ok {
		return nil, &UnknownGeneError{Gene: gene}
	}
	var out = make([]float64, len(t.Records))
	for k, rec := range t.Records {
		out[k] = rec.Expression[i]
	}
	return out, nil
}

// Events returns time to event and the death indicator per record.
func (t *Table) Events() (times []float64, events []int) {
	times = make([]float64, len(t.Records))
	events = make([]int, len(t.Records))
	for k, rec := range t.Records {
		times[k] = rec.TimeToEvent
		events[k] = rec.Deceased
	}
	return times, events
}

// Deaths counts deceased patients.
func (t *Table) Deaths() int {
	var n = 0
	for _, rec := range t.Records {
		n += rec.Deceased
	}
	return n
}
