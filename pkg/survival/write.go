package survival

import (
	"encoding/csv"
	"io"
	"strconv"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTSV writes the cohort with the expression of the given genes appended
// as extra columns. Missing day counts are written empty.
func (t *Table) WriteTSV(w io.Writer, genes ...string) error {
	var cols = make([]int, len(genes))
	for k, g := range genes {
		var i, ok = t.geneIndex[g]
		if !ok {
			return &UnknownGeneError{Gene: g}
		}
		cols[k] = i
	}

	var out = csv.NewWriter(w)
	out.Comma = '\t'
	var header = []string{
		"patient_id", "sample_id", "vital_status",
		"days_to_death", "days_to_last_follow_up", "deceased", "time_to_event",
	}
	if err := out.Write(append(header, genes...)); err != nil {
		return err
	}
	for _, rec := range t.Records {
		var row = []string{
			rec.PatientID,
			rec.SampleID,
			rec.VitalStatus,
			nullString(rec.DaysToDeath.Valid, rec.DaysToDeath.Float64),
			nullString(rec.DaysToFollowUp.Valid, rec.DaysToFollowUp.Float64),
			strconv.Itoa(rec.Deceased),
			formatFloat(rec.TimeToEvent),
		}
		for _, i := range cols {
			row = append(row, formatFloat(rec.Expression[i]))
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func nullString(valid bool, v float64) string {
	if !valid {
		return ""
	}
	return formatFloat(v)
}
