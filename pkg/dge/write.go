package dge

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// WriteTSV writes the records sorted by FDR as a tab-separated table.
func (r *Result) WriteTSV(w io.Writer) error {
	var (
		records = r.SortedByFDR()
		out     = csv.NewWriter(w)
	)
	out.Comma = '\t'
	if err := gocsv.MarshalCSV(&records, gocsv.NewSafeCSVWriter(out)); err != nil {
		return err
	}
	out.Flush()
	return out.Error()
}

// SaveTSV writes the records to path.
func (r *Result) SaveTSV(path string) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteTSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTSV loads records previously written by WriteTSV.
func ReadTSV(r io.Reader) ([]Record, error) {
	var in = csv.NewReader(r)
	in.Comma = '\t'
	var records []Record
	if err := gocsv.UnmarshalCSV(in, &records); err != nil {
		return nil, err
	}
	return records, nil
}
