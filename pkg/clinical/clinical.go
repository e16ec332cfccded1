// Package clinical loads per-patient clinical annotation tables.
package clinical

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"OmicsExplore/pkg/tsvio"
)

// DefaultKeyColumn is the patient submitter id column of GDC clinical exports.
const DefaultKeyColumn = "cases.submitter_id"

// MissingColumnError names every required column a table lacks.
type MissingColumnError struct {
	Missing []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("clinical data is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Table is a clinical table indexed by patient key. Cells are kept as raw strings.
type Table struct {
	Columns   []string
	KeyColumn string

	// Duplicates counts rows dropped because their key was already seen.
	Duplicates int

	patients    []string
	rows        map[string][]string
	columnIndex map[string]int
}

// New builds a table from a header and rows. Rows sharing a key keep the
// first occurrence.
func New(columns []string, keyColumn string, rows [][]string) (*Table, error) {
	var t = &Table{
		Columns:     append([]string(nil), columns...),
		KeyColumn:   keyColumn,
		rows:        make(map[string][]string, len(rows)),
		columnIndex: make(map[string]int, len(columns)),
	}
	for j, c := range columns {
		if _, dup := t.columnIndex[c]; !dup {
			t.columnIndex[c] = j
		}
	}
	var key, ok = t.columnIndex[keyColumn]
	if !ok {
		return nil, &MissingColumnError{Missing: []string{keyColumn}}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("clinical row %d: %d fields, want %d", i+1, len(row), len(columns))
		}
		var patient = row[key]
		if _, seen := t.rows[patient]; seen {
			t.Duplicates++
			continue
		}
		t.rows[patient] = append([]string(nil), row...)
		t.patients = append(t.patients, patient)
	}
	return t, nil
}

// Read loads a clinical table from a delimited file.
func Read(path, keyColumn string, logger *slog.Logger) (*Table, error) {
	var in, err = tsvio.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	t, err := parse(in, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if logger != nil {
		logger.Info("loaded clinical table", "path", path, "patients", t.Len(), "columns", len(t.Columns), "duplicates", t.Duplicates)
	}
	return t, nil
}

// Parse loads a clinical table from r.
func Parse(r io.Reader, keyColumn string) (*Table, error) {
	var cr, _ = tsvio.NewReader(r)
	return parse(&tsvio.File{Reader: cr}, keyColumn)
}

func parse(in *tsvio.File, keyColumn string) (*Table, error) {
	var records, err = in.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty clinical table")
	}
	return New(records[0], keyColumn, records[1:])
}

func (t *Table) Len() int {
	return len(t.patients)
}

func (t *Table) Has(column string) bool {
	var _, ok = t.columnIndex[column]
	return ok
}

// Require returns a MissingColumnError listing every absent column, in the
// order requested.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Missing: missing}
	}
	return nil
}

// Get returns the raw cell for patient and column.
func (t *Table) Get(patient, column string) (string, bool) {
	var row, ok = t.rows[patient]
	if !ok {
		return "", false
	}
	j, ok := t.columnIndex[column]
	if !ok {
		return "", false
	}
	return row[j], true
}

// HasPatient reports whether a row exists for patient.
func (t *Table) HasPatient(patient string) bool {
	var _, ok = t.rows[patient]
	return ok
}

// Patients returns patient keys in ascending order.
func (t *Table) Patients() []string {
	var out = append([]string(nil), t.patients...)
	sort.Strings(out)
	return out
}
