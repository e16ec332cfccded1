// Package sampleid parses TCGA-style sample barcodes of the form
// {project}-{tissue_source_site}-{patient}-{sample_type}{vial}[-...].
package sampleid

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a sample by the two leading characters of its fourth field.
type Kind int

const (
	Other Kind = iota
	PrimaryTumor
	SolidTissueNormal
)

const (
	tumorCode  = "01"
	normalCode = "11"
)

func (k Kind) String() string {
	switch k {
	case PrimaryTumor:
		return "PrimaryTumor"
	case SolidTissueNormal:
		return "SolidTissueNormal"
	default:
		return "Other"
	}
}

// ID is a parsed sample identifier.
type ID struct {
	Raw        string
	Project    string
	Site       string
	Patient    string
	SampleType string
	Vial       string
	Extra      []string
}

// MalformedError reports an identifier that does not follow the barcode layout.
type MalformedError struct {
	Raw    string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed sample identifier %q: %s", e.Raw, e.Reason)
}

// Parse splits raw on hyphens and validates the first four fields.
func Parse(raw string) (ID, error) {
	var fields = strings.Split(raw, "-")
	if len(fields) < 4 {
		return ID{}, &MalformedError{Raw: raw, Reason: fmt.Sprintf("want at least 4 fields, got %d", len(fields))}
	}
	for i, f := range fields[:4] {
		if f == "" {
			return ID{}, &MalformedError{Raw: raw, Reason: fmt.Sprintf("field %d is empty", i)}
		}
	}
	if len(fields[3]) < 2 {
		return ID{}, &MalformedError{Raw: raw, Reason: "sample type field shorter than 2 characters"}
	}
	var id = ID{
		Raw:        raw,
		Project:    fields[0],
		Site:       fields[1],
		Patient:    fields[2],
		SampleType: fields[3][:2],
		Vial:       fields[3][2:],
	}
	if len(fields) > 4 {
		id.Extra = append([]string(nil), fields[4:]...)
	}
	return id, nil
}

// Kind reports whether the sample is a primary tumor, a matched normal or neither.
func (id ID) Kind() Kind {
	switch id.SampleType {
	case tumorCode:
		return PrimaryTumor
	case normalCode:
		return SolidTissueNormal
	default:
		return Other
	}
}

// PatientKey is project-site-patient, the key clinical tables are indexed by.
func (id ID) PatientKey() string {
	return id.Project + "-" + id.Site + "-" + id.Patient
}

func (id ID) String() string {
	return id.Raw
}

// Classify partitions columns into primary tumor and matched normal samples,
// preserving input order. Other sample types are skipped. Any malformed
// identifier aborts the classification.
func Classify(columns []string) (tumor, normal []string, err error) {
	for _, c := range columns {
		var id, e = Parse(c)
		if e != nil {
			return nil, nil, e
		}
		switch id.Kind() {
		case PrimaryTumor:
			tumor = append(tumor, c)
		case SolidTissueNormal:
			normal = append(normal, c)
		}
	}
	return tumor, normal, nil
}

// Patients returns the set of patient ids (field index 2) found in ids.
func Patients(ids []string) (map[string]struct{}, error) {
	var set = make(map[string]struct{}, len(ids))
	for _, s := range ids {
		var id, err = Parse(s)
		if err != nil {
			return nil, err
		}
		set[id.Patient] = struct{}{}
	}
	return set, nil
}

// SortedKeys returns the members of a patient set in ascending order.
func SortedKeys(set map[string]struct{}) []string {
	var keys = make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
