package survival

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	sstats "OmicsExplore/pkg/stats"
)

// Group is an expression stratum.
type Group int

const (
	Low Group = iota
	High
	// Unassigned marks a record whose expression is missing.
	Unassigned
)

func (g Group) String() string {
	switch g {
	case High:
		return "High"
	case Low:
		return "Low"
	default:
		return "NA"
	}
}

// Strata splits a table at the median expression of one gene.
type Strata struct {
	Gene   string
	Median float64

	// Groups is aligned with the table's records.
	Groups     []Group
	Expression []float64

	table *Table
}

// Stratify assigns records with expression strictly above the median to High
// and the rest to Low. Records with missing expression are left unassigned,
// excluded from both curves, and reported with a warning.
func (t *Table) Stratify(gene string) (*Strata, error) {
	var expr, err = t.Expression(gene)
	if err != nil {
		return nil, err
	}
	var present = sstats.DropNaN(expr)
	if len(present) == 0 {
		return nil, fmt.Errorf("no expression values for %s in survival data", gene)
	}
	median, err := stats.Median(stats.Float64Data(present))
	if err != nil {
		return nil, err
	}

	var s = &Strata{
		Gene:       gene,
		Median:     median,
		Groups:     make([]Group, len(expr)),
		Expression: expr,
		table:      t,
	}
	for i, v := range expr {
		switch {
		case math.IsNaN(v):
			s.Groups[i] = Unassigned
		case v > median:
			s.Groups[i] = High
		default:
			s.Groups[i] = Low
		}
	}
	if n := s.Count(Unassigned); n > 0 && t.logger != nil {
		t.logger.Warn("records without expression excluded from strata", "gene", gene, "unassigned", n, "assigned", len(present))
	}
	return s, nil
}

// Count returns the number of records in g.
func (s *Strata) Count(g Group) int {
	var n = 0
	for _, x := range s.Groups {
		if x == g {
			n++
		}
	}
	return n
}

// Events returns the times and death indicators of the records in g.
func (s *Strata) Events(g Group) (times []float64, events []int) {
	for i, x := range s.Groups {
		if x != g {
			continue
		}
		var rec = s.table.Records[i]
		times = append(times, rec.TimeToEvent)
		events = append(events, rec.Deceased)
	}
	return times, events
}

// Records returns the table rows in record order.
func (s *Strata) Records() []Record {
	return s.table.Records
}

// LogRank compares the High and Low groups. An empty group gives P = 1.
func (s *Strata) LogRank() (sstats.LogRankResult, error) {
	var (
		highT, highE = s.Events(High)
		lowT, lowE   = s.Events(Low)
	)
	return sstats.LogRank(highT, highE, lowT, lowE)
}
