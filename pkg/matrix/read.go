package matrix

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"OmicsExplore/pkg/tsvio"
)

// missing cell spellings, compared case-insensitively
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"nan":  true,
	"null": true,
}

// Read loads an expression matrix from a delimited file whose first column
// holds gene ids and whose header row holds sample ids.
func Read(path string) (*Matrix, error) {
	var in, err = tsvio.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	m, err := parse(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse loads an expression matrix from r.
func Parse(r io.Reader) (*Matrix, error) {
	var cr, _ = tsvio.NewReader(r)
	return parse(&tsvio.File{Reader: cr})
}

func parse(in *tsvio.File) (*Matrix, error) {
	var header, err = in.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty expression matrix")
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, errors.New("expression matrix header has no sample columns")
	}
	var (
		samples = header[1:]
		genes   []string
		values  [][]float64
		line    = 1
	)
	for {
		var row, err = in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 1 && row[0] == "" {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields, want %d", line, len(row), len(header))
		}
		var rowValues = make([]float64, len(samples))
		for j, cell := range row[1:] {
			var v, err = ParseValue(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d, sample %s: %w", line, samples[j], err)
			}
			rowValues[j] = v
		}
		genes = append(genes, row[0])
		values = append(values, rowValues)
	}
	return New(genes, samples, values)
}

// ParseValue converts one cell to a float, mapping missing tokens to NaN.
func ParseValue(cell string) (float64, error) {
	var s = strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(s)] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
