// Package tsvio opens delimited text tables, transparently decompressing .gz
// inputs and sniffing the delimiter from the head of the stream.
package tsvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"

	"github.com/csimplestring/go-csv/detector"
	gzip "github.com/klauspost/pgzip"
)

const sniffSize = 64 * 1024

var gz = regexp.MustCompile(`\.gz$`)

// File is an open table with its csv reader configured.
type File struct {
	*csv.Reader
	Comma rune

	closers []io.Closer
}

// Close releases the decompressor and the underlying file.
func (f *File) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		errs = append(errs, f.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Open opens path for reading. Paths ending in .gz are read through pgzip.
func Open(path string) (*File, error) {
	var file, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	var (
		in      io.Reader = file
		closers           = []io.Closer{file}
	)
	if gz.MatchString(path) {
		var gr, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		in = gr
		closers = append(closers, gr)
	}
	var r, comma = NewReader(in)
	return &File{Reader: r, Comma: comma, closers: closers}, nil
}

// NewReader wraps r in a csv.Reader whose delimiter is detected from the
// first bytes of the stream. Only tab and comma are accepted; anything else
// falls back to tab.
func NewReader(r io.Reader) (*csv.Reader, rune) {
	var (
		br      = bufio.NewReaderSize(r, sniffSize)
		head, _ = br.Peek(sniffSize)
		comma   = '\t'
	)
	if len(head) > 0 {
		comma = DetermineDelimiter(bytes.NewReader(head))
	}
	var cr = csv.NewReader(br)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr, comma
}

// DetermineDelimiter returns the delimiter of a table sample. The detector
// lists its candidates in no fixed order, so tab wins whenever it qualifies
// and comma is used only when tab does not.
func DetermineDelimiter(r io.Reader) rune {
	var (
		d        = detector.New()
		comma    = false
		detected = d.DetectDelimiter(r, '"')
	)
	for _, delimiter := range detected {
		if delimiter == "" {
			continue
		}
		switch rune(delimiter[0]) {
		case '\t':
			return '\t'
		case ',':
			comma = true
		}
	}
	if comma {
		return ','
	}
	return '\t'
}
