package pattern

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/membist/bist"
)

// ErrSyntax is returned for lines that are not address,data[,mask].
var ErrSyntax = errors.New("invalid pattern line")

// Parse reads a pattern in CSV form. Each line holds an address, a data word
// and an optional byte mask, written as bist.ParseUint reads them. Blank
// lines and lines starting with # are skipped.
func Parse(r io.Reader) (Pattern, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var p Pattern

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return p, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}

		line, _ := reader.FieldPos(0)

		e, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ErrSyntax, err)
		}

		p = append(p, e)
	}
}

// Load parses the pattern file at path.
func Load(path string) (Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

func parseRecord(record []string) (Access, error) {
	if len(record) < 2 || len(record) > 3 {
		return Access{}, fmt.Errorf("want 2 or 3 fields, got %d", len(record))
	}

	var values [3]uint64

	for i, field := range record {
		v, err := bist.ParseUint(field)
		if err != nil {
			return Access{}, err
		}

		values[i] = v
	}

	return Access{Address: values[0], Data: values[1], Mask: values[2]}, nil
}
