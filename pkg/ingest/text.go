package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// TextExtractor handles plain text, one outline line per line.
type TextExtractor struct{}

func (TextExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return NormalizeLines(decodeText(data)), nil
}

// CSVExtractor handles comma (or tab) separated tables. Each row becomes one
// line with its non-empty cells joined by a space, so a row of "1.1","Design"
// reads as "1.1 Design". Rows sit at the index of the source line they
// start on.
type CSVExtractor struct {
	Tab bool
}

func (e CSVExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(decodeText(data)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if e.Tab {
		reader.Comma = '\t'
	}

	var rows []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse csv")
		}
		line, _ := reader.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, "")
		}
		rows = append(rows, normalizeLine(joinCells(record)))
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// joinCells joins the non-blank cells of a row with single spaces.
func joinCells(cells []string) string {
	var buf bytes.Buffer
	for _, c := range cells {
		c = strings.Join(strings.Fields(c), " ")
		if c == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(c)
	}
	return buf.String()
}
