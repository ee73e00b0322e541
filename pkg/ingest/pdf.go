package ingest

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// PDFExtractor reads the text rows of every page, top to bottom.
type PDFExtractor struct{}

func (PDFExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open pdf")
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read page %d", i)
		}
		for _, row := range rows {
			var buf strings.Builder
			for _, t := range row.Content {
				buf.WriteString(t.S)
			}
			lines = append(lines, buf.String())
		}
	}
	return Normalize(lines), nil
}
