package ingest

import (
	"bytes"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// DOCXExtractor reads body paragraphs and table rows in document order. Table
// rows are flattened like CSV rows.
type DOCXExtractor struct{}

func (DOCXExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse docx")
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, paragraphText(it))
		case *docx.Table:
			for _, row := range it.TableRows {
				cells := make([]string, 0, len(row.TableCells))
				for _, cell := range row.TableCells {
					var parts []string
					for _, p := range cell.Paragraphs {
						parts = append(parts, paragraphText(p))
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				lines = append(lines, joinCells(cells))
			}
		}
	}
	return Normalize(lines), nil
}

// paragraphText concatenates the text runs of a paragraph. Tabs become
// spaces so "1.1<tab>Design" keeps its separator.
func paragraphText(p *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteByte(' ')
			}
		}
	}
	return buf.String()
}
