package ingest

import (
	"bytes"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// XLSXExtractor reads every row of every sheet in workbook order.
type XLSXExtractor struct {
	// Sheet restricts extraction to one sheet when set.
	Sheet string
}

func (e XLSXExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if e.Sheet != "" {
		sheets = []string{e.Sheet}
	}

	var lines []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read sheet %q", sheet)
		}
		for _, row := range rows {
			lines = append(lines, joinCells(row))
		}
	}
	return Normalize(lines), nil
}
