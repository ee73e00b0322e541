// Package ingest extracts outline lines from source documents.
//
// Every supported format is reduced to the same shape: an ordered slice of
// NFC-normalised, trimmed strings, each a candidate outline line such as
// "1.2.3 Requirements". Text and CSV keep blank lines as empty strings so a
// line's index is its position in the source; the other formats drop them.
// Deciding which lines are outline items is left to [outline.ParseLines].
//
// Use [ForFile] to pick an [Extractor] by file extension, or [Lines] to do
// both in one call:
//
//	lines, err := ingest.Lines(f, "plan.xlsx")
//
// [outline.ParseLines]: github.com/matzehuels/wbsgen/pkg/outline.ParseLines
package ingest

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// MaxBytes caps the size of a single source document.
const MaxBytes = 32 << 20

// Extractor turns a document into outline candidate lines.
type Extractor interface {
	Extract(r io.Reader, name string) ([]string, error)
}

// Formats lists the supported file extensions, without the leading dot.
var Formats = []string{"txt", "csv", "xlsx", "md", "html", "docx", "pdf", "pptx"}

// ForFile returns the extractor for a filename based on its extension.
func ForFile(name string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".text", "":
		return TextExtractor{}, nil
	case ".csv", ".tsv":
		return CSVExtractor{Tab: ext == ".tsv"}, nil
	case ".xlsx", ".xlsm":
		return XLSXExtractor{}, nil
	case ".md", ".markdown":
		return MarkdownExtractor{}, nil
	case ".html", ".htm":
		return HTMLExtractor{}, nil
	case ".docx":
		return DOCXExtractor{}, nil
	case ".pdf":
		return PDFExtractor{}, nil
	case ".pptx":
		return PPTXExtractor{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported file extension: %s", ext)
	}
}

// IsSupported reports whether name has an extension [ForFile] accepts.
func IsSupported(name string) bool {
	_, err := ForFile(name)
	return err == nil
}

// Lines extracts the lines of r using the extractor for name.
func Lines(r io.Reader, name string) ([]string, error) {
	ex, err := ForFile(name)
	if err != nil {
		return nil, err
	}
	return ex.Extract(r, name)
}

// Normalize trims and NFC-normalises each line and drops blank ones.
// Embedded line breaks split a value into several lines.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		for _, line := range strings.Split(s, "\n") {
			if line = normalizeLine(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// NormalizeLines is [Normalize] for line-oriented text: blank lines stay in
// place as empty strings, so index i holds source line i+1. Only trailing
// blank lines are dropped.
func NormalizeLines(text string) []string {
	out := strings.Split(text, "\n")
	for i, line := range out {
		out[i] = normalizeLine(line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func normalizeLine(s string) string {
	return strings.TrimSpace(norm.NFC.String(strings.TrimRight(s, "\r")))
}

// readAll reads r up to MaxBytes.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}
	if len(data) > MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document exceeds %d MiB", MaxBytes>>20)
	}
	return data, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns data as a UTF-8 string. Legacy Korean spreadsheets and
// text exports are commonly EUC-KR, so invalid UTF-8 is decoded as such.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	if dec, err := korean.EUCKR.NewDecoder().Bytes(data); err == nil {
		return string(dec)
	}
	return strings.ToValidUTF8(string(data), "�")
}
