package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

const drawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"

// PPTXExtractor reads the paragraphs of each slide in slide number order.
type PPTXExtractor struct{}

func (PPTXExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open pptx")
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if dir != "ppt/slides/" || !strings.HasPrefix(base, "slide") || path.Ext(base) != ".xml" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{n, f})
	}
	if len(slides) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "pptx contains no slides")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var lines []string
	for _, s := range slides {
		paras, err := slideParagraphs(s.file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read slide %d", s.num)
		}
		lines = append(lines, paras...)
	}
	return Normalize(lines), nil
}

// slideParagraphs returns the text of every a:p element in a slide part.
func slideParagraphs(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		paras  []string
		buf    strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return paras, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != drawingML {
				continue
			}
			switch t.Name.Local {
			case "p":
				buf.Reset()
			case "t":
				inText = true
			case "br", "tab":
				buf.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != drawingML {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paras = append(paras, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
}
