package ingest

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor collects headings, paragraphs and list items. Heading
// hashes and bullet markers are dropped, so "## 1.2 Build" yields
// "1.2 Build". Ordered list numbers are kept because "1. Plan" is itself an
// outline code.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	src := []byte(decodeText(data))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	var marker string
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindListItem:
			if list, ok := n.Parent().(*ast.List); ok && list.IsOrdered() {
				marker = strconv.Itoa(list.Start+siblingIndex(n)) + ". "
			}
		case ast.KindHeading, ast.KindParagraph, ast.KindTextBlock:
			lines = append(lines, marker+inlineText(n, src))
			marker = ""
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			body := n.Lines()
			for i := 0; i < body.Len(); i++ {
				seg := body.At(i)
				lines = append(lines, string(seg.Value(src)))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return Normalize(lines), nil
}

func siblingIndex(n ast.Node) int {
	i := 0
	for s := n.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		i++
	}
	return i
}

// inlineText concatenates the text segments below n, keeping soft and hard
// line breaks as newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
