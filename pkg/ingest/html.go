package ingest

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// HTMLExtractor collects the text of headings, paragraphs, list items and
// table cells. A table row whose cells are all leaf text becomes one line, so
// tabular WBS exports read the same as their CSV form.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(r io.Reader, _ string) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(decodeText(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse html")
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "nav", "template":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "dt", "dd", "caption":
				lines = append(lines, textContent(n))
				return
			case "li":
				if !hasBlockChild(n) {
					lines = append(lines, textContent(n))
					return
				}
				lines = append(lines, ownText(n))
			case "tr":
				var cells []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
						cells = append(cells, textContent(c))
					}
				}
				lines = append(lines, joinCells(cells))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return Normalize(lines), nil
}

// textContent returns all text below n with whitespace collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	parts := strings.Split(buf.String(), "\n")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), " ")
	}
	return strings.Join(parts, "\n")
}

// ownText returns the inline text of n, skipping nested lists.
func ownText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlock(c.Data) {
			continue
		}
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
			continue
		}
		parts = append(parts, textContent(c))
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlock(c.Data) {
			return true
		}
	}
	return false
}

func isBlock(tag string) bool {
	switch tag {
	case "ul", "ol", "p", "div", "table", "dl":
		return true
	}
	return false
}
