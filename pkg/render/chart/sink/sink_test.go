package sink

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/wbsgen/pkg/ingest"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/render"
	"github.com/matzehuels/wbsgen/pkg/render/chart"
	"github.com/matzehuels/wbsgen/pkg/style"
)

func testConfig() layout.Config {
	return layout.Config{
		CanvasWidth:        100,
		CanvasHeight:       60,
		WBSWidth:           80,
		WBSHeight:          40,
		Level1Gap:          4,
		Level2Gap:          2,
		BaseVerticalGap:    1,
		TightFirstChildGap: 0.5,
		PerLevelExtraGap:   layout.ExplicitGaps(map[int]float64{2: 2, 3: 1}, 0.5),
		WidthReductionStep: 2,
		MinWidth:           10,
		Heights:            layout.Heights{Level1: 6, Level2: 5, Stacked: 4},
	}
}

func testChart(t *testing.T, lines ...string) chart.Chart {
	t.Helper()
	if len(lines) == 0 {
		lines = []string{"1 Project", "1.1 Plan", "1.2 Build", "1.1.1 Scope", "1.1.2 Budget"}
	}
	items, err := outline.Sort(outline.ParseLines(lines))
	if err != nil {
		t.Fatal(err)
	}
	forest, _, err := outline.Build(items)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	return chart.Build("Project <A&B>", cfg, layout.Layout(forest, cfg), style.DefaultTable())
}

func TestRenderSVG(t *testing.T) {
	c := testChart(t)
	svg := string(RenderSVG(c))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 60" width="4000" height="2400">`) {
		t.Errorf("unexpected svg header: %.120s", svg)
	}
	if got := strings.Count(svg, `class="box level-`); got != len(c.Boxes) {
		t.Errorf("box count = %d, want %d", got, len(c.Boxes))
	}
	if got := strings.Count(svg, `class="box-text"`); got != len(c.Boxes) {
		t.Errorf("label count = %d, want %d", got, len(c.Boxes))
	}
	for _, want := range []string{
		`<title>Project &lt;A&amp;B&gt;</title>`,
		`id="box-1.1.2"`,
		`x="10" y="10" width="80" height="6"`,
		`>1.1.1 Scope</text>`,
		`fill="#1f3864"`,
		`text-anchor="middle"`,
		`text-anchor="start"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(svg, "<script") || strings.Contains(svg, `class="guide"`) {
		t.Error("interaction and guide should be off by default")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("svg not closed")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	c := testChart(t)
	svg := string(RenderSVG(c, WithScale(10), WithGuide(), WithInteraction(), WithBackground("")))

	if !strings.Contains(svg, `width="1000" height="600"`) {
		t.Error("WithScale(10) should size the svg to 1000x600")
	}
	if !strings.Contains(svg, `<rect class="guide" x="10" y="10" width="80" height="40"`) {
		t.Error("WithGuide should outline the WBS block")
	}
	if !strings.Contains(svg, "<script") {
		t.Error("WithInteraction should add the hover script")
	}
	if strings.Contains(svg, `<rect x="0" y="0"`) {
		t.Error("empty background should not paint the canvas")
	}
}

func TestRenderSVGTruncates(t *testing.T) {
	c := testChart(t, "1 "+strings.Repeat("Very long work package name ", 20))
	svg := string(RenderSVG(c))
	if !strings.Contains(svg, "..</text>") {
		t.Error("overlong label should be truncated")
	}
	if !strings.Contains(svg, "<title>1 Very long") {
		t.Error("full label should remain in the hover title")
	}
}

func TestRenderPDF(t *testing.T) {
	c := testChart(t)
	data, err := RenderPDF(c, WithCreationDate(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	if err != nil {
		t.Fatalf("RenderPDF() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %.16q", data)
	}

	lines, err := ingest.PDFExtractor{}.Extract(bytes.NewReader(data), "chart.pdf")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := strings.ReplaceAll(strings.Join(lines, ""), " ", "")
	for _, want := range []string{"1Project", "1.1Plan", "1.2Build", "1.1.2Budget"} {
		if !strings.Contains(text, want) {
			t.Errorf("pdf text %q missing %q", text, want)
		}
	}
}

func TestRenderPDFMissingFont(t *testing.T) {
	_, err := RenderPDF(testChart(t), WithFontFile("/nonexistent/font.ttf"))
	if err == nil {
		t.Error("RenderPDF with a missing font should fail")
	}
}

func TestRenderDOCX(t *testing.T) {
	c := testChart(t)
	data, err := RenderDOCX(c)
	if err != nil {
		t.Fatalf("RenderDOCX() error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	var document string
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		document = string(b)
	}
	if document == "" {
		t.Fatal("word/document.xml missing")
	}

	if got := strings.Count(document, "<wps:txbx>"); got != len(c.Boxes) {
		t.Errorf("text boxes = %d, want %d", got, len(c.Boxes))
	}
	for _, want := range []string{
		"1.1.2 Budget",
		`<wp:posOffset>3600000</wp:posOffset>`, // 10 cm
		`<a:srgbClr val="1F3864">`,
		`w:w="56693"`, // 100 cm in twips
	} {
		if !strings.Contains(document, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	c := testChart(t)
	data, err := RenderJSON(c, WithJSONOverflow(layout.Overflow{Bottom: 1.5}), WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out["units"] != "cm" {
		t.Errorf("units = %v, want cm", out["units"])
	}
	if out["width"] != 100.0 || out["height"] != 60.0 {
		t.Errorf("size = %v x %v, want 100 x 60", out["width"], out["height"])
	}
	if _, ok := out["config"]; ok {
		t.Error("config should be omitted unless requested")
	}

	back, err := ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if len(back.Boxes) != len(c.Boxes) || back.Boxes[3] != c.Boxes[3] {
		t.Errorf("ReadJSON boxes = %+v, want %+v", back.Boxes, c.Boxes)
	}
}

func TestRenderJSONEmpty(t *testing.T) {
	data, err := RenderJSON(chart.Chart{Width: 10, Height: 5}, WithJSONConfig(layout.DefaultConfig()))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"boxes":[]`) {
		t.Errorf("empty chart should encode boxes as []: %s", s)
	}
	if !strings.Contains(s, `"config":{`) {
		t.Errorf("WithJSONConfig should embed the config: %s", s)
	}
}

func TestRenderPNG(t *testing.T) {
	if !render.HasConverter() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPNG(context.Background(), testChart(t), WithPNGScale(0.25))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
