package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wbsgen/pkg/pipeline"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared with the preview screen.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorAccent).Underline(true)
)

// mark prefixes a status line.
type mark int

const (
	markOK mark = iota
	markFail
	markWarn
	markNote
)

func (m mark) String() string {
	switch m {
	case markOK:
		return StyleSuccess.Render("✓")
	case markFail:
		return lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	case markWarn:
		return StyleWarning.Render("!")
	default:
		return lipgloss.NewStyle().Foreground(colorGray).Render("›")
	}
}

// say prints one status line. Warnings are coloured through.
func say(m mark, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if m == markWarn {
		msg = StyleWarning.Render(msg)
	}
	fmt.Println(m.String() + " " + msg)
}

// wrote reports a file the command produced.
func wrote(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + path)
}

// reportChart prints the box counts of a laid-out chart followed by its
// overflow and orphan warnings, one per line.
//
//	  6 items · 1 line skipped · cached
func reportChart(lay *pipeline.Layout, skipped int, cached bool) {
	parts := []string{plural(len(lay.Items), "item")}
	if n := len(lay.Geometry); n != len(lay.Items) {
		parts = append(parts, plural(n, "box")+" drawn")
	}
	if skipped > 0 {
		parts = append(parts, plural(skipped, "line")+" skipped")
	}
	origin := lipgloss.NewStyle().Foreground(colorGray).Render("computed")
	if cached {
		origin = StyleSuccess.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")) + sep + origin)

	for _, w := range pipeline.Warnings(lay) {
		say(markWarn, "%s", w)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "x") {
		return fmt.Sprintf("%d %ses", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
