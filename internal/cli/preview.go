package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wbsgen/pkg/cache"
	"github.com/matzehuels/wbsgen/pkg/config"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
)

// Tuning steps of the preview keys.
const (
	gapStep   = 0.05
	ratioStep = 0.02
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Tune the layout interactively in the terminal",
		Long: `Tune the layout interactively in the terminal.

The chart is redrawn on every change. Keys adjust the base vertical gap, the
tight first-child gap, the width reduction step and the golden ratio of the
per-level gaps; 's' saves the tuned settings to the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, flags layoutFlags) error {
	settings, err := c.settings()
	if err != nil {
		return err
	}
	if err := flags.apply(&settings); err != nil {
		return err
	}
	savePath, err := c.configFile()
	if err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, name, err := openInput(input)
	if err != nil {
		return err
	}
	lines, err := runner.Lines(ctx, name, src)
	src.Close()
	if err != nil {
		return err
	}
	items, _, err := pipeline.Items(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	title := flags.name
	if title == "" {
		title = pipeline.NameFromFile(input)
	}
	m, err := newPreviewModel(ctx, title, items, settings, savePath)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if pm, ok := final.(previewModel); ok && pm.saved {
		say(markOK, "Saved settings")
		wrote(pm.savePath)
	}
	return nil
}

// =============================================================================
// Key bindings
// =============================================================================

type previewKeys struct {
	BaseUp, BaseDown   key.Binding
	TightUp, TightDown key.Binding
	StepUp, StepDown   key.Binding
	RatioUp, RatioDown key.Binding
	Reset              key.Binding
	Save               key.Binding
	Help               key.Binding
	Quit               key.Binding
}

func newPreviewKeys() previewKeys {
	return previewKeys{
		BaseUp:    key.NewBinding(key.WithKeys("B"), key.WithHelp("b/B", "base gap")),
		BaseDown:  key.NewBinding(key.WithKeys("b")),
		TightUp:   key.NewBinding(key.WithKeys("T"), key.WithHelp("t/T", "tight gap")),
		TightDown: key.NewBinding(key.WithKeys("t")),
		StepUp:    key.NewBinding(key.WithKeys("W"), key.WithHelp("w/W", "width step")),
		StepDown:  key.NewBinding(key.WithKeys("w")),
		RatioUp:   key.NewBinding(key.WithKeys("R"), key.WithHelp("r/R", "golden ratio")),
		RatioDown: key.NewBinding(key.WithKeys("r")),
		Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save config")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k previewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.BaseUp, k.TightUp, k.StepUp, k.RatioUp, k.Save, k.Help, k.Quit}
}

func (k previewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.BaseUp, k.TightUp},
		{k.StepUp, k.RatioUp},
		{k.Reset, k.Save},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// previewModel
// =============================================================================

var (
	previewFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	previewParamStyle = lipgloss.NewStyle().Foreground(colorGray)
	previewErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// previewModel is the bubbletea model of the preview command. Layouts go
// through an in-memory cached runner so revisiting a setting is free.
type previewModel struct {
	ctx      context.Context
	runner   *pipeline.Runner
	title    string
	items    []outline.Item
	initial  config.Settings
	settings config.Settings

	// golden gap parameters; the per-level gaps are rebuilt from these when
	// the ratio changes.
	goldenFirst float64
	goldenRatio float64

	lay      *pipeline.Layout
	status   string
	savePath string
	saved    bool

	width, height int
	keys          previewKeys
	help          help.Model
}

func newPreviewModel(ctx context.Context, title string, items []outline.Item, s config.Settings, savePath string) (previewModel, error) {
	m := previewModel{
		ctx:         ctx,
		runner:      pipeline.NewRunner(cache.NewMemoryCache(256), nil, log.New(io.Discard)),
		title:       title,
		items:       items,
		initial:     s,
		settings:    s,
		goldenFirst: s.Layout.PerLevelExtraGap.At(2),
		goldenRatio: layout.GoldenRatio,
		savePath:    savePath,
		width:       100,
		height:      30,
		keys:        newPreviewKeys(),
		help:        help.New(),
	}
	lay, err := m.layout(s.Layout)
	if err != nil {
		return m, err
	}
	m.lay = lay
	return m, nil
}

func (m previewModel) layout(cfg layout.Config) (*pipeline.Layout, error) {
	return m.runner.Layout(m.ctx, m.items, pipeline.Options{
		Name:    m.title,
		Config:  cfg,
		Styles:  m.settings.Styles,
		Orphans: m.settings.Orphans,
	})
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m previewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cfg := m.settings.Layout.Clone()
	ratio := m.goldenRatio

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Save):
		if err := config.WriteFile(m.savePath, m.settings); err != nil {
			m.status = "save failed: " + err.Error()
			return m, nil
		}
		m.saved = true
		m.status = "saved " + m.savePath
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		cfg = m.initial.Layout.Clone()
		ratio = layout.GoldenRatio
	case key.Matches(msg, m.keys.BaseUp):
		cfg.BaseVerticalGap = nudge(cfg.BaseVerticalGap, gapStep)
	case key.Matches(msg, m.keys.BaseDown):
		cfg.BaseVerticalGap = nudge(cfg.BaseVerticalGap, -gapStep)
	case key.Matches(msg, m.keys.TightUp):
		cfg.TightFirstChildGap = nudge(cfg.TightFirstChildGap, gapStep)
	case key.Matches(msg, m.keys.TightDown):
		cfg.TightFirstChildGap = math.Max(gapStep, nudge(cfg.TightFirstChildGap, -gapStep))
	case key.Matches(msg, m.keys.StepUp):
		cfg.WidthReductionStep = nudge(cfg.WidthReductionStep, gapStep)
	case key.Matches(msg, m.keys.StepDown):
		cfg.WidthReductionStep = nudge(cfg.WidthReductionStep, -gapStep)
	case key.Matches(msg, m.keys.RatioUp):
		ratio = math.Min(1, nudge(ratio, ratioStep))
		cfg.PerLevelExtraGap = layout.GoldenGaps(m.goldenFirst, ratio, 2, 4)
	case key.Matches(msg, m.keys.RatioDown):
		ratio = math.Max(ratioStep, nudge(ratio, -ratioStep))
		cfg.PerLevelExtraGap = layout.GoldenGaps(m.goldenFirst, ratio, 2, 4)
	default:
		return m, nil
	}

	if err := cfg.Validate(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	lay, err := m.layout(cfg)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.settings.Layout = cfg
	m.goldenRatio = ratio
	m.lay = lay
	m.status = ""
	return m, nil
}

// nudge adds delta to v, rounded to two decimals and floored at zero.
func nudge(v, delta float64) float64 {
	return math.Max(0, math.Round((v+delta)*100)/100)
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d items", len(m.items))))
	b.WriteString("\n")

	// Frame border takes two columns and rows; title, params, status and
	// help take the rest.
	cols := max(20, m.width-2)
	rows := max(8, m.height-8)
	chart := drawChart(m.lay.Geometry, m.settings.Layout, cols, rows)
	b.WriteString(previewFrameStyle.Render(strings.Join(chart, "\n")))
	b.WriteString("\n")

	cfg := m.settings.Layout
	b.WriteString(previewParamStyle.Render(fmt.Sprintf(
		"base %.2f  tight %.2f  width step %.2f  ratio %.2f  extra %s",
		cfg.BaseVerticalGap, cfg.TightFirstChildGap, cfg.WidthReductionStep, m.goldenRatio, gapsSummary(cfg.PerLevelExtraGap))))
	b.WriteString("\n")

	switch {
	case m.status != "":
		b.WriteString(previewErrStyle.Render(m.status))
	case m.lay.Overflow.Any():
		b.WriteString(StyleWarning.Render(fmt.Sprintf("overflow: bottom %.2f  right %.2f  left %.2f cm",
			m.lay.Overflow.Bottom, m.lay.Overflow.Right, m.lay.Overflow.Left)))
	default:
		b.WriteString(StyleSuccess.Render("fits the WBS block"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func gapsSummary(g layout.Gaps) string {
	parts := make([]string, 0, 4)
	for lvl := 2; lvl <= 4; lvl++ {
		parts = append(parts, fmt.Sprintf("%.2f", g.At(lvl)))
	}
	parts = append(parts, fmt.Sprintf("%.2f", g.Fallback))
	return strings.Join(parts, "/")
}
