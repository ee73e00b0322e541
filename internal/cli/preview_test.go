package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/wbsgen/pkg/config"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
)

func newTestPreview(t *testing.T, savePath string) previewModel {
	t.Helper()
	items := outline.ParseLines([]string{"1 Project", "1.1 Scope", "1.1.1 Interviews", "1.2 Build"})
	m, err := newPreviewModel(context.Background(), "plan", items, config.Default(), savePath)
	if err != nil {
		t.Fatalf("newPreviewModel() error: %v", err)
	}
	return m
}

func press(t *testing.T, m previewModel, keys string) previewModel {
	t.Helper()
	for _, r := range keys {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(previewModel)
	}
	return m
}

func TestPreviewNudges(t *testing.T) {
	m := newTestPreview(t, "")
	base := m.settings.Layout.BaseVerticalGap
	tight := m.settings.Layout.TightFirstChildGap

	m = press(t, m, "BBt")
	if got, want := m.settings.Layout.BaseVerticalGap, base+2*gapStep; !approx(got, want) {
		t.Errorf("base gap = %v, want %v", got, want)
	}
	if got, want := m.settings.Layout.TightFirstChildGap, tight-gapStep; !approx(got, want) {
		t.Errorf("tight gap = %v, want %v", got, want)
	}

	if len(m.lay.Geometry) != 4 {
		t.Errorf("layout has %d boxes, want 4", len(m.lay.Geometry))
	}

	m = press(t, m, "0")
	if m.settings.Layout.BaseVerticalGap != base || m.goldenRatio != layout.GoldenRatio {
		t.Errorf("reset left base %v ratio %v", m.settings.Layout.BaseVerticalGap, m.goldenRatio)
	}
}

func TestPreviewTightGapStaysPositive(t *testing.T) {
	m := newTestPreview(t, "")
	m = press(t, m, "tttttt")
	if got := m.settings.Layout.TightFirstChildGap; !approx(got, gapStep) {
		t.Errorf("tight gap = %v, want floor %v", got, gapStep)
	}
	if err := m.settings.Layout.Validate(); err != nil {
		t.Errorf("config after nudging is invalid: %v", err)
	}
}

func TestPreviewRatio(t *testing.T) {
	m := newTestPreview(t, "")
	first := m.goldenFirst

	m = press(t, m, "R")
	// 0.618 + 0.02, rounded to two decimals
	if got, want := m.goldenRatio, 0.64; !approx(got, want) {
		t.Errorf("ratio = %v, want %v", got, want)
	}
	gaps := m.settings.Layout.PerLevelExtraGap
	if !approx(gaps.At(2), first) || !approx(gaps.At(3), first*m.goldenRatio) {
		t.Errorf("gaps = %v/%v, want %v/%v", gaps.At(2), gaps.At(3), first, first*m.goldenRatio)
	}
}

func TestPreviewFloorsAtZero(t *testing.T) {
	m := newTestPreview(t, "")
	m = press(t, m, strings.Repeat("b", 5))
	if got := m.settings.Layout.BaseVerticalGap; got != 0 {
		t.Errorf("base gap = %v, want 0", got)
	}
	if m.status != "" {
		t.Errorf("status = %q, want empty", m.status)
	}
}

func TestPreviewSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wbsgen.toml")
	m := newTestPreview(t, path)

	m = press(t, m, "Bs")
	if !m.saved {
		t.Fatalf("saved = false, status %q", m.status)
	}
	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !approx(s.Layout.BaseVerticalGap, m.settings.Layout.BaseVerticalGap) {
		t.Errorf("saved base gap = %v, want %v", s.Layout.BaseVerticalGap, m.settings.Layout.BaseVerticalGap)
	}
}

func TestPreviewSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m := newTestPreview(t, filepath.Join(blocker, "wbsgen.toml"))

	m = press(t, m, "s")
	if m.saved || !strings.HasPrefix(m.status, "save failed") {
		t.Errorf("saved = %v, status = %q", m.saved, m.status)
	}
}

func TestPreviewViewAndQuit(t *testing.T) {
	m := newTestPreview(t, "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(previewModel)

	view := m.View()
	for _, want := range []string{"plan", "4 items", "1 Project", "ratio 0.62"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
