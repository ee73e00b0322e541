// Package config reads and writes the wbsgen TOML configuration file.
//
// A file only needs the keys it changes; everything else keeps the value of
// [Default]. A minimal file:
//
//	[canvas]
//	width = 33.87
//	height = 19.05
//
//	[gaps]
//	preset = "golden"
//
//	[gaps.golden]
//	base = 1.2
//
//	[tree]
//	orphans = "adopt"
//
//	[styles.1]
//	fill = "C00000"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// Gap presets accepted by [gaps].preset.
const (
	PresetGolden   = "golden"
	PresetManual   = "manual"
	PresetExplicit = "explicit"
)

// Settings is a fully resolved configuration.
type Settings struct {
	Layout  layout.Config
	Styles  style.Table
	Orphans outline.OrphanPolicy
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Layout:  layout.DefaultConfig(),
		Styles:  style.DefaultTable(),
		Orphans: outline.OrphanDrop,
	}
}

// Validate checks the layout config, style table and orphan policy.
func (s Settings) Validate() error {
	if err := s.Layout.Validate(); err != nil {
		return err
	}
	if err := s.Styles.Validate(); err != nil {
		return err
	}
	_, err := outline.ParseOrphanPolicy(string(s.Orphans))
	return err
}

// DefaultPath returns $XDG_CONFIG_HOME/wbsgen/config.toml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "wbsgen", "config.toml"), nil
}

// =============================================================================
// File format
// =============================================================================

type sizeSection struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type goldenSection struct {
	Base  float64 `toml:"base"`
	Ratio float64 `toml:"ratio"`
	From  int     `toml:"from"`
	To    int     `toml:"to"`
}

type gapsSection struct {
	Level1          float64            `toml:"level1"`
	Level2          float64            `toml:"level2"`
	Base            float64            `toml:"base"`
	TightFirstChild float64            `toml:"tight_first_child"`
	Preset          string             `toml:"preset"`
	Golden          goldenSection      `toml:"golden,omitempty"`
	Extra           map[string]float64 `toml:"extra,omitempty"`
}

type widthSection struct {
	ReductionStep float64 `toml:"reduction_step"`
	Min           float64 `toml:"min"`
}

type heightsSection struct {
	Level1  float64 `toml:"level1"`
	Level2  float64 `toml:"level2"`
	Stacked float64 `toml:"stacked"`
}

type treeSection struct {
	Orphans string `toml:"orphans"`
}

type fileConfig struct {
	Canvas  sizeSection            `toml:"canvas"`
	Block   sizeSection            `toml:"block"`
	Gaps    gapsSection            `toml:"gaps"`
	Width   widthSection           `toml:"width"`
	Heights heightsSection         `toml:"heights"`
	Tree    treeSection            `toml:"tree"`
	Styles  map[string]style.Style `toml:"styles,omitempty"`
}

const fallbackKey = "fallback"

// defaultFile seeds decoding so absent keys keep their default value.
func defaultFile() fileConfig {
	d := layout.DefaultConfig()
	return fileConfig{
		Canvas: sizeSection{Width: d.CanvasWidth, Height: d.CanvasHeight},
		Block:  sizeSection{Width: d.WBSWidth, Height: d.WBSHeight},
		Gaps: gapsSection{
			Level1:          d.Level1Gap,
			Level2:          d.Level2Gap,
			Base:            d.BaseVerticalGap,
			TightFirstChild: d.TightFirstChildGap,
			Preset:          PresetGolden,
			Golden:          goldenSection{Base: layout.DefaultGoldenBase, Ratio: layout.GoldenRatio, From: 2, To: 4},
		},
		Width:   widthSection{ReductionStep: d.WidthReductionStep, Min: d.MinWidth},
		Heights: heightsSection{Level1: d.Heights.Level1, Level2: d.Heights.Level2, Stacked: d.Heights.Stacked},
		Tree:    treeSection{Orphans: string(outline.OrphanDrop)},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Settings{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadOrDefault loads path when it exists and returns [Default] otherwise.
// An empty path means [DefaultPath].
func LoadOrDefault(path string) (Settings, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	s, err := Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return s, err
}

// Decode parses a TOML document and resolves it against the defaults.
func Decode(r io.Reader) (Settings, error) {
	fc := defaultFile()
	meta, err := toml.NewDecoder(r).Decode(&fc)
	if err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Settings{}, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return fc.resolve(meta)
}

// DecodeString is Decode for in-memory documents.
func DecodeString(doc string) (Settings, error) {
	return Decode(strings.NewReader(doc))
}

func (fc fileConfig) resolve(meta toml.MetaData) (Settings, error) {
	cfg := layout.Config{
		CanvasWidth:        fc.Canvas.Width,
		CanvasHeight:       fc.Canvas.Height,
		WBSWidth:           fc.Block.Width,
		WBSHeight:          fc.Block.Height,
		Level1Gap:          fc.Gaps.Level1,
		Level2Gap:          fc.Gaps.Level2,
		BaseVerticalGap:    fc.Gaps.Base,
		TightFirstChildGap: fc.Gaps.TightFirstChild,
		WidthReductionStep: fc.Width.ReductionStep,
		MinWidth:           fc.Width.Min,
		Heights: layout.Heights{
			Level1:  fc.Heights.Level1,
			Level2:  fc.Heights.Level2,
			Stacked: fc.Heights.Stacked,
		},
	}

	preset := strings.ToLower(fc.Gaps.Preset)
	if meta.IsDefined("gaps", "extra") && !meta.IsDefined("gaps", "preset") {
		preset = PresetExplicit
	}
	gaps, err := fc.Gaps.table(preset)
	if err != nil {
		return Settings{}, err
	}
	cfg.PerLevelExtraGap = gaps

	orphans, err := outline.ParseOrphanPolicy(fc.Tree.Orphans)
	if err != nil {
		return Settings{}, err
	}

	styles, err := parseStyles(fc.Styles)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{Layout: cfg, Styles: style.DefaultTable().Merge(styles), Orphans: orphans}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (g gapsSection) table(preset string) (layout.Gaps, error) {
	switch preset {
	case PresetGolden, "":
		gs := g.Golden
		if gs.Ratio <= 0 || gs.Ratio > 1 {
			return layout.Gaps{}, errors.New(errors.ErrCodeConfigOutOfRange, "golden ratio must be in (0, 1], got %g", gs.Ratio)
		}
		if gs.Base < 0 {
			return layout.Gaps{}, errors.New(errors.ErrCodeConfigOutOfRange, "golden base must not be negative, got %g", gs.Base)
		}
		if gs.From < 1 || gs.To < gs.From {
			return layout.Gaps{}, errors.New(errors.ErrCodeConfigOutOfRange, "golden levels %d..%d out of range", gs.From, gs.To)
		}
		return layout.GoldenGaps(gs.Base, gs.Ratio, gs.From, gs.To), nil
	case PresetManual:
		return layout.ManualGaps(), nil
	case PresetExplicit:
		levels := make(map[int]float64, len(g.Extra))
		var fallback float64
		for k, v := range g.Extra {
			if k == fallbackKey {
				fallback = v
				continue
			}
			lvl, err := strconv.Atoi(k)
			if err != nil {
				return layout.Gaps{}, errors.New(errors.ErrCodeInvalidInput, "gaps.extra key %q is not a level number", k)
			}
			levels[lvl] = v
		}
		return layout.ExplicitGaps(levels, fallback), nil
	}
	return layout.Gaps{}, errors.New(errors.ErrCodeInvalidInput, "unknown gap preset %q (want golden, manual or explicit)", preset)
}

func parseStyles(in map[string]style.Style) (style.Table, error) {
	t := style.Table{Levels: make(map[int]style.Style, len(in))}
	for k, v := range in {
		if k == "default" {
			t.Default = v
			continue
		}
		lvl, err := strconv.Atoi(k)
		if err != nil {
			return style.Table{}, errors.New(errors.ErrCodeInvalidStyle, "styles key %q is neither a level nor \"default\"", k)
		}
		t.Levels[lvl] = v
	}
	return t, nil
}

// =============================================================================
// Encoding
// =============================================================================

// Encode writes s as a complete TOML document. Gaps are always written as an
// explicit table so the file reproduces s exactly.
func Encode(w io.Writer, s Settings) error {
	c := s.Layout
	fc := fileConfig{
		Canvas: sizeSection{Width: c.CanvasWidth, Height: c.CanvasHeight},
		Block:  sizeSection{Width: c.WBSWidth, Height: c.WBSHeight},
		Gaps: gapsSection{
			Level1:          c.Level1Gap,
			Level2:          c.Level2Gap,
			Base:            c.BaseVerticalGap,
			TightFirstChild: c.TightFirstChildGap,
			Preset:          PresetExplicit,
			Extra:           map[string]float64{fallbackKey: c.PerLevelExtraGap.Fallback},
		},
		Width:   widthSection{ReductionStep: c.WidthReductionStep, Min: c.MinWidth},
		Heights: heightsSection{Level1: c.Heights.Level1, Level2: c.Heights.Level2, Stacked: c.Heights.Stacked},
		Tree:    treeSection{Orphans: string(s.Orphans)},
		Styles:  map[string]style.Style{"default": s.Styles.Default},
	}
	for lvl, v := range c.PerLevelExtraGap.Levels {
		fc.Gaps.Extra[strconv.Itoa(lvl)] = v
	}
	for lvl, st := range s.Styles.Levels {
		fc.Styles[strconv.Itoa(lvl)] = st
	}

	var buf bytes.Buffer
	buf.WriteString("# wbsgen configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile encodes s to path, creating parent directories.
func WriteFile(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Describe summarises s for humans, one "key = value" per line in a stable
// order.
func Describe(s Settings) []string {
	c := s.Layout
	lines := []string{
		fmt.Sprintf("canvas = %g x %g", c.CanvasWidth, c.CanvasHeight),
		fmt.Sprintf("block = %g x %g", c.WBSWidth, c.WBSHeight),
		fmt.Sprintf("gaps.level1 = %g", c.Level1Gap),
		fmt.Sprintf("gaps.level2 = %g", c.Level2Gap),
		fmt.Sprintf("gaps.base = %g", c.BaseVerticalGap),
		fmt.Sprintf("gaps.tight_first_child = %g", c.TightFirstChildGap),
	}
	levels := make([]int, 0, len(c.PerLevelExtraGap.Levels))
	for lvl := range c.PerLevelExtraGap.Levels {
		levels = append(levels, lvl)
	}
	slices.Sort(levels)
	for _, lvl := range levels {
		lines = append(lines, fmt.Sprintf("gaps.extra.%d = %g", lvl, c.PerLevelExtraGap.Levels[lvl]))
	}
	lines = append(lines,
		fmt.Sprintf("gaps.extra.fallback = %g", c.PerLevelExtraGap.Fallback),
		fmt.Sprintf("width.reduction_step = %g", c.WidthReductionStep),
		fmt.Sprintf("width.min = %g", c.MinWidth),
		fmt.Sprintf("heights = %g / %g / %g", c.Heights.Level1, c.Heights.Level2, c.Heights.Stacked),
		fmt.Sprintf("tree.orphans = %s", s.Orphans),
	)
	return lines
}
