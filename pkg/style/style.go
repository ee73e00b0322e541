// Package style holds the per-level visual policy of rendered charts.
//
// Layout only decides where boxes go. How a box looks (fill, outline, font
// size, weight, colour and text alignment) is looked up here by outline level,
// so the same geometry can be rendered with different tables.
package style

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// Text alignments.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Style is the look of one box. Colours are RRGGBB hex without the leading
// '#'. FontSize is in points.
type Style struct {
	Fill      string  `json:"fill" toml:"fill" bson:"fill"`
	Stroke    string  `json:"stroke" toml:"stroke" bson:"stroke"`
	FontColor string  `json:"font_color" toml:"font_color" bson:"font_color"`
	FontSize  float64 `json:"font_size" toml:"font_size" bson:"font_size"`
	Bold      bool    `json:"bold" toml:"bold" bson:"bold"`
	Align     string  `json:"align" toml:"align" bson:"align"`
}

// Table maps outline levels to styles.
type Table struct {
	Levels  map[int]Style `json:"levels" bson:"levels"`
	Default Style         `json:"default" bson:"default"`
}

// For returns the style of a level: the exact entry, else the deepest
// configured level above it, else Default.
func (t Table) For(level int) Style {
	if s, ok := t.Levels[level]; ok {
		return s
	}
	best, found := 0, false
	for lvl := range t.Levels {
		if lvl < level && (!found || lvl > best) {
			best, found = lvl, true
		}
	}
	if found {
		return t.Levels[best]
	}
	return t.Default
}

// Merge returns t with every entry of o laid over it. Empty fields of o keep
// the value from t.
func (t Table) Merge(o Table) Table {
	out := Table{Levels: make(map[int]Style, len(t.Levels)), Default: t.Default.merge(o.Default)}
	for k, v := range t.Levels {
		out.Levels[k] = v
	}
	for k, v := range o.Levels {
		base, ok := out.Levels[k]
		if !ok {
			base = out.For(k)
		}
		out.Levels[k] = base.merge(v)
	}
	return out
}

func (s Style) merge(o Style) Style {
	if o.Fill != "" {
		s.Fill = o.Fill
	}
	if o.Stroke != "" {
		s.Stroke = o.Stroke
	}
	if o.FontColor != "" {
		s.FontColor = o.FontColor
	}
	if o.FontSize != 0 {
		s.FontSize = o.FontSize
	}
	if o.Align != "" {
		s.Align = o.Align
	}
	s.Bold = s.Bold || o.Bold
	return s
}

// DefaultTable is a navy-to-pale palette: bold white text on dark fills for
// the top two levels, dark left-aligned text on light fills below.
func DefaultTable() Table {
	return Table{
		Levels: map[int]Style{
			1: {Fill: "1F3864", Stroke: "1F3864", FontColor: "FFFFFF", FontSize: 14, Bold: true, Align: AlignCenter},
			2: {Fill: "2F5597", Stroke: "2F5597", FontColor: "FFFFFF", FontSize: 12, Bold: true, Align: AlignCenter},
			3: {Fill: "D9E2F3", Stroke: "8EA9DB", FontColor: "1F1F1F", FontSize: 10, Align: AlignLeft},
			4: {Fill: "EDF2F9", Stroke: "B4C6E7", FontColor: "1F1F1F", FontSize: 9, Align: AlignLeft},
		},
		Default: Style{Fill: "FFFFFF", Stroke: "BFBFBF", FontColor: "404040", FontSize: 8, Align: AlignLeft},
	}
}

// Validate checks colours, font sizes and alignments.
func (t Table) Validate() error {
	if err := t.Default.validate("default"); err != nil {
		return err
	}
	levels := make([]int, 0, len(t.Levels))
	for lvl := range t.Levels {
		levels = append(levels, lvl)
	}
	slices.Sort(levels)
	for _, lvl := range levels {
		if lvl < 1 {
			return errors.New(errors.ErrCodeInvalidStyle, "style level must be at least 1, got %d", lvl)
		}
		if err := t.Levels[lvl].validate(fmt.Sprintf("level %d", lvl)); err != nil {
			return err
		}
	}
	return nil
}

func (s Style) validate(name string) error {
	for _, c := range []struct{ field, v string }{
		{"fill", s.Fill}, {"stroke", s.Stroke}, {"font_color", s.FontColor},
	} {
		if c.v == "" {
			continue
		}
		if _, _, _, err := ParseHex(c.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStyle, err, "%s %s", name, c.field)
		}
	}
	if s.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidStyle, "%s font_size must not be negative", name)
	}
	switch s.Align {
	case "", AlignLeft, AlignCenter, AlignRight:
	default:
		return errors.New(errors.ErrCodeInvalidStyle, "%s align %q (want left, center or right)", name, s.Align)
	}
	return nil
}

// ParseHex parses "RRGGBB" or "#RRGGBB" into components.
func ParseHex(hex string) (r, g, b int, err error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("colour %q: want 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("colour %q: %w", hex, err)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}

// CSS returns the colour as "#rrggbb", or fallback when hex is empty.
func CSS(hex, fallback string) string {
	if hex == "" {
		return fallback
	}
	return "#" + strings.ToLower(strings.TrimPrefix(hex, "#"))
}
