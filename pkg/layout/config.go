package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// Gaps is a per-level table of extra vertical spacing.
//
// Levels maps an outline level to its gap. Fallback applies to levels deeper
// than the deepest configured one. Values must not increase with depth.
type Gaps struct {
	Levels   map[int]float64 `json:"levels" bson:"levels" msgpack:"levels"`
	Fallback float64         `json:"fallback" bson:"fallback" msgpack:"fallback"`
}

// At returns the gap for a level. Levels shallower than any configured level
// use the shallowest configured value; an empty table yields Fallback.
func (g Gaps) At(level int) float64 {
	if v, ok := g.Levels[level]; ok {
		return v
	}
	if len(g.Levels) == 0 {
		return g.Fallback
	}
	keys := g.levels()
	if level < keys[0] {
		return g.Levels[keys[0]]
	}
	if level > keys[len(keys)-1] {
		return g.Fallback
	}
	// Holes between configured levels take the next shallower value.
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] < level {
			return g.Levels[keys[i]]
		}
	}
	return g.Fallback
}

func (g Gaps) levels() []int {
	keys := make([]int, 0, len(g.Levels))
	for k := range g.Levels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Heights are the fixed box heights of the three tiers.
type Heights struct {
	Level1  float64 `json:"level1" bson:"level1" msgpack:"level1"`
	Level2  float64 `json:"level2" bson:"level2" msgpack:"level2"`
	Stacked float64 `json:"stacked" bson:"stacked" msgpack:"stacked"`
}

// Config holds every tunable of the layout. Build one with [DefaultConfig]
// and adjust; call [Config.Validate] before handing it to [Layout].
type Config struct {
	CanvasWidth  float64 `json:"canvas_width" bson:"canvas_width" msgpack:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height" bson:"canvas_height" msgpack:"canvas_height"`
	WBSWidth     float64 `json:"wbs_width" bson:"wbs_width" msgpack:"wbs_width"`
	WBSHeight    float64 `json:"wbs_height" bson:"wbs_height" msgpack:"wbs_height"`

	Level1Gap float64 `json:"level1_gap" bson:"level1_gap" msgpack:"level1_gap"` // horizontal, between roots
	Level2Gap float64 `json:"level2_gap" bson:"level2_gap" msgpack:"level2_gap"` // horizontal, between second-tier siblings

	BaseVerticalGap    float64 `json:"base_vertical_gap" bson:"base_vertical_gap" msgpack:"base_vertical_gap"`
	TightFirstChildGap float64 `json:"tight_first_child_gap" bson:"tight_first_child_gap" msgpack:"tight_first_child_gap"`
	PerLevelExtraGap   Gaps    `json:"per_level_extra_gap" bson:"per_level_extra_gap" msgpack:"per_level_extra_gap"`

	WidthReductionStep float64 `json:"width_reduction_step" bson:"width_reduction_step" msgpack:"width_reduction_step"`
	MinWidth           float64 `json:"min_width" bson:"min_width" msgpack:"min_width"`

	Heights Heights `json:"heights" bson:"heights" msgpack:"heights"`
}

// Default dimensions: a 16:9 slide in centimetres.
const (
	DefaultCanvasWidth  = 33.87
	DefaultCanvasHeight = 19.05
	DefaultWBSWidth     = 31.0
	DefaultWBSHeight    = 16.0
)

// DefaultConfig returns the stock configuration: golden-ratio spacing from a
// 1 cm base gap on a widescreen slide.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:        DefaultCanvasWidth,
		CanvasHeight:       DefaultCanvasHeight,
		WBSWidth:           DefaultWBSWidth,
		WBSHeight:          DefaultWBSHeight,
		Level1Gap:          0.5,
		Level2Gap:          0.3,
		BaseVerticalGap:    0,
		TightFirstChildGap: 0.1,
		PerLevelExtraGap:   GoldenGaps(DefaultGoldenBase, GoldenRatio, 2, 4),
		WidthReductionStep: 0.3,
		MinWidth:           1.5,
		Heights: Heights{
			Level1:  1.2,
			Level2:  1.0,
			Stacked: 0.8,
		},
	}
}

// VerticalGap is the spacing above a node of the given level that is not the
// first child of its parent.
func (c Config) VerticalGap(level int) float64 {
	return c.BaseVerticalGap + c.PerLevelExtraGap.At(level)
}

// Block returns the WBS block rectangle, centred in the canvas.
func (c Config) Block() Rect {
	return Rect{
		X:      (c.CanvasWidth - c.WBSWidth) / 2,
		Y:      (c.CanvasHeight - c.WBSHeight) / 2,
		Width:  c.WBSWidth,
		Height: c.WBSHeight,
	}
}

// Canvas returns the canvas rectangle.
func (c Config) Canvas() Rect {
	return Rect{Width: c.CanvasWidth, Height: c.CanvasHeight}
}

// Clone returns a deep copy; the gap table is not shared.
func (c Config) Clone() Config {
	out := c
	if c.PerLevelExtraGap.Levels != nil {
		out.PerLevelExtraGap.Levels = make(map[int]float64, len(c.PerLevelExtraGap.Levels))
		for k, v := range c.PerLevelExtraGap.Levels {
			out.PerLevelExtraGap.Levels[k] = v
		}
	}
	return out
}

// Validate rejects configurations the layout cannot honour with a
// CONFIG_OUT_OF_RANGE error: non-finite values, non-positive dimensions,
// negative gaps, an extra-gap table that grows with depth, and a minimum
// width wider than the block. The tight gap must be positive or a first
// child would touch its parent's bottom edge.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"canvas width", c.CanvasWidth},
		{"canvas height", c.CanvasHeight},
		{"wbs width", c.WBSWidth},
		{"wbs height", c.WBSHeight},
		{"level 1 height", c.Heights.Level1},
		{"level 2 height", c.Heights.Level2},
		{"stacked height", c.Heights.Stacked},
		{"tight first child gap", c.TightFirstChildGap},
	}
	for _, p := range positive {
		if err := finite(p.name, p.v); err != nil {
			return err
		}
		if p.v <= 0 {
			return outOfRange("%s must be positive, got %g", p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"level 1 gap", c.Level1Gap},
		{"level 2 gap", c.Level2Gap},
		{"base vertical gap", c.BaseVerticalGap},
		{"width reduction step", c.WidthReductionStep},
		{"min width", c.MinWidth},
		{"fallback extra gap", c.PerLevelExtraGap.Fallback},
	}
	for _, p := range nonNegative {
		if err := finite(p.name, p.v); err != nil {
			return err
		}
		if p.v < 0 {
			return outOfRange("%s must not be negative, got %g", p.name, p.v)
		}
	}

	if c.MinWidth > c.WBSWidth {
		return outOfRange("min width %g exceeds wbs width %g", c.MinWidth, c.WBSWidth)
	}

	return c.PerLevelExtraGap.validate()
}

func (g Gaps) validate() error {
	keys := g.levels()
	for i, lvl := range keys {
		v := g.Levels[lvl]
		if lvl < 1 {
			return outOfRange("extra gap level must be at least 1, got %d", lvl)
		}
		if err := finite("extra gap", v); err != nil {
			return err
		}
		if v < 0 {
			return outOfRange("extra gap for level %d must not be negative, got %g", lvl, v)
		}
		if i > 0 && v > g.Levels[keys[i-1]] {
			return outOfRange("extra gap for level %d (%g) exceeds level %d (%g)",
				lvl, v, keys[i-1], g.Levels[keys[i-1]])
		}
	}
	if n := len(keys); n > 0 && g.Fallback > g.Levels[keys[n-1]] {
		return outOfRange("fallback extra gap %g exceeds level %d (%g)",
			g.Fallback, keys[n-1], g.Levels[keys[n-1]])
	}
	return nil
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return outOfRange("%s must be a finite number", name)
	}
	return nil
}

func outOfRange(format string, args ...any) error {
	return errors.New(errors.ErrCodeConfigOutOfRange, format, args...)
}
