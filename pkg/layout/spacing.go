package layout

import "math"

// GoldenRatio is the decay factor of the golden spacing preset.
const GoldenRatio = 0.618

// DefaultGoldenBase is the level 1 to level 2 gap the golden preset starts
// from.
const DefaultGoldenBase = 1.0

// GoldenGaps builds a gap table that decays by ratio per level.
//
// Level from gets first; every following level up to to gets the previous
// value times ratio, rounded to two decimals. Fallback is one more step.
// Rounding is applied per step, so GoldenGaps(1, 0.618, 2, 4) yields
// 1, 0.62, 0.38 and a fallback of 0.23.
func GoldenGaps(first, ratio float64, from, to int) Gaps {
	if to < from {
		to = from
	}
	g := Gaps{Levels: make(map[int]float64, to-from+1)}
	v := first
	g.Levels[from] = v
	for lvl := from + 1; lvl <= to; lvl++ {
		v = round2(v * ratio)
		g.Levels[lvl] = v
	}
	g.Fallback = round2(v * ratio)
	return g
}

// ExplicitGaps builds a gap table from hand-picked values. The map is copied.
func ExplicitGaps(levels map[int]float64, fallback float64) Gaps {
	g := Gaps{Levels: make(map[int]float64, len(levels)), Fallback: fallback}
	for k, v := range levels {
		g.Levels[k] = v
	}
	return g
}

// ManualGaps returns the hand-tuned preset: 0.6 above level 2, 0.4 above
// level 3, 0.2 above level 4 and 0.1 deeper.
func ManualGaps() Gaps {
	return ExplicitGaps(map[int]float64{2: 0.6, 3: 0.4, 4: 0.2}, 0.1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
