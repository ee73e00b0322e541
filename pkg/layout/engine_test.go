package layout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/matzehuels/wbsgen/pkg/outline"
)

func testConfig() Config {
	return Config{
		CanvasWidth:        100,
		CanvasHeight:       60,
		WBSWidth:           80,
		WBSHeight:          40,
		Level1Gap:          4,
		Level2Gap:          2,
		BaseVerticalGap:    1,
		TightFirstChildGap: 0.5,
		PerLevelExtraGap:   ExplicitGaps(map[int]float64{2: 2, 3: 1}, 0.5),
		WidthReductionStep: 2,
		MinWidth:           10,
		Heights:            Heights{Level1: 6, Level2: 5, Stacked: 4},
	}
}

func forestOf(t *testing.T, codes ...string) outline.Forest {
	t.Helper()
	items := make([]outline.Item, len(codes))
	for i, c := range codes {
		items[i] = outline.Item{Code: c, Text: "item " + c, Level: outline.Level(c)}
	}
	sorted, err := outline.Sort(items)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	f, _, err := outline.Build(sorted)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return f
}

func byCode(geoms []Geometry) map[string]Geometry {
	m := make(map[string]Geometry, len(geoms))
	for _, g := range geoms {
		m[g.Code] = g
	}
	return m
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLayoutScenarioA(t *testing.T) {
	cfg := DefaultConfig()
	geoms := Layout(forestOf(t, "1", "1.1", "1.2", "1.1.1"), cfg)

	if len(geoms) != 4 {
		t.Fatalf("len(geoms) = %d, want 4", len(geoms))
	}
	order := []string{"1", "1.1", "1.1.1", "1.2"}
	for i, code := range order {
		if geoms[i].Code != code {
			t.Errorf("geoms[%d] = %s, want %s", i, geoms[i].Code, code)
		}
	}

	m := byCode(geoms)
	root, a, b, deep := m["1"], m["1.1"], m["1.2"], m["1.1.1"]

	block := cfg.Block()
	if !approx(root.X, block.X) || !approx(root.Width, block.Width) || !approx(root.Y, block.Y) {
		t.Errorf("root = %+v, want full block width at %+v", root.Rect(), block)
	}
	if !approx(a.Width, b.Width) {
		t.Errorf("second tier widths differ: %g vs %g", a.Width, b.Width)
	}
	if !approx(a.X, root.X) || !approx(b.Right(), root.Right()) {
		t.Errorf("second tier should span the root: %+v %+v", a.Rect(), b.Rect())
	}
	if !approx(b.X-a.Right(), cfg.Level2Gap) {
		t.Errorf("second tier gap = %g, want %g", b.X-a.Right(), cfg.Level2Gap)
	}
	if !approx(a.Y, root.Bottom()+cfg.VerticalGap(2)) {
		t.Errorf("1.1 y = %g, want %g", a.Y, root.Bottom()+cfg.VerticalGap(2))
	}
	if !approx(deep.Right(), a.Right()) {
		t.Errorf("1.1.1 right = %g, want %g", deep.Right(), a.Right())
	}
	if deep.Width >= a.Width {
		t.Errorf("1.1.1 width %g should be narrower than 1.1 width %g", deep.Width, a.Width)
	}
	if !approx(deep.Y, a.Bottom()+cfg.TightFirstChildGap) {
		t.Errorf("1.1.1 y = %g, want %g", deep.Y, a.Bottom()+cfg.TightFirstChildGap)
	}
	if deep.Node == nil || deep.Node.Code != "1.1.1" {
		t.Errorf("1.1.1 node = %+v", deep.Node)
	}
}

func TestLayoutScenarioB(t *testing.T) {
	cfg := testConfig()
	geoms := Layout(forestOf(t, "1"), cfg)
	if len(geoms) != 1 {
		t.Fatalf("len(geoms) = %d, want 1", len(geoms))
	}
	g := geoms[0]
	want := Rect{X: 10, Y: 10, Width: 80, Height: 6}
	if g.Rect() != want {
		t.Errorf("root = %+v, want %+v", g.Rect(), want)
	}
	if g.Level != 1 || g.Depth != 0 {
		t.Errorf("level/depth = %d/%d, want 1/0", g.Level, g.Depth)
	}
}

func TestLayoutScenarioC(t *testing.T) {
	cfg := testConfig()
	cfg.BaseVerticalGap = 0.4
	cfg.PerLevelExtraGap = ExplicitGaps(map[int]float64{3: 0.3, 4: 0.2}, 0.1)

	geoms := Layout(forestOf(t, "1", "1.1", "1.1.1", "1.1.1.1", "1.1.1.2"), cfg)
	m := byCode(geoms)

	first := m["1.1.1.1"]
	if !approx(first.Y, m["1.1.1"].Bottom()+cfg.TightFirstChildGap) {
		t.Errorf("first child y = %g, want tight gap below parent (%g)",
			first.Y, m["1.1.1"].Bottom()+cfg.TightFirstChildGap)
	}
	second := m["1.1.1.2"]
	if !approx(second.Y-first.Bottom(), 0.6) {
		t.Errorf("level 4 sibling gap = %g, want 0.6", second.Y-first.Bottom())
	}
}

func TestLayoutSiblingGapMeasuredFromSubtree(t *testing.T) {
	cfg := testConfig()
	geoms := Layout(forestOf(t, "1", "1.1", "1.1.1", "1.1.1.1", "1.1.1.2", "1.1.2"), cfg)
	m := byCode(geoms)

	want := m["1.1.1.2"].Bottom() + cfg.VerticalGap(3)
	if !approx(m["1.1.2"].Y, want) {
		t.Errorf("1.1.2 y = %g, want %g (below the deepest box of 1.1.1)", m["1.1.2"].Y, want)
	}
}

func TestLayoutWidthFloor(t *testing.T) {
	cfg := testConfig()
	cfg.WidthReductionStep = 15
	geoms := Layout(forestOf(t, "1", "1.1", "1.2", "1.1.1", "1.1.1.1", "1.1.1.1.1"), cfg)
	m := byCode(geoms)

	if got := m["1.1.1"].Width; !approx(got, 39-15) {
		t.Errorf("1.1.1 width = %g, want 24", got)
	}
	for _, code := range []string{"1.1.1.1", "1.1.1.1.1"} {
		if got := m[code].Width; !approx(got, cfg.MinWidth) {
			t.Errorf("%s width = %g, want floor %g", code, got, cfg.MinWidth)
		}
		if !approx(m[code].Right(), m["1.1"].Right()) {
			t.Errorf("%s right = %g, want %g", code, m[code].Right(), m["1.1"].Right())
		}
	}
}

func TestLayoutMultipleRoots(t *testing.T) {
	cfg := testConfig()
	geoms := Layout(forestOf(t, "1", "2", "3", "2.1"), cfg)
	m := byCode(geoms)

	w := (80 - 2*4.0) / 3
	for i, code := range []string{"1", "2", "3"} {
		g := m[code]
		if !approx(g.Width, w) || !approx(g.X, 10+float64(i)*(w+4)) {
			t.Errorf("%s = %+v, want x=%g w=%g", code, g.Rect(), 10+float64(i)*(w+4), w)
		}
	}
	if !approx(m["2.1"].X, m["2"].X) || !approx(m["2.1"].Width, m["2"].Width) {
		t.Errorf("only child should span its parent: %+v vs %+v", m["2.1"].Rect(), m["2"].Rect())
	}
}

func TestLayoutEmpty(t *testing.T) {
	if got := Layout(nil, DefaultConfig()); got != nil {
		t.Errorf("Layout(nil) = %v, want nil", got)
	}
}

// =============================================================================
// Properties over random outlines
// =============================================================================

func randomCodes(rng *rand.Rand) []string {
	var codes []string
	var grow func(prefix string, depth int)
	grow = func(prefix string, depth int) {
		if depth >= 6 {
			return
		}
		n := rng.IntN(4)
		if depth == 0 {
			n++
		}
		for i := 1; i <= n; i++ {
			code := fmt.Sprint(i)
			if prefix != "" {
				code = prefix + "." + code
			}
			codes = append(codes, code)
			grow(code, depth+1)
		}
	}
	grow("", 0)
	return codes
}

func stripNodes(geoms []Geometry) []Geometry {
	out := make([]Geometry, len(geoms))
	for i, g := range geoms {
		g.Node = nil
		out[i] = g
	}
	return out
}

// parents maps each geometry index to the index of its parent, -1 for roots.
func parents(geoms []Geometry) []int {
	out := make([]int, len(geoms))
	var stack []int
	for i, g := range geoms {
		stack = stack[:g.Depth]
		if g.Depth == 0 {
			out[i] = -1
		} else {
			out[i] = stack[g.Depth-1]
		}
		stack = append(stack, i)
	}
	return out
}

func TestLayoutProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	cfg := DefaultConfig()

	for iter := 0; iter < 50; iter++ {
		codes := randomCodes(rng)
		forest := forestOf(t, codes...)
		geoms := Layout(forest, cfg)

		if len(geoms) != len(codes) {
			t.Fatalf("iter %d: %d boxes for %d codes", iter, len(geoms), len(codes))
		}

		// Determinism.
		if again := Layout(forest, cfg); !reflect.DeepEqual(geoms, again) {
			t.Fatalf("iter %d: layout not deterministic", iter)
		}

		// Permutation insensitivity.
		shuffled := append([]string(nil), codes...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if perm := Layout(forestOf(t, shuffled...), cfg); !reflect.DeepEqual(stripNodes(geoms), stripNodes(perm)) {
			t.Fatalf("iter %d: layout depends on input order", iter)
		}

		par := parents(geoms)
		for i, g := range geoms {
			if g.Width < cfg.MinWidth-eps {
				t.Errorf("iter %d: %s width %g below floor", iter, g.Code, g.Width)
			}
			p := par[i]
			if p < 0 {
				continue
			}
			parent := geoms[p]
			if g.Y <= parent.Bottom() {
				t.Errorf("iter %d: %s y=%g not below parent %s bottom=%g", iter, g.Code, g.Y, parent.Code, parent.Bottom())
			}
			if g.Depth < 2 {
				continue
			}
			if !approx(g.Right(), parent.Right()) {
				t.Errorf("iter %d: %s right=%g, parent right=%g", iter, g.Code, g.Right(), parent.Right())
			}
			if g.Width > parent.Width+eps {
				t.Errorf("iter %d: %s wider than parent", iter, g.Code)
			}
			// Stacked boxes follow their pre-order predecessor with a gap.
			prev := geoms[i-1]
			gap := cfg.VerticalGap(g.Level)
			if p == i-1 {
				gap = cfg.TightFirstChildGap
			}
			if g.Y+eps < prev.Bottom()+gap {
				t.Errorf("iter %d: %s y=%g overlaps %s bottom=%g + gap %g", iter, g.Code, g.Y, prev.Code, prev.Bottom(), gap)
			}
		}

		// No two boxes of the same column overlap.
		for i := range geoms {
			for j := i + 1; j < len(geoms); j++ {
				if geoms[i].Rect().Overlaps(geoms[j].Rect()) {
					t.Errorf("iter %d: %s overlaps %s", iter, geoms[i].Code, geoms[j].Code)
				}
			}
		}
	}
}
