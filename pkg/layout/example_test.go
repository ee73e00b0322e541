package layout_test

import (
	"fmt"

	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
)

func ExampleLayout() {
	cfg := layout.Config{
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
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		return
	}

	items, _ := outline.Sort(outline.ParseLines([]string{
		"1 Project", "1.1 Plan", "1.2 Build", "1.1.1 Scope", "1.1.2 Budget",
	}))
	forest, _, _ := outline.Build(items)

	for _, g := range layout.Layout(forest, cfg) {
		fmt.Printf("%-5s x=%g y=%g w=%g h=%g\n", g.Code, g.X, g.Y, g.Width, g.Height)
	}
	// Output:
	// 1     x=10 y=10 w=80 h=6
	// 1.1   x=10 y=19 w=39 h=5
	// 1.1.1 x=12 y=24.5 w=37 h=4
	// 1.1.2 x=12 y=30.5 w=37 h=4
	// 1.2   x=51 y=19 w=39 h=5
}

func ExampleGoldenGaps() {
	g := layout.GoldenGaps(1.0, layout.GoldenRatio, 2, 4)
	fmt.Println(g.At(2), g.At(3), g.At(4), g.At(5))
	// Output: 1 0.62 0.38 0.23
}
