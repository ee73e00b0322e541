package layout

import "github.com/matzehuels/wbsgen/pkg/outline"

// Layout computes one box per node of forest.
//
// Roots are spread across the top of the WBS block, their children across a
// second row inside each root's span, and deeper nodes are stacked on the
// right rail of their parent. The result is in depth-first pre-order: each
// root, then each of its children followed by that child's whole stacked
// subtree.
//
// cfg is used as given; validate it at the configuration boundary with
// [Config.Validate]. An empty forest yields nil.
func Layout(forest outline.Forest, cfg Config) []Geometry {
	if len(forest) == 0 {
		return nil
	}
	block := cfg.Block()
	roots := distribute(block.X, block.Width, len(forest), cfg.Level1Gap, cfg.MinWidth)

	var out []Geometry
	for i, root := range forest {
		g := place(root, 0, Rect{
			X:      roots[i].x,
			Y:      block.Y,
			Width:  roots[i].w,
			Height: cfg.Heights.Level1,
		})
		out = append(out, g)
		out = append(out, layoutSecondTier(root, g, cfg)...)
	}
	return out
}

// layoutSecondTier spreads the children of a root across the root's span.
// Each child is followed by its stacked subtree.
func layoutSecondTier(root *outline.Node, parent Geometry, cfg Config) []Geometry {
	if len(root.Children) == 0 {
		return nil
	}
	spans := distribute(parent.X, parent.Width, len(root.Children), cfg.Level2Gap, cfg.MinWidth)

	var out []Geometry
	for i, child := range root.Children {
		g := place(child, 1, Rect{
			X:      spans[i].x,
			Y:      parent.Bottom() + cfg.VerticalGap(child.Level),
			Width:  spans[i].w,
			Height: cfg.Heights.Level2,
		})
		out = append(out, g)
		sub, _ := layoutStack(child, g, cfg)
		out = append(out, sub...)
	}
	return out
}

// layoutStack places the children of node in a column under parent, right
// aligned to it, and recurses. It returns the boxes in pre-order together
// with the bottom edge of the whole subtree, which is parent.Bottom() when
// node has no children.
func layoutStack(node *outline.Node, parent Geometry, cfg Config) ([]Geometry, float64) {
	cursor := parent.Bottom()
	var out []Geometry
	for i, child := range node.Children {
		gap := cfg.VerticalGap(child.Level)
		if i == 0 {
			gap = cfg.TightFirstChildGap
		}
		w := stackedWidth(parent.Width, child.Level, cfg)
		g := place(child, parent.Depth+1, Rect{
			X:      parent.Right() - w,
			Y:      cursor + gap,
			Width:  w,
			Height: cfg.Heights.Stacked,
		})
		out = append(out, g)

		sub, bottom := layoutStack(child, g, cfg)
		out = append(out, sub...)
		cursor = bottom
	}
	return out, cursor
}

// stackedWidth narrows a stacked box by WidthReductionStep per level below
// the second, never below MinWidth.
func stackedWidth(parentWidth float64, level int, cfg Config) float64 {
	steps := float64(max(level-2, 0))
	return max(cfg.MinWidth, parentWidth-cfg.WidthReductionStep*steps)
}

type span struct{ x, w float64 }

// distribute splits [x, x+width] into n equal spans separated by gap. Spans
// narrower than minWidth are widened to it and may then overlap their
// neighbours; that only happens when the block is too narrow for the row.
func distribute(x, width float64, n int, gap, minWidth float64) []span {
	w := (width - float64(n-1)*gap) / float64(n)
	w = max(w, minWidth)
	spans := make([]span, n)
	for i := range spans {
		spans[i] = span{x: x + float64(i)*(w+gap), w: w}
	}
	return spans
}

func place(n *outline.Node, depth int, r Rect) Geometry {
	return Geometry{
		Node:   n,
		Code:   n.Code,
		Text:   n.Text,
		Level:  n.Level,
		Depth:  depth,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}
