package layout

import (
	"math"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/outline"
)

// Rect is an axis-aligned rectangle with a top-left origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Contains reports whether o lies entirely inside r, within eps.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Overlaps reports whether r and o share any area beyond eps.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right()-eps && o.X < r.Right()-eps &&
		r.Y < o.Bottom()-eps && o.Y < r.Bottom()-eps
}

// eps absorbs floating point noise in geometric comparisons.
const eps = 1e-9

// Geometry is the computed box of one node. Node is only set on geometry
// produced by [Layout] or [Relink]; serialised geometry carries Code, Text and
// Level instead.
type Geometry struct {
	Node  *outline.Node `json:"-" bson:"-" msgpack:"-"`
	Code  string        `json:"code" bson:"code" msgpack:"code"`
	Text  string        `json:"text" bson:"text" msgpack:"text"`
	Level int           `json:"level" bson:"level" msgpack:"level"`
	// Depth is the tier-relative depth in the forest, 0 for roots. It differs
	// from Level only for adopted orphans.
	Depth int `json:"depth" bson:"depth" msgpack:"depth"`

	X      float64 `json:"x" bson:"x" msgpack:"x"`
	Y      float64 `json:"y" bson:"y" msgpack:"y"`
	Width  float64 `json:"w" bson:"w" msgpack:"w"`
	Height float64 `json:"h" bson:"h" msgpack:"h"`
}

// Rect returns the box of g.
func (g Geometry) Rect() Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// Right returns the x coordinate of the right edge.
func (g Geometry) Right() float64 { return g.X + g.Width }

// Bottom returns the y coordinate of the bottom edge.
func (g Geometry) Bottom() float64 { return g.Y + g.Height }

// CenterX returns the horizontal center point.
func (g Geometry) CenterX() float64 { return g.X + g.Width/2 }

// CenterY returns the vertical center point.
func (g Geometry) CenterY() float64 { return g.Y + g.Height/2 }

// Label returns "code text".
func (g Geometry) Label() string {
	if g.Text == "" {
		return g.Code
	}
	return g.Code + " " + g.Text
}

// Bounds returns the smallest rectangle holding every box, or the zero Rect
// for no geometry.
func Bounds(geoms []Geometry) Rect {
	if len(geoms) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, g := range geoms {
		minX = min(minX, g.X)
		minY = min(minY, g.Y)
		maxX = max(maxX, g.Right())
		maxY = max(maxY, g.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Overflow describes how far laid-out content spills past the WBS block.
// Zero fields mean the content fits on that side.
type Overflow struct {
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Left   float64 `json:"left"`
}

// Any reports whether the content spills on any side.
func (o Overflow) Any() bool {
	return o.Bottom > eps || o.Right > eps || o.Left > eps
}

// CheckOverflow measures geoms against the WBS block of cfg. It never alters
// geometry; callers decide whether to warn, shrink gaps or paginate.
func CheckOverflow(cfg Config, geoms []Geometry) Overflow {
	if len(geoms) == 0 {
		return Overflow{}
	}
	block := cfg.Block()
	b := Bounds(geoms)
	return Overflow{
		Bottom: max(0, b.Bottom()-block.Bottom()),
		Right:  max(0, b.Right()-block.Right()),
		Left:   max(0, block.X-b.X),
	}
}

// Relink attaches serialised geometry back to the nodes of forest.
//
// Geometry is emitted in pre-order, so the i-th record belongs to the i-th
// node of [outline.Forest.Walk]. Lengths and codes must agree; otherwise the
// records describe a different outline and an INVALID_INPUT error is
// returned.
func Relink(forest outline.Forest, geoms []Geometry) ([]Geometry, error) {
	if n := forest.Len(); n != len(geoms) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"geometry has %d boxes, outline has %d nodes", len(geoms), n)
	}
	out := make([]Geometry, len(geoms))
	copy(out, geoms)

	var err error
	i := 0
	forest.Walk(func(n *outline.Node, _ int) bool {
		if out[i].Code != n.Code {
			err = errors.New(errors.ErrCodeInvalidInput,
				"geometry %d is %q, outline node is %q", i, out[i].Code, n.Code)
			return false
		}
		out[i].Node = n
		i++
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
