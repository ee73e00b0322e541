// Package layout computes box geometry for an outline forest on a fixed
// canvas.
//
// # Tiers
//
// A work breakdown chart has three kinds of rows:
//
//   - Roots share the top row of the WBS block. The block is centred in the
//     canvas and split into equal widths separated by Level1Gap.
//   - Children of a root share a second row inside their parent's span,
//     split the same way with Level2Gap.
//   - Everything deeper is stacked in a column hanging from the right edge of
//     its parent (the right rail), one box per row, each a little narrower
//     than its parent.
//
// # Vertical spacing
//
// A single model drives all vertical gaps. The first child under any parent
// sits TightFirstChildGap below it. Every later node sits
// BaseVerticalGap + PerLevelExtraGap.At(level) below the bottom of whatever
// was placed before it, which for a sibling is the bottom of the previous
// sibling's whole subtree. [GoldenGaps] and [ExplicitGaps] build the per-level
// table for the two familiar presets.
//
// # Determinism
//
// [Layout] is a pure function of the forest and the [Config]. The vertical
// cursor is threaded through return values rather than shared state, so the
// same input always yields the same geometry and separate layouts may run
// concurrently. Output order is the depth-first pre-order of the forest.
//
// # Coordinates
//
// The origin is the top-left corner of the canvas; y grows downwards. Units
// are whatever the config uses. [DefaultConfig] is a 16:9 slide in
// centimetres.
package layout
