package outline

import (
	"fmt"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// Node is one entry of the built tree. A parent owns its children
// exclusively; nodes hold no reference back to their parent.
type Node struct {
	Code     string
	Text     string
	Level    int
	Children []*Node
}

// Label returns "code text", the caption renderers put on a box.
func (n *Node) Label() string {
	if n.Text == "" {
		return n.Code
	}
	return n.Code + " " + n.Text
}

// Forest is the ordered list of root nodes.
type Forest []*Node

// Walk visits every node in depth-first pre-order, the order layouts are
// emitted in. depth is 0 for roots. Returning false from fn stops the walk.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int) bool
	visit = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c, depth+1) {
				return false
			}
		}
		return true
	}
	for _, root := range f {
		if !visit(root, 0) {
			return
		}
	}
}

// Len returns the total number of nodes.
func (f Forest) Len() int {
	n := 0
	f.Walk(func(*Node, int) bool { n++; return true })
	return n
}

// Depth returns the number of tiers, 0 for an empty forest.
func (f Forest) Depth() int {
	deepest := 0
	f.Walk(func(_ *Node, d int) bool {
		deepest = max(deepest, d+1)
		return true
	})
	return deepest
}

// Find returns the first node with the given code in pre-order.
func (f Forest) Find(code string) *Node {
	var found *Node
	f.Walk(func(n *Node, _ int) bool {
		if n.Code == code {
			found = n
			return false
		}
		return true
	})
	return found
}

// Items flattens the forest back into items in pre-order.
func (f Forest) Items() []Item {
	items := make([]Item, 0)
	f.Walk(func(n *Node, _ int) bool {
		items = append(items, Item{Code: n.Code, Text: n.Text, Level: n.Level})
		return true
	})
	return items
}

// String renders the forest as an indented outline, one node per line.
func (f Forest) String() string {
	var b strings.Builder
	f.Walk(func(n *Node, d int) bool {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", d), n.Label())
		return true
	})
	return b.String()
}

// =============================================================================
// Orphan handling
// =============================================================================

// OrphanPolicy decides what happens to an item whose parent code is absent.
type OrphanPolicy string

const (
	// OrphanDrop leaves the orphan out of the tree. Its descendants then
	// have no parent either and are dropped in turn.
	OrphanDrop OrphanPolicy = "drop"
	// OrphanAdopt attaches the orphan to its nearest existing ancestor, or
	// makes it a root when no ancestor exists.
	OrphanAdopt OrphanPolicy = "adopt"
	// OrphanStrict fails the build on the first orphan or duplicate code.
	OrphanStrict OrphanPolicy = "strict"
)

// OrphanPolicies lists the accepted policies, default first.
var OrphanPolicies = []OrphanPolicy{OrphanDrop, OrphanAdopt, OrphanStrict}

// ParseOrphanPolicy converts a name into a policy. An empty name yields
// [OrphanDrop].
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch p := OrphanPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OrphanDrop, nil
	case OrphanDrop, OrphanAdopt, OrphanStrict:
		return p, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"unknown orphan policy %q (want drop, adopt or strict)", s)
}

// Orphan records an item whose parent code was missing.
type Orphan struct {
	Item Item `json:"item"`
	// AttachedTo is the code the item was adopted by, "" when it was dropped
	// or became a root.
	AttachedTo string `json:"attached_to,omitempty"`
	Dropped    bool   `json:"dropped"`
}

// BuildReport lists what [Build] tolerated instead of failing.
type BuildReport struct {
	Orphans    []Orphan `json:"orphans,omitempty"`
	Duplicates []Item   `json:"duplicates,omitempty"`
}

// Empty reports whether the build saw no orphans and no duplicates.
func (r BuildReport) Empty() bool {
	return len(r.Orphans) == 0 && len(r.Duplicates) == 0
}

// Dropped returns the number of orphans left out of the tree.
func (r BuildReport) Dropped() int {
	n := 0
	for _, o := range r.Orphans {
		if o.Dropped {
			n++
		}
	}
	return n
}

// BuildOption configures [Build].
type BuildOption func(*builder)

// WithOrphanPolicy sets the orphan policy. The default is [OrphanDrop].
func WithOrphanPolicy(p OrphanPolicy) BuildOption {
	return func(b *builder) {
		if p != "" {
			b.policy = p
		}
	}
}

type builder struct {
	policy OrphanPolicy
	index  map[string]*Node
	roots  Forest
	report BuildReport
}

// Build links items into a forest.
//
// Items must already be in numeric code order (see [Sort]); Build does not
// sort. Each item's parent is looked up by code in the nodes built so far:
// an empty parent code makes a root, a known parent receives the node as its
// last child, and a missing parent is handled by the orphan policy.
//
// Duplicate codes are kept as separate nodes. Later descendants attach to the
// most recent node carrying the code. Under [OrphanStrict] duplicates fail the
// build with DUPLICATE_CODE.
func Build(items []Item, opts ...BuildOption) (Forest, BuildReport, error) {
	b := &builder{
		policy: OrphanDrop,
		index:  make(map[string]*Node, len(items)),
	}
	for _, opt := range opts {
		opt(b)
	}
	if _, err := ParseOrphanPolicy(string(b.policy)); err != nil {
		return nil, BuildReport{}, err
	}

	for _, it := range items {
		if err := b.add(it); err != nil {
			return nil, BuildReport{}, err
		}
	}
	return b.roots, b.report, nil
}

func (b *builder) add(it Item) error {
	node := &Node{Code: it.Code, Text: it.Text, Level: Level(it.Code)}

	if _, dup := b.index[it.Code]; dup {
		if b.policy == OrphanStrict {
			return errors.New(errors.ErrCodeDuplicateCode, "outline code %q appears more than once%s", it.Code, lineSuffix(it))
		}
		b.report.Duplicates = append(b.report.Duplicates, it)
	}

	parentCode := ParentCode(it.Code)
	if parentCode == "" {
		b.roots = append(b.roots, node)
		b.index[it.Code] = node
		return nil
	}
	if parent, ok := b.index[parentCode]; ok {
		parent.Children = append(parent.Children, node)
		b.index[it.Code] = node
		return nil
	}

	switch b.policy {
	case OrphanStrict:
		return errors.New(errors.ErrCodeOrphanNode, "outline code %q has no parent %q%s", it.Code, parentCode, lineSuffix(it))
	case OrphanAdopt:
		if anc := b.nearestAncestor(parentCode); anc != nil {
			anc.Children = append(anc.Children, node)
			b.report.Orphans = append(b.report.Orphans, Orphan{Item: it, AttachedTo: anc.Code})
		} else {
			b.roots = append(b.roots, node)
			b.report.Orphans = append(b.report.Orphans, Orphan{Item: it})
		}
		b.index[it.Code] = node
	default:
		b.report.Orphans = append(b.report.Orphans, Orphan{Item: it, Dropped: true})
	}
	return nil
}

func (b *builder) nearestAncestor(code string) *Node {
	for code != "" {
		if n, ok := b.index[code]; ok {
			return n
		}
		code = ParentCode(code)
	}
	return nil
}

func lineSuffix(it Item) string {
	if it.Line > 0 {
		return fmt.Sprintf(" (line %d)", it.Line)
	}
	return ""
}
