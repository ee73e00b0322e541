package outline

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// Key is the integer tuple of a code, used for numeric ordering.
type Key []int

// Compare orders keys lexicographically; a proper prefix sorts first.
func (k Key) Compare(other Key) int {
	return slices.Compare(k, other)
}

// ParseKey converts a dotted code into its integer tuple.
// Empty, signed or non-numeric segments yield a MALFORMED_CODE error.
func ParseKey(code string) (Key, error) {
	if code == "" {
		return nil, errors.New(errors.ErrCodeMalformedCode, "empty outline code")
	}
	parts := strings.Split(code, ".")
	key := make(Key, len(parts))
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, "+-") {
			return nil, errors.New(errors.ErrCodeMalformedCode,
				"outline code %q: segment %d is not a number", code, i+1)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedCode, err,
				"outline code %q: segment %d is not a number", code, i+1)
		}
		key[i] = n
	}
	return key, nil
}

// Sort returns the items ordered by the integer tuple of their codes.
//
// Ordering is numeric per segment ("1.10" after "1.2") and a parent precedes
// its descendants. Items with equal tuples ("1.01" and "1.1") keep their input
// order. The input slice is not modified.
//
// The first malformed code aborts the sort with a MALFORMED_CODE error that
// names the code and, when known, its source line.
func Sort(items []Item) ([]Item, error) {
	type keyed struct {
		item Item
		key  Key
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		k, err := ParseKey(it.Code)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && it.Line > 0 {
				e.Message = fmt.Sprintf("line %d: %s", it.Line, e.Message)
			}
			return nil, err
		}
		ks[i] = keyed{item: it, key: k}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		return a.key.Compare(b.key)
	})

	out := make([]Item, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out, nil
}
