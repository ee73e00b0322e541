package outline

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

func codes(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Code
	}
	return out
}

func itemsOf(cs ...string) []Item {
	items := make([]Item, len(cs))
	for i, c := range cs {
		items[i] = Item{Code: c, Level: Level(c), Line: i + 1}
	}
	return items
}

func TestSortNumeric(t *testing.T) {
	in := itemsOf("1.10", "2", "1.2", "1", "1.1.1", "1.1", "10", "9")
	got, err := Sort(in)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"1", "1.1", "1.1.1", "1.2", "1.10", "2", "9", "10"}
	if !slices.Equal(codes(got), want) {
		t.Errorf("Sort = %v, want %v", codes(got), want)
	}
	if in[0].Code != "1.10" {
		t.Error("Sort modified its input")
	}
}

func TestSortStableForEqualKeys(t *testing.T) {
	in := []Item{
		{Code: "1.01", Text: "first"},
		{Code: "1"},
		{Code: "1.1", Text: "second"},
	}
	got, err := Sort(in)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got[1].Text != "first" || got[2].Text != "second" {
		t.Errorf("equal keys reordered: %v", got)
	}
}

func TestSortMalformed(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
	}{
		{"empty segment", []string{"1", "1..2"}},
		{"leading dot", []string{".1"}},
		{"letters", []string{"1.a"}},
		{"overflow", []string{"1.99999999999999999999999"}},
		{"empty code", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sort(itemsOf(tt.codes...))
			if err == nil {
				t.Fatal("Sort succeeded, want MALFORMED_CODE")
			}
			if !errors.Is(err, errors.ErrCodeMalformedCode) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedCode)
			}
		})
	}
}

func TestSortMalformedNamesLine(t *testing.T) {
	_, err := Sort([]Item{{Code: "1"}, {Code: "2..1", Line: 7}})
	if err == nil {
		t.Fatal("Sort succeeded, want error")
	}
	if msg := err.Error(); !strings.Contains(msg, "line 7") || !strings.Contains(msg, `"2..1"`) {
		t.Errorf("error %q should name the code and line", msg)
	}
	want := `MALFORMED_CODE: line 7: outline code "2..1": segment 2 is not a number`
	if msg := err.Error(); msg != want {
		t.Errorf("error = %q, want %q", msg, want)
	}
}

func TestKeyCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1.1", -1},
		{"1.2", "1.10", -1},
		{"2", "1.9.9", 1},
		{"3.4", "3.4", 0},
	}
	for _, tt := range tests {
		ka, _ := ParseKey(tt.a)
		kb, _ := ParseKey(tt.b)
		if got := ka.Compare(kb); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
