package outline

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

func mustBuild(t *testing.T, items []Item, opts ...BuildOption) (Forest, BuildReport) {
	t.Helper()
	sorted, err := Sort(items)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	f, rep, err := Build(sorted, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return f, rep
}

func TestBuildBasic(t *testing.T) {
	f, rep := mustBuild(t, itemsOf("1", "1.1", "1.2", "1.1.1", "2", "2.1"))

	if len(f) != 2 {
		t.Fatalf("roots = %d, want 2", len(f))
	}
	if !rep.Empty() {
		t.Errorf("report = %+v, want empty", rep)
	}
	if got := len(f[0].Children); got != 2 {
		t.Errorf("children of 1 = %d, want 2", got)
	}
	if got := f[0].Children[0].Children[0].Code; got != "1.1.1" {
		t.Errorf("grandchild = %q, want 1.1.1", got)
	}
	if f.Len() != 6 {
		t.Errorf("Len() = %d, want 6", f.Len())
	}
	if f.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", f.Depth())
	}
	if n := f.Find("2.1"); n == nil || n.Level != 2 {
		t.Errorf("Find(2.1) = %+v", n)
	}
	if f.Find("9") != nil {
		t.Error("Find(9) should be nil")
	}
}

func TestBuildEmpty(t *testing.T) {
	f, rep, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if len(f) != 0 || !rep.Empty() {
		t.Errorf("Build(nil) = %v, %+v", f, rep)
	}
	if f.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", f.Depth())
	}
}

func TestBuildOrphanDrop(t *testing.T) {
	f, rep := mustBuild(t, itemsOf("1", "1.1", "2.1", "2.1.1", "1.3.1"))

	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2\n%s", f.Len(), f)
	}
	if rep.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", rep.Dropped())
	}
	for _, o := range rep.Orphans {
		if !o.Dropped || o.AttachedTo != "" {
			t.Errorf("orphan %+v should be dropped", o)
		}
	}
}

func TestBuildOrphanAdopt(t *testing.T) {
	f, rep := mustBuild(t, itemsOf("1", "1.1", "1.3.1", "2.1", "2.1.1"), WithOrphanPolicy(OrphanAdopt))

	if f.Len() != 5 {
		t.Fatalf("Len() = %d, want 5\n%s", f.Len(), f)
	}
	if len(f) != 2 || f[1].Code != "2.1" {
		t.Errorf("roots = %v, want [1 2.1]", f)
	}
	if len(f[1].Children) != 1 || f[1].Children[0].Code != "2.1.1" {
		t.Errorf("2.1.1 should hang under adopted root 2.1")
	}
	if got := f[0].Children[1].Code; got != "1.3.1" {
		t.Errorf("adopted child = %q, want 1.3.1", got)
	}
	if len(rep.Orphans) != 2 {
		t.Fatalf("orphans = %d, want 2", len(rep.Orphans))
	}
	if rep.Orphans[0].AttachedTo != "1" {
		t.Errorf("1.3.1 attached to %q, want 1", rep.Orphans[0].AttachedTo)
	}
	if rep.Orphans[1].AttachedTo != "" || rep.Orphans[1].Dropped {
		t.Errorf("2.1 should become a root: %+v", rep.Orphans[1])
	}
}

func TestBuildOrphanStrict(t *testing.T) {
	sorted, _ := Sort(itemsOf("1", "1.1", "2.1"))
	_, _, err := Build(sorted, WithOrphanPolicy(OrphanStrict))
	if !errors.Is(err, errors.ErrCodeOrphanNode) {
		t.Errorf("err = %v, want ORPHAN_NODE", err)
	}
}

func TestBuildDuplicates(t *testing.T) {
	items := itemsOf("1", "1.1", "1.1", "1.1.1")

	f, rep := mustBuild(t, items)
	if len(f[0].Children) != 2 {
		t.Fatalf("children of 1 = %d, want 2", len(f[0].Children))
	}
	if len(f[0].Children[0].Children) != 0 || len(f[0].Children[1].Children) != 1 {
		t.Error("1.1.1 should attach to the most recent 1.1")
	}
	if len(rep.Duplicates) != 1 {
		t.Errorf("duplicates = %d, want 1", len(rep.Duplicates))
	}

	_, _, err := Build(items, WithOrphanPolicy(OrphanStrict))
	if !errors.Is(err, errors.ErrCodeDuplicateCode) {
		t.Errorf("strict err = %v, want DUPLICATE_CODE", err)
	}
}

func TestBuildUnknownPolicy(t *testing.T) {
	_, _, err := Build(itemsOf("1"), WithOrphanPolicy("promote"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestBuildPermutationInsensitive(t *testing.T) {
	base := itemsOf("1", "1.1", "1.2", "1.10", "1.1.1", "1.1.2", "2", "2.1", "2.1.1", "2.1.1.1", "3")
	want, _ := mustBuild(t, base)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 25; i++ {
		shuffled := append([]Item(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, _ := mustBuild(t, shuffled)
		if got.String() != want.String() {
			t.Fatalf("permutation %d built\n%s\nwant\n%s", i, got, want)
		}
	}
}

func TestParseOrphanPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OrphanPolicy
		wantErr bool
	}{
		{"", OrphanDrop, false},
		{"drop", OrphanDrop, false},
		{" Adopt ", OrphanAdopt, false},
		{"STRICT", OrphanStrict, false},
		{"promote", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrphanPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrphanPolicy(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOrphanPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForestItemsRoundTrip(t *testing.T) {
	f, _ := mustBuild(t, itemsOf("1", "1.1", "2"))
	items := f.Items()
	f2, _, err := Build(items)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.String() != f2.String() {
		t.Errorf("round trip mismatch\n%s\n%s", f, f2)
	}
}
