package outline

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		raw      string
		wantOK   bool
		wantCode string
		wantText string
		wantLvl  int
	}{
		{"1 Planning", true, "1", "Planning", 1},
		{"  1.1   Scope  ", true, "1.1", "Scope", 2},
		{"1.2. Budget", true, "1.2", "Budget", 2},
		{"1.2.3.4 Deep", true, "1.2.3.4", "Deep", 4},
		{"2.1.Design", true, "2.1", "Design", 2},
		{"3", true, "3", "", 1},
		{"　 4.1 전각 공백", true, "4.1", "전각 공백", 2},
		{"1..2 Twice", true, "1..2", "Twice", 3},
		{"Planning", false, "", "", 0},
		{"", false, "", "", 0},
		{"   ", false, "", "", 0},
		{"...", false, "", "", 0},
		{"- 1.1 bullet", false, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			it, ok := Parse(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if it.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", it.Code, tt.wantCode)
			}
			if it.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", it.Text, tt.wantText)
			}
			if it.Level != tt.wantLvl {
				t.Errorf("Level = %d, want %d", it.Level, tt.wantLvl)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	for code, want := range map[string]int{"1": 1, "1.1": 2, "10.2.30": 3, "1.1.1.1.1": 5} {
		if got := Level(code); got != want {
			t.Errorf("Level(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestParentCode(t *testing.T) {
	for code, want := range map[string]string{"1": "", "1.1": "1", "1.2.3": "1.2", "10.20": "10"} {
		if got := ParentCode(code); got != want {
			t.Errorf("ParentCode(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestParseLines(t *testing.T) {
	lines := []string{"Project plan", "1 Planning", "", "1.1 Scope", "notes", "2 Delivery"}
	items := ParseLines(lines)
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	wantLines := []int{2, 4, 6}
	for i, it := range items {
		if it.Line != wantLines[i] {
			t.Errorf("items[%d].Line = %d, want %d", i, it.Line, wantLines[i])
		}
	}
}

func TestItemString(t *testing.T) {
	if got := (Item{Code: "1.2", Text: "Budget"}).String(); got != "1.2 Budget" {
		t.Errorf("String() = %q, want %q", got, "1.2 Budget")
	}
	if got := (Item{Code: "3"}).String(); got != "3" {
		t.Errorf("String() = %q, want %q", got, "3")
	}
}
