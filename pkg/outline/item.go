package outline

import (
	"regexp"
	"strings"
)

// codePattern matches the leading run of digits and dots of a trimmed line.
var codePattern = regexp.MustCompile(`^[0-9.]+`)

// Item is one parsed outline entry.
type Item struct {
	Code  string `json:"code" bson:"code" msgpack:"code"`
	Text  string `json:"text" bson:"text" msgpack:"text"`
	Level int    `json:"level" bson:"level" msgpack:"level"`
	// Line is the 1-based source line, or 0 when unknown. It only serves to
	// point at the input in error messages.
	Line int `json:"line,omitempty" bson:"line,omitempty" msgpack:"line,omitempty"`
}

// String returns the item as it would appear in an outline.
func (it Item) String() string {
	if it.Text == "" {
		return it.Code
	}
	return it.Code + " " + it.Text
}

// Level returns the depth of a code: the number of dots plus one.
// "1" is level 1, "1.2.3" is level 3.
func Level(code string) int {
	return strings.Count(code, ".") + 1
}

// ParentCode returns code with its last segment removed, or "" for a
// top-level code.
func ParentCode(code string) string {
	i := strings.LastIndexByte(code, '.')
	if i < 0 {
		return ""
	}
	return code[:i]
}

// Parse extracts an outline item from a raw line.
//
// The line is trimmed and must start with a run of digits and dots. Trailing
// dots of that run are dropped ("1.2." becomes "1.2") and the rest of the line,
// trimmed, becomes the item text. ok is false when the line has no leading
// code; such lines are meant to be skipped silently.
//
// Parse does not check that segments are non-empty. "1..2" parses and is
// rejected later by [Sort].
func Parse(raw string) (item Item, ok bool) {
	line := strings.TrimSpace(raw)
	loc := codePattern.FindStringIndex(line)
	if loc == nil {
		return Item{}, false
	}
	code := strings.TrimRight(line[:loc[1]], ".")
	if code == "" {
		return Item{}, false
	}
	return Item{
		Code:  code,
		Text:  strings.TrimSpace(line[loc[1]:]),
		Level: Level(code),
	}, true
}

// ParseLines parses every line, records 1-based line numbers and drops the
// lines that carry no code. The result is in input order.
func ParseLines(lines []string) []Item {
	items := make([]Item, 0, len(lines))
	for i, raw := range lines {
		it, ok := Parse(raw)
		if !ok {
			continue
		}
		it.Line = i + 1
		items = append(items, it)
	}
	return items
}
