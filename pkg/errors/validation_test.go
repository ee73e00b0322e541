package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "project", false},
		{"with extension", "plan.xlsx", false},
		{"unicode", "사업계획", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"dotdot", "..", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUploadFilename(t *testing.T) {
	tests := []struct {
		input   string
		wantExt string
		wantErr bool
	}{
		{"plan.XLSX", ".xlsx", false},
		{"C:\\Users\\me\\outline.txt", ".txt", false},
		{"/tmp/outline.md", ".md", false},
		{"README", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ext, err := ValidateUploadFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUploadFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if ext != tt.wantExt {
				t.Errorf("ext = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}
