package task

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		valid     bool
		errPath   string
		warnCount int
	}{
		{
			name:  "empty list",
			raw:   `[]`,
			valid: true,
		},
		{
			name:  "well formed",
			raw:   `[{"id":"a","text":"x","deadline":1700000000000},{"id":"b","text":"y"}]`,
			valid: true,
		},
		{
			name:    "missing text",
			raw:     `[{"id":"a"}]`,
			valid:   false,
			errPath: "[0]",
		},
		{
			name:    "deadline wrong type",
			raw:     `[{"id":"a","text":"x","deadline":"tomorrow"}]`,
			valid:   false,
			errPath: "[0].deadline",
		},
		{
			name:  "not an array",
			raw:   `{"tasks":[]}`,
			valid: false,
		},
		{
			name:  "invalid json",
			raw:   `[`,
			valid: false,
		},
		{
			name:      "duplicates warn",
			raw:       `[{"id":"a","text":"x"},{"id":"a","text":"x"}]`,
			valid:     true,
			warnCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate([]byte(tt.raw))
			if result.Valid != tt.valid {
				t.Fatalf("Valid: got %v, want %v (errors: %v)", result.Valid, tt.valid, result.Errors)
			}
			if !tt.valid && len(result.Errors) == 0 {
				t.Error("invalid result without errors")
			}
			if tt.errPath != "" {
				found := false
				for _, err := range result.Errors {
					if ve, ok := err.(*ValidationError); ok && ve.Path == tt.errPath {
						found = true
					}
				}
				if !found {
					t.Errorf("no error at %q in %v", tt.errPath, result.Errors)
				}
			}
			if len(result.Warnings) != tt.warnCount {
				t.Errorf("Warnings: got %v, want %d", result.Warnings, tt.warnCount)
			}
		})
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"#":           "",
		"/0":          "[0]",
		"/0/deadline": "[0].deadline",
		"#/12/text":   "[12].text",
		"/a~1b/c~0d":  "a/b.c~d",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestSchemaJSONEmbedded(t *testing.T) {
	if !strings.Contains(SchemaJSON(), `"deadline"`) {
		t.Error("embedded schema missing deadline property")
	}
}
