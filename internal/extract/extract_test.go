package extract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObject_Strategies(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "clean JSON",
			input: `{"Severity": "High", "Impact_Count": 500}`,
			want:  map[string]interface{}{"Severity": "High", "Impact_Count": float64(500)},
		},
		{
			name:  "json fence",
			input: "```json\n{\"Severity\": \"Low\"}\n```",
			want:  map[string]interface{}{"Severity": "Low"},
		},
		{
			name:  "bare fence",
			input: "```\n{\"Severity\": \"Med\"}\n```",
			want:  map[string]interface{}{"Severity": "Med"},
		},
		{
			name:  "fence with trailing prose",
			input: "```json\n{\"Component\": \"Database\"}\n```\nLet me know if you need anything else!",
			want:  map[string]interface{}{"Component": "Database"},
		},
		{
			name:  "leading prose",
			input: `Here is the extracted data: {"Component": "API"}`,
			want:  map[string]interface{}{"Component": "API"},
		},
		{
			name:  "prose on both sides",
			input: `Sure! {"Timestamp": "6:30 PM"} Hope that helps.`,
			want:  map[string]interface{}{"Timestamp": "6:30 PM"},
		},
		{
			name:  "braces inside string values",
			input: `{"Suspected_Cause": "config {braces} in value"}`,
			want:  map[string]interface{}{"Suspected_Cause": "config {braces} in value"},
		},
		{
			name:  "first candidate invalid second valid",
			input: `{"broken": } and then {"Severity": "High"}`,
			want:  map[string]interface{}{"Severity": "High"},
		},
		{
			name:  "nested object",
			input: `output: {"Severity": "High", "meta": {"model": "x"}}`,
			want:  map[string]interface{}{"Severity": "High", "meta": map[string]interface{}{"model": "x"}},
		},
		{
			name:    "no braces at all",
			input:   "I could not find any incident data in that text.",
			wantErr: true,
		},
		{
			name:    "unbalanced braces only",
			input:   `{"Severity": "High"`,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "JSON array is not an object",
			input:   `[1, 2, 3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Object(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoValidJSON) {
					t.Fatalf("Object() error = %v, want ErrNoValidJSON", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Object() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Object() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Re-running extraction on its own re-serialized output must yield the
// same object.
func TestObject_Idempotent(t *testing.T) {
	input := "```json\n{\"Severity\": \"High\", \"Impact_Count\": 500, \"Component\": \"Database\"}\n```\nExtra prose."

	first, err := Object(input)
	if err != nil {
		t.Fatalf("Object() first pass error: %v", err)
	}

	reserialized, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	second, err := Object(string(reserialized))
	if err != nil {
		t.Fatalf("Object() second pass error: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("extraction not idempotent (-first +second):\n%s", diff)
	}
}

func TestObject_FirstParseableWins(t *testing.T) {
	input := `{"order": 1} {"order": 2}`
	got, err := Object(input)
	if err != nil {
		t.Fatalf("Object() error: %v", err)
	}
	if got["order"] != float64(1) {
		t.Errorf("Object() = %v, want first candidate in textual order", got)
	}
}

func TestStripFences(t *testing.T) {
	got := StripFences("```json\n{\"a\": 1}\n```")
	if got != `{"a": 1}` {
		t.Errorf("StripFences() = %q", got)
	}
}

func TestFindJSONCandidates_EscapedQuotes(t *testing.T) {
	input := `{"msg": "he said \"hi\" {and left}"}`
	candidates := findJSONCandidates(input)
	if len(candidates) != 1 || candidates[0] != input {
		t.Errorf("findJSONCandidates() = %v, want the whole object", candidates)
	}
}
