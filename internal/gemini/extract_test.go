package gemini

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "bare object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
			found: true,
		},
		{
			name:  "object wrapped in prose",
			input: "Here is my analysis: {\"a\":1} hope that helps!",
			want:  `{"a":1}`,
			found: true,
		},
		{
			name:  "object in markdown code fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
			found: true,
		},
		{
			name:  "nested objects",
			input: `prefix {"outer":{"inner":2}} suffix`,
			want:  `{"outer":{"inner":2}}`,
			found: true,
		},
		{
			name:  "braces inside string values",
			input: `{"text":"a { stray } brace"}`,
			want:  `{"text":"a { stray } brace"}`,
			found: true,
		},
		{
			name:  "escaped quotes inside strings",
			input: `{"text":"she said \"hi\" {"}`,
			want:  `{"text":"she said \"hi\" {"}`,
			found: true,
		},
		{
			name:  "quotes in surrounding prose",
			input: `The "verdict" is: {"score":87}`,
			want:  `{"score":87}`,
			found: true,
		},
		{
			name:  "no object at all",
			input: "sorry, I cannot analyze this image",
			found: false,
		},
		{
			name:  "unbalanced object",
			input: `{"a":1`,
			found: false,
		},
		{
			name:  "empty input",
			input: "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractJSONObject(tt.input)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
