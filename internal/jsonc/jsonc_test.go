package jsonc

import (
	"strings"
	"testing"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "comment at end of line",
			input: `{"key": "value"} // comment`,
			want:  `{"key": "value"} `,
		},
		{
			name:  "comment on own line",
			input: "{\n// this is a comment\n\"key\": \"value\"\n}",
			want:  "{\n\n\"key\": \"value\"\n}",
		},
		{
			name:  "inline block comment",
			input: `{"key": /* comment */ "value"}`,
			want:  `{"key":  "value"}`,
		},
		{
			name:  "block comment keeps its newlines",
			input: "{\n/* multi\nline\ncomment */\n\"key\": \"value\"\n}",
			want:  "{\n\n\n\n\"key\": \"value\"\n}",
		},
		{
			name:  "// in string preserved",
			input: `{"url": "http://example.com"}`,
			want:  `{"url": "http://example.com"}`,
		},
		{
			name:  "/* in string preserved",
			input: `{"comment": "/* not a comment */"}`,
			want:  `{"comment": "/* not a comment */"}`,
		},
		{
			name:  "escaped quote then comment",
			input: `{"a": "say \"hi\""} // c`,
			want:  `{"a": "say \"hi\""} `,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "slash at end of input",
			input: `{"a": 1}/`,
			want:  `{"a": 1}/`,
		},
		{
			name:  "unterminated block comment",
			input: `{"a": 1} /* open`,
			want:  `{"a": 1} `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(StripComments([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("StripComments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoveTrailingCommas(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"object", `{"a": 1,}`, `{"a": 1}`},
		{"array", `[1, 2,]`, `[1, 2]`},
		{"with newline", "{\"a\": 1,\n}", "{\"a\": 1\n}"},
		{"nested", `{"a": [1,], "b": {"c": 2,},}`, `{"a": [1], "b": {"c": 2}}`},
		{"comma in string preserved", `{"a": ",}"}`, `{"a": ",}"}`},
		{"escaped quote in string", `{"a": "\",]",}`, `{"a": "\",]"}`},
		{"no trailing comma", `{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
		{"dangling comma kept", `{"a": 1,`, `{"a": 1,`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(RemoveTrailingCommas([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("RemoveTrailingCommas() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnmarshal(t *testing.T) {
	input := `{
		// server settings
		"address": ":9090", /* inline */
		"tags": ["a", "b",],
	}`

	var got struct {
		Address string   `json:"address"`
		Tags    []string `json:"tags"`
	}
	if err := Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Address != ":9090" {
		t.Errorf("Address = %q, want :9090", got.Address)
	}
	if len(got.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 entries", got.Tags)
	}
}

func TestUnmarshal_SyntaxErrorLine(t *testing.T) {
	input := "{\n/* a\nb */\n\"a\": 1\n\"b\": 2\n}"

	var v map[string]int
	err := Unmarshal([]byte(input), &v)
	if err == nil {
		t.Fatal("Unmarshal() error = nil, want syntax error")
	}
	if !strings.HasPrefix(err.Error(), "line 5:") {
		t.Errorf("Unmarshal() error = %q, want prefix %q", err.Error(), "line 5:")
	}
}
