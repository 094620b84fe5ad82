package service

import (
	"strings"
	"testing"
)

func TestContentAnalyzer_Sanitize(t *testing.T) {
	analyzer := NewContentAnalyzer()

	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{
			name:     "keeps basic formatting",
			input:    "<p>Hello <strong>world</strong></p>",
			contains: "<strong>world</strong>",
		},
		{
			name:     "strips script tags",
			input:    `<p>hi</p><script>alert("x")</script>`,
			contains: "<p>hi</p>",
			excludes: "<script>",
		},
		{
			name:     "strips event handlers",
			input:    `<p onclick="steal()">hi</p>`,
			contains: "hi",
			excludes: "onclick",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.Sanitize(tt.input)
			if tt.contains != "" && !strings.Contains(got, tt.contains) {
				t.Errorf("Sanitize(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
			}
			if tt.excludes != "" && strings.Contains(got, tt.excludes) {
				t.Errorf("Sanitize(%q) = %q, must not contain %q", tt.input, got, tt.excludes)
			}
		})
	}
}

func TestContentAnalyzer_PlainText(t *testing.T) {
	analyzer := NewContentAnalyzer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips tags",
			input: "<p>Hello <em>there</em></p>",
			want:  "Hello there",
		},
		{
			name:  "block boundaries become spaces",
			input: "<p>one</p><p>two</p>",
			want:  "one two",
		},
		{
			name:  "list items separated",
			input: "<ul><li>a</li><li>b</li></ul>",
			want:  "a b",
		},
		{
			name:  "entities decoded",
			input: "<p>fish &amp; chips</p>",
			want:  "fish & chips",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyzer.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContentAnalyzer_CountWords(t *testing.T) {
	analyzer := NewContentAnalyzer()

	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},
		{"spaced    out\twords\nhere", 4},
	}

	for _, tt := range tests {
		if got := analyzer.CountWords(tt.input); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
