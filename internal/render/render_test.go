package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:     "fenced code",
			source:   "SOLUTION:\n```python\ndef f():\n    pass\n```",
			contains: []string{`<code class="language-python">`, "def f():"},
		},
		{
			name:     "gfm table",
			source:   "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "raw html escaped",
			source:   "<script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name:     "hard wraps",
			source:   "line one\nline two",
			contains: []string{"line one<br"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTML(tt.source)
			if err != nil {
				t.Fatalf("HTML() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("HTML() missing %q:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("HTML() contains %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("a\nb\nc\n", 5); got != "a\nb\nc" {
		t.Errorf("Excerpt() = %q", got)
	}
	if got := Excerpt("a\nb\nc\nd", 2); got != "a\nb\n... (2 more lines)" {
		t.Errorf("Excerpt() = %q", got)
	}
}

func TestTerminalAnalysis(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Analysis("code_snippet", "It adds.", "Line 1: add", false)
	out := buf.String()
	for _, want := range []string{"Code Explanation", "Line-by-Line Analysis", "It adds.", "Line 1: add"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	term.Analysis("question", "Failed to get response from Gemini.", "timeout", true)
	if out := buf.String(); !strings.Contains(out, "Failed to get response from Gemini.") || strings.Contains(out, "Solution") {
		t.Errorf("failure output = %q", out)
	}
}
