package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	bodyStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginBottom(1)

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// Terminal writes styled output to w.
type Terminal struct {
	w io.Writer
}

// NewTerminal returns a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Analysis prints the two parts of an analysis result.
func (t *Terminal) Analysis(mode, explanation, fixes string, failed bool) {
	if failed {
		fmt.Fprintln(t.w, errorStyle.Render(explanation))
		fmt.Fprintln(t.w, bodyStyle.Render(fixes))
		return
	}

	title := "Explanation"
	second := "Solution"
	if mode == "code_snippet" {
		title = "Code Explanation"
		second = "Line-by-Line Analysis"
	}
	fmt.Fprintln(t.w, headerStyle.Render(title))
	fmt.Fprintln(t.w, bodyStyle.Render(explanation))
	fmt.Fprintln(t.w, headerStyle.Render(second))
	fmt.Fprintln(t.w, bodyStyle.Render(fixes))
}

// Chat prints one assistant reply.
func (t *Terminal) Chat(reply string) {
	fmt.Fprintln(t.w, headerStyle.Render("ClippyAI"))
	fmt.Fprintln(t.w, bodyStyle.Render(reply))
}

// Meta prints a dim informational line.
func (t *Terminal) Meta(format string, args ...any) {
	fmt.Fprintln(t.w, metaStyle.Render(fmt.Sprintf(format, args...)))
}

// Preview prints a boxed excerpt of text limited to maxLines lines.
func (t *Terminal) Preview(text string, maxLines int) {
	fmt.Fprintln(t.w, previewStyle.Render(Excerpt(text, maxLines)))
}

// Excerpt returns the first maxLines lines of text, marking any cut.
func Excerpt(text string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-maxLines)
}
