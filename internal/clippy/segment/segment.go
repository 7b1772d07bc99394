// Package segment splits one model reply into an explanation half and a
// fixes/solution half.
//
// The model is asked to label its answer with "PART 1" / "PART 2" headings but
// is not guaranteed to comply, so segmentation degrades through weaker
// strategies and never fails.
package segment

import (
	"strings"

	"github.com/longkey1/clippyai/internal/clippy"
)

// Segments is a reply divided into its two logical parts.
type Segments struct {
	Explanation string
	Fixes       string
}

// Segmenter splits a raw model reply according to the mode it was requested in.
type Segmenter interface {
	Segment(raw string, mode clippy.Mode) Segments
}

const (
	partTwoMarker = "PART 2"
	lineByLine    = "line by line"
)

// labels holds the mode-specific headings used by the marker strategy.
type labels struct {
	partOne     string // stripped from the explanation
	partTwo     string // stripped from the start of the second half
	fixesPrefix string // prepended to the second half
}

var modeLabels = map[clippy.Mode]labels{
	clippy.ModeQuestion: {
		partOne:     "PART 1 - EXPLANATION:",
		partTwo:     "SOLUTION:",
		fixesPrefix: "SOLUTION:\n",
	},
	clippy.ModeCodeSnippet: {
		partOne:     "PART 1 - CODE EXPLANATION:",
		partTwo:     "LINE-BY-LINE ANALYSIS:",
		fixesPrefix: "LINE-BY-LINE ANALYSIS:\n",
	},
}

// MarkerSegmenter is the heuristic Segmenter: PART 2 marker, then (snippets
// only) a "line by line" phrase, then a midpoint split on lines.
type MarkerSegmenter struct{}

// NewMarkerSegmenter returns a MarkerSegmenter.
func NewMarkerSegmenter() *MarkerSegmenter {
	return &MarkerSegmenter{}
}

// Segment implements Segmenter.
func (s *MarkerSegmenter) Segment(raw string, mode clippy.Mode) Segments {
	l, ok := modeLabels[mode]
	if !ok {
		l = modeLabels[clippy.ModeCodeSnippet]
	}

	if seg, ok := splitOnPartTwo(raw, l); ok {
		return seg
	}
	if mode == clippy.ModeCodeSnippet {
		if seg, ok := splitOnLineByLine(raw); ok {
			return seg
		}
	}
	return splitAtMidpoint(raw)
}

func splitOnPartTwo(raw string, l labels) (Segments, bool) {
	idx := strings.Index(raw, partTwoMarker)
	if idx < 0 {
		return Segments{}, false
	}

	explanation := strings.Replace(raw[:idx], l.partOne, "", 1)

	rest := strings.TrimSpace(raw[idx+len(partTwoMarker):])
	rest = strings.TrimLeft(rest, "-: \t")
	rest = strings.TrimPrefix(rest, l.partTwo)

	return Segments{
		Explanation: strings.TrimSpace(explanation),
		Fixes:       strings.TrimSpace(l.fixesPrefix + strings.TrimSpace(rest)),
	}, true
}

func splitOnLineByLine(raw string) (Segments, bool) {
	idx := indexFold(raw, lineByLine)
	if idx < 0 {
		return Segments{}, false
	}
	rest := strings.TrimSpace(raw[idx+len(lineByLine):])
	return Segments{
		Explanation: strings.TrimSpace(raw[:idx]),
		Fixes:       strings.TrimSpace("Line by line analysis:\n" + rest),
	}, true
}

// splitAtMidpoint divides the reply's lines at len/2; for odd counts the extra
// line goes to the second half.
func splitAtMidpoint(raw string) Segments {
	lines := strings.Split(raw, "\n")
	mid := len(lines) / 2
	return Segments{
		Explanation: strings.TrimSpace(strings.Join(lines[:mid], "\n")),
		Fixes:       strings.TrimSpace(strings.Join(lines[mid:], "\n")),
	}
}

// indexFold returns the byte offset of the first ASCII case-insensitive match
// of needle in s, or -1.
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}
