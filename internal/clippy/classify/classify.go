// Package classify decides whether submitted text is a programming question or
// a code snippet. It is a cheap, offline heuristic: an ordered list of named
// rules where the first rule that reaches a decision wins.
package classify

import (
	"strings"

	"github.com/longkey1/clippyai/internal/clippy"
)

// additionalContextMarker starts the caller-supplied suffix that is excluded
// from classification.
const additionalContextMarker = "Additional Context:"

// questionIndicators force a question decision when any is present.
var questionIndicators = []string{
	"?",
	"given:",
	"input:",
	"output:",
	"example:",
	"constraint",
	"note:",
	"follow up:",
	"can you",
	"write a",
	"implement a",
	"design a",
	"create a",
	"build a",
}

// topicKeywords is algorithmic/CS vocabulary typical of interview-style questions.
var topicKeywords = []string{
	"explain",
	"algorithm",
	"leetcode",
	"time complexity",
	"space complexity",
	"big o",
	"binary search",
	"binary tree",
	"linked list",
	"hash map",
	"hashmap",
	"dynamic programming",
	"recursion",
	"memoization",
	"greedy",
	"backtracking",
	"graph",
	"bfs",
	"dfs",
	"sorting",
	"two pointer",
	"sliding window",
	"subarray",
	"substring",
	"palindrome",
	"permutation",
	"optimal",
	"brute force",
	"data structure",
	"what is",
	"how to",
	"difference between",
}

// codePatterns are syntax fragments that suggest pasted source code.
var codePatterns = []string{
	"def ",
	"class ",
	"import ",
	"from ",
	"return ",
	"=",
	"{",
	"}",
	";",
	"//",
	"/*",
}

// Features are the measurements every rule decides on. They are computed once
// per text.
type Features struct {
	// Primary is the lower-cased text with any additional context removed.
	Primary string
	// Keywords is the number of distinct topic keywords found in Primary.
	Keywords int
	// Patterns is the number of distinct code patterns found in the original text.
	Patterns int
}

// Extract computes the features of text.
func Extract(text string) Features {
	primary := text
	if idx := strings.Index(primary, additionalContextMarker); idx >= 0 {
		primary = primary[:idx]
	}
	primary = strings.ToLower(primary)

	return Features{
		Primary:  primary,
		Keywords: countPresent(primary, topicKeywords),
		Patterns: countPresent(text, codePatterns),
	}
}

func countPresent(text string, needles []string) int {
	n := 0
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			n++
		}
	}
	return n
}

// Rule inspects the features and either decides a mode or lets the next rule run.
type Rule struct {
	Name   string
	Decide func(f Features) (clippy.Mode, bool)
}

// Decision is the outcome of classification together with the rule that produced it.
type Decision struct {
	Mode     clippy.Mode
	Rule     string
	Features Features
}

// DefaultRules returns the rule chain in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "question-indicator", Decide: indicatorRule},
		{Name: "topic-keywords", Decide: keywordRule},
		{Name: "code-patterns", Decide: codePatternRule},
		{Name: "fallback", Decide: fallbackRule},
	}
}

func indicatorRule(f Features) (clippy.Mode, bool) {
	for _, indicator := range questionIndicators {
		if strings.Contains(f.Primary, indicator) {
			return clippy.ModeQuestion, true
		}
	}
	return "", false
}

func keywordRule(f Features) (clippy.Mode, bool) {
	if f.Keywords >= 2 {
		return clippy.ModeQuestion, true
	}
	return "", false
}

func codePatternRule(f Features) (clippy.Mode, bool) {
	if f.Patterns >= 3 && f.Keywords < 2 {
		return clippy.ModeCodeSnippet, true
	}
	return "", false
}

func fallbackRule(f Features) (clippy.Mode, bool) {
	if f.Keywords > 0 {
		return clippy.ModeQuestion, true
	}
	return clippy.ModeCodeSnippet, true
}

// Classifier applies a rule chain to submitted text.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier using DefaultRules.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules returns a Classifier using the given rules in order.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the mode for text. It is total: every input, including the
// empty string, yields exactly one mode.
func (c *Classifier) Classify(text string) clippy.Mode {
	return c.Decide(text).Mode
}

// Decide classifies text and reports which rule fired.
func (c *Classifier) Decide(text string) Decision {
	f := Extract(text)
	for _, rule := range c.rules {
		if mode, ok := rule.Decide(f); ok {
			return Decision{Mode: mode, Rule: rule.Name, Features: f}
		}
	}
	// A custom chain without a terminal rule falls back the same way.
	mode, _ := fallbackRule(f)
	return Decision{Mode: mode, Rule: "fallback", Features: f}
}
