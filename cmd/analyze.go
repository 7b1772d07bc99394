/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/longkey1/clippyai/internal/clippy/analysis"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/render"
	"github.com/spf13/cobra"
)

var (
	model             string
	useEditor         bool
	additionalContext string
	htmlOutput        bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Explain a code snippet or answer a question once",
	Long: `Send text to the configured model and print the explanation.

The text is classified first. Code snippets get a code explanation and a
line-by-line analysis; questions and error messages get an explanation and
a solution.

If no text is provided as an argument, it will be read from standard input,
or from your editor when --editor is set.

Examples:
  clippy analyze "def add(a, b): return a + b"
  pbpaste | clippy analyze --context "this runs on python 3.12"
  clippy analyze --editor --html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if model != "" {
			cfg.Model = model
		}

		var text string
		switch {
		case useEditor:
			text, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting text from editor: %w", err)
			}
		case len(args) > 0:
			text = strings.Join(args, " ")
		default:
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			text = strings.TrimSpace(string(input))
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to analyze")
		}

		logger := newLogger(os.Stderr, false)
		service, cleanup, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		result := service.Analyze(cmd.Context(), analysis.Request{
			Text:              text,
			AdditionalContext: additionalContext,
		})

		if htmlOutput {
			return printHTML(cmd.OutOrStdout(), result)
		}

		term := render.NewTerminal(cmd.OutOrStdout())
		term.Analysis(string(result.Mode), result.Explanation, result.Fixes, result.Failed)
		if result.SessionID != "" {
			term.Meta("session: %s", result.SessionID)
		}
		if result.Failed {
			return fmt.Errorf("analysis failed")
		}
		return nil
	},
}

func printHTML(w io.Writer, result analysis.Result) error {
	for _, part := range []string{result.Explanation, result.Fixes} {
		out, err := render.HTML(part)
		if err != nil {
			return fmt.Errorf("rendering HTML: %w", err)
		}
		fmt.Fprintln(w, out)
	}
	return nil
}

// getMessageFromEditor opens the user's editor and returns what was saved.
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	tmpFile, err := os.CreateTemp("", "clippy-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (format: provider:model, e.g., gemini:gemini-2.0-flash)")
	analyzeCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose text")
	analyzeCmd.Flags().StringVarP(&additionalContext, "context", "c", "", "Additional context appended to the text")
	analyzeCmd.Flags().BoolVar(&htmlOutput, "html", false, "Print the result as HTML")
}
