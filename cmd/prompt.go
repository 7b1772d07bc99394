/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/clippy/prompt"
	"github.com/spf13/cobra"
)

// promptCmd represents the prompt command
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "List prompt templates and where they come from",
	Long: `List the prompt templates used for analysis and follow-up questions.

Every template is built in. A file named <template>.toml in one of the
configured prompt directories overrides it; later directories take precedence.

The prompt files should be in TOML format with the following structure:
system = "System prompt"
user = "User prompt with {{input}} (and {{context}} for followup) placeholders"

An empty system or user field keeps the built-in value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Prompt directories: %v\n", cfg.PromptDirs)
		}

		builder, err := prompt.LoadBuilder(cfg.PromptDirs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		templates := builder.Templates()
		fmt.Fprintf(out, "Prompt templates (%d):\n\n", len(templates))
		for _, t := range templates {
			fmt.Fprintf(out, "  %-10s %s\n", t.Name, t.Source)
		}

		fmt.Fprintln(out, "\nOverride a template by creating <template>.toml in one of:")
		for _, dir := range cfg.PromptDirs {
			fmt.Fprintf(out, "  - %s\n", dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}
