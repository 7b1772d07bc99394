/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/longkey1/clippyai/internal/anthropic"
	"github.com/longkey1/clippyai/internal/clippy"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/gemini"
	"github.com/longkey1/clippyai/internal/ollama"
	"github.com/longkey1/clippyai/internal/openai"
	"github.com/spf13/cobra"
)

var supportedProviders = []string{
	gemini.ProviderName,
	openai.ProviderName,
	anthropic.ProviderName,
	ollama.ProviderName,
}

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List available models for the specified provider(s)",
	Long: `List all available models for the specified provider.
Fetches the latest model information directly from the provider's API.

Supported providers: ` + strings.Join(supportedProviders, ", ") + `

If no provider is specified, lists models from all providers.

Example:
  clippy models           # List models from all providers
  clippy models gemini    # List Gemini models
  clippy models ollama    # List locally pulled Ollama models`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		providers := supportedProviders
		if len(args) > 0 {
			if !contains(supportedProviders, args[0]) {
				return fmt.Errorf("unsupported provider '%s'\nSupported providers: %s", args[0], strings.Join(supportedProviders, ", "))
			}
			providers = []string{args[0]}
		}

		type providerResult struct {
			provider string
			models   []clippy.ModelInfo
			err      error
		}

		var results []providerResult
		for _, target := range providers {
			result := providerResult{provider: target}

			if verbose {
				fmt.Fprintf(os.Stderr, "Listing models for provider: %s\n", target)
			}

			// Each provider parses its own name out of the model string
			providerCfg := *cfg
			providerCfg.Model = clippy.FormatModelString(target, "list")

			provider, err := newProvider(&providerCfg)
			if err != nil {
				result.err = err
				results = append(results, result)
				continue
			}
			lister, ok := provider.(clippy.ModelLister)
			if !ok {
				result.err = fmt.Errorf("provider does not support listing models")
				results = append(results, result)
				continue
			}

			models, err := lister.ListModels(cmd.Context())
			switch {
			case err != nil:
				result.err = fmt.Errorf("failed to list models: %w", err)
			case len(models) == 0:
				result.err = fmt.Errorf("no models returned from API")
			default:
				result.models = models
			}
			results = append(results, result)
		}

		out := cmd.OutOrStdout()
		successCount := 0
		for _, result := range results {
			if result.err != nil {
				continue
			}
			if successCount > 0 {
				fmt.Fprintln(out)
			}
			successCount++
			printModels(out, result.provider, result.models)
		}

		for _, result := range results {
			if result.err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Skipping %s - %v\n", result.provider, result.err)
			}
		}

		if successCount > 0 {
			fmt.Fprintf(out, "\nUse a model with: clippy analyze --model <model> [text]\n")
		}
		return nil
	},
}

func printModels(w io.Writer, provider string, models []clippy.ModelInfo) {
	fmt.Fprintf(w, "Available models for %s:\n\n", provider)

	maxModelWidth := 15
	for _, m := range models {
		if n := len(clippy.FormatModelString(provider, m.ID)); n > maxModelWidth {
			maxModelWidth = n
		}
	}

	fmt.Fprintf(w, "%-*s  %-10s  %s\n", maxModelWidth, "MODEL", "DEFAULT", "DESCRIPTION")
	fmt.Fprintf(w, "%s  %s  %s\n",
		strings.Repeat("-", maxModelWidth),
		strings.Repeat("-", 10),
		strings.Repeat("-", 50))

	for _, m := range models {
		defaultMark := ""
		if m.IsDefault {
			defaultMark = "Yes"
		}
		fmt.Fprintf(w, "%-*s  %-10s  %s\n", maxModelWidth, clippy.FormatModelString(provider, m.ID), defaultMark, m.Description)
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
