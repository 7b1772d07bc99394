package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/credential"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFields lists the printable fields in display order.
var configFields = []string{
	"configfile", "model",
	"gemini_base_url", "gemini_token",
	"openai_base_url", "openai_token",
	"anthropic_base_url", "anthropic_token",
	"ollama_host", "prompt_dirs", "context_window",
	"poll_interval", "min_clipboard_length",
	"listen_addr", "request_timeout",
	"nats_url", "nats_token",
	"log_level", "keyring_service",
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.
Tokens are masked.

If a field name is specified, only that field's value is displayed.
Available fields: ` + strings.Join(configFields, ", ") + `

Examples:
  clippy config                    # Show all configuration
  clippy config model              # Show only model
  clippy config gemini_token       # Show only the (masked) Gemini token`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			value, ok := configValue(cfg, field)
			if !ok {
				return fmt.Errorf("unknown field: %s\nAvailable fields: %s", args[0], strings.Join(configFields, ", "))
			}
			fmt.Fprintln(out, value)
			return nil
		}

		printConfig(out, cfg)
		return nil
	},
}

func printConfig(w io.Writer, cfg *config.Config) {
	for _, field := range configFields {
		value, _ := configValue(cfg, field)
		fmt.Fprintf(w, "%s: %s\n", field, value)
	}
}

// configValue returns the display value of field, masking secrets.
func configValue(cfg *config.Config, field string) (string, bool) {
	switch field {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "model":
		return cfg.Model, true
	case "gemini_base_url":
		return cfg.GeminiBaseURL, true
	case "gemini_token":
		return maskToken(cfg.GeminiToken), true
	case "openai_base_url":
		return cfg.OpenAIBaseURL, true
	case "openai_token":
		return maskToken(cfg.OpenAIToken), true
	case "anthropic_base_url":
		return cfg.AnthropicBaseURL, true
	case "anthropic_token":
		return maskToken(cfg.AnthropicToken), true
	case "ollama_host":
		return cfg.OllamaHost, true
	case "prompt_dirs", "promptdirs":
		// PromptDirs are already absolute paths
		return strings.Join(cfg.PromptDirs, ","), true
	case "context_window":
		return fmt.Sprint(cfg.GetContextWindow()), true
	case "poll_interval":
		return cfg.GetPollInterval().String(), true
	case "min_clipboard_length":
		return fmt.Sprint(cfg.GetMinClipboardLength()), true
	case "listen_addr":
		return cfg.ListenAddr, true
	case "request_timeout":
		return cfg.GetRequestTimeout().String(), true
	case "nats_url":
		return cfg.NATSURL, true
	case "nats_token":
		return maskToken(cfg.NATSToken), true
	case "log_level":
		return cfg.LogLevel, true
	case "keyring_service":
		return cfg.KeyringService, true
	default:
		return "", false
	}
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	return credential.Mask(token)
}

func init() {
	rootCmd.AddCommand(configCmd)
}
