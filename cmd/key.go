package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/credential"
	"github.com/longkey1/clippyai/internal/gemini"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keyProvider string

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage stored API keys",
	Long: `Store, show and delete provider API keys in the OS keyring.

When no keyring is available the keys are kept in secrets.json (mode 0600)
in the config directory. A stored key is used whenever the config file and
environment leave the provider's token empty.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key",
	Long: `Store an API key for a provider. If the key is not given as an argument
it is read from the terminal without echo, or from standard input.

Examples:
  clippy key set                       # prompt for the Gemini key
  clippy key set --provider openai sk-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !contains(supportedProviders, keyProvider) {
			return fmt.Errorf("unsupported provider '%s'", keyProvider)
		}

		var key string
		if len(args) > 0 {
			key = args[0]
		} else {
			var err error
			key, err = readSecret(fmt.Sprintf("Enter %s API key: ", keyProvider))
			if err != nil {
				return err
			}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}

		if keyProvider == gemini.ProviderName && !credential.LooksLikeGeminiKey(key) {
			fmt.Fprintln(os.Stderr, "Warning: Gemini API keys usually start with 'AIzaSy'. Storing it anyway.")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := openSecrets(cfg).Set(keyProvider, key); err != nil {
			return fmt.Errorf("storing key: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s API key %s\n", keyProvider, credential.Mask(key))
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key (masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		key, err := openSecrets(cfg).Get(keyProvider)
		if errors.Is(err, credential.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s API key stored\n", keyProvider)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyProvider, credential.Mask(key))
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		err = openSecrets(cfg).Delete(keyProvider)
		if errors.Is(err, credential.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s API key stored\n", keyProvider)
			return nil
		}
		if err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s API key\n", keyProvider)
		return nil
	},
}

// readSecret reads a line from the terminal without echo. When stdin is
// not a terminal the line is read as is.
func readSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keyDeleteCmd)

	keyCmd.PersistentFlags().StringVarP(&keyProvider, "provider", "p", "gemini", "Provider the key belongs to")
}
