/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/longkey1/clippyai/internal/clippy/analysis"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/clippy/prompt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	verbose       bool
	userConfigDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clippy",
	Short: "Explain copied code and errors with an LLM",
	Long: `clippy watches what you copy and, on request, asks an LLM to explain it.

Copied code snippets get a code explanation and a line-by-line analysis.
Copied questions and error messages get an explanation and a solution.
Follow-up questions continue the same conversation.

It supports Gemini, OpenAI, Anthropic and Ollama models and can also run
as a local HTTP API. You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/clippyai/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("CLIPPY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir = filepath.Join(home, ".config", "clippyai")

	// Later directories take precedence over earlier ones
	defaultPromptDirs := []string{
		"/usr/share/clippyai/prompts",
		"/usr/local/share/clippyai/prompts",
		filepath.Join(userConfigDir, "prompts"),
	}
	config.SetDefaults(viper.GetViper(), defaultPromptDirs)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		for _, path := range []string{"/etc/clippyai", "/usr/local/etc/clippyai"} {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		systemConfigLoaded := false
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// User config is merged on top of the system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "  CLIPPY_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  CLIPPY_PROMPT_DIRS:", viper.GetStringSlice("prompt_dirs"))
	}
}

// newLogger builds the process logger. log_level picks the level unless
// --verbose forces debug; serve logs JSON, everything else logs text.
func newLogger(w io.Writer, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(viper.GetString("log_level"))}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func logLevel(value string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// watchConfig reloads prompt templates into service whenever the config
// file changes on disk.
func watchConfig(service *analysis.Service, logger *slog.Logger) {
	if viper.ConfigFileUsed() == "" {
		logger.Debug("no config file loaded, not watching for changes")
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", "file", e.Name, "op", e.Op.String())

		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Warn("reloading config", "error", err)
			return
		}
		builder, err := prompt.LoadBuilder(cfg.PromptDirs)
		if err != nil {
			logger.Warn("reloading prompt templates", "error", err)
			return
		}
		service.SetBuilder(builder)
		logger.Info("prompt templates reloaded", "dirs", cfg.PromptDirs)
	})
	viper.WatchConfig()
}
