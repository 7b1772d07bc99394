package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// expandEnvVar expands environment variable references in the given value
// Supports both $VAR and ${VAR} syntax
// If the environment variable is not set, returns empty string.
func expandEnvVar(value string) string {
	// Not an environment variable reference, return as-is
	if !strings.HasPrefix(value, "$") {
		return value
	}

	var envVarName string
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		// ${VAR}
		envVarName = value[2 : len(value)-1]
	} else {
		// $VAR
		envVarName = strings.TrimPrefix(value, "$")
	}

	return os.Getenv(envVarName)
}

// GetBaseURL returns the base URL for the specified provider
// Environment variables are already expanded during LoadConfig()
func (c *Config) GetBaseURL(provider string) (string, error) {
	var baseURLValue string
	switch provider {
	case "openai":
		baseURLValue = c.OpenAIBaseURL
	case "gemini":
		baseURLValue = c.GeminiBaseURL
	case "anthropic":
		baseURLValue = c.AnthropicBaseURL
	case "ollama":
		baseURLValue = c.OllamaHost
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	// Validate that base URL is not empty
	if baseURLValue == "" {
		return "", fmt.Errorf("%s base URL is not configured. Set it in config file (%s) or environment variable (CLIPPY_%s)", provider, baseURLKey(provider), strings.ToUpper(baseURLKey(provider)))
	}

	return baseURLValue, nil
}

func baseURLKey(provider string) string {
	if provider == "ollama" {
		return "ollama_host"
	}
	return provider + "_base_url"
}

// GetToken returns the token for the specified provider.
// An empty token is not an error here; callers fall back to the keyring.
func (c *Config) GetToken(provider string) (string, error) {
	switch provider {
	case "openai":
		return c.OpenAIToken, nil
	case "gemini":
		return c.GeminiToken, nil
	case "anthropic":
		return c.AnthropicToken, nil
	case "ollama":
		// Local server, no authentication
		return "", nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}
}

// resolvePath converts a relative path to absolute path, relative to the
// directory of the config file in use or the working directory.
func resolvePath(v *viper.Viper, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	// Relative to the config file directory when one was loaded
	base := ""
	if configFile := v.ConfigFileUsed(); configFile != "" {
		base = filepath.Dir(configFile)
	}
	if !filepath.IsAbs(base) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %w", err)
		}
		base = filepath.Join(cwd, base)
	}

	return filepath.Join(base, path), nil
}
