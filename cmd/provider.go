package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/longkey1/clippyai/internal/anthropic"
	"github.com/longkey1/clippyai/internal/clippy"
	"github.com/longkey1/clippyai/internal/clippy/analysis"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/clippy/prompt"
	"github.com/longkey1/clippyai/internal/clippy/session"
	"github.com/longkey1/clippyai/internal/credential"
	"github.com/longkey1/clippyai/internal/events"
	"github.com/longkey1/clippyai/internal/gemini"
	"github.com/longkey1/clippyai/internal/ollama"
	"github.com/longkey1/clippyai/internal/openai"
)

// keyringConfig falls back to the credential store when no token is
// configured for a provider.
type keyringConfig struct {
	*config.Config
	secrets *credential.Store
}

func (c *keyringConfig) GetToken(provider string) (string, error) {
	token, err := c.Config.GetToken(provider)
	if err != nil || token != "" {
		return token, err
	}
	stored, err := c.secrets.Get(provider)
	if errors.Is(err, credential.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading stored %s key: %w", provider, err)
	}
	return stored, nil
}

func openSecrets(cfg *config.Config) *credential.Store {
	return credential.Open(cfg.KeyringService, userConfigDir)
}

// newProvider creates a new provider instance based on the configuration
func newProvider(cfg *config.Config) (clippy.Provider, error) {
	provider, err := cfg.GetProvider()
	if err != nil {
		return nil, fmt.Errorf("invalid model %q: %w", cfg.Model, err)
	}

	switch provider {
	case gemini.ProviderName:
		p := gemini.NewProvider(&keyringConfig{Config: cfg, secrets: openSecrets(cfg)})
		p.SetTimeout(cfg.GetRequestTimeout())
		return p, nil
	case openai.ProviderName:
		p := openai.NewProvider(&keyringConfig{Config: cfg, secrets: openSecrets(cfg)})
		p.SetTimeout(cfg.GetRequestTimeout())
		return p, nil
	case anthropic.ProviderName:
		p := anthropic.NewProvider(&keyringConfig{Config: cfg, secrets: openSecrets(cfg)})
		p.SetTimeout(cfg.GetRequestTimeout())
		return p, nil
	case ollama.ProviderName:
		p, err := ollama.NewProvider(cfg, cfg.GetRequestTimeout())
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// newService assembles the analysis service for cfg. The returned cleanup
// closes the event publisher, if one was connected.
func newService(cfg *config.Config, logger *slog.Logger) (*analysis.Service, func(), error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	builder, err := prompt.LoadBuilder(cfg.PromptDirs)
	if err != nil {
		return nil, nil, fmt.Errorf("loading prompt templates: %w", err)
	}

	opts := analysis.Options{
		Provider:      provider,
		Store:         session.NewStore(),
		Builder:       builder,
		Logger:        logger,
		ContextWindow: cfg.GetContextWindow(),
	}

	cleanup := func() {}
	if cfg.NATSURL != "" {
		client, err := events.NewClient(cfg.NATSURL, cfg.NATSToken, logger)
		if err != nil {
			// Events are optional; analysis still works without them.
			logger.Warn("event publishing disabled", "error", err)
		} else {
			opts.Publisher = client
			cleanup = client.Close
		}
	}

	logger.Debug("analysis service ready", "model", cfg.Model, "prompt_dirs", cfg.PromptDirs)
	return analysis.New(opts), cleanup, nil
}
