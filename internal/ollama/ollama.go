package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/longkey1/clippyai/internal/clippy"
	"github.com/ollama/ollama/api"
)

const (
	ProviderName = "ollama"
	DisplayName  = "Ollama"
	DefaultHost  = "http://localhost:11434"
)

// Config defines the configuration interface for Ollama provider
type Config interface {
	GetModel() string
	GetBaseURL(provider string) (string, error)
}

// Provider implements the clippy.Provider interface for a local Ollama server.
type Provider struct {
	client *api.Client
	model  string
}

// NewProvider creates an Ollama provider for the configured host and model.
func NewProvider(config Config, timeout time.Duration) (*Provider, error) {
	_, modelName, err := clippy.ParseModelString(config.GetModel())
	if err != nil {
		return nil, fmt.Errorf("invalid model format: %w", err)
	}

	host, err := config.GetBaseURL(ProviderName)
	if err != nil || host == "" {
		host = DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return &Provider{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  modelName,
	}, nil
}

// Name implements clippy.Provider.
func (p *Provider) Name() string {
	return DisplayName
}

// Generate sends a prompt to Ollama and returns the response
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	var b strings.Builder

	stream := false
	req := &api.GenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: &stream,
	}

	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", &clippy.APIError{Provider: DisplayName, StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage}
		}
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	if b.Len() == 0 {
		return "", &clippy.APIError{Provider: DisplayName, Message: "empty response"}
	}
	return b.String(), nil
}

// ListModels returns the locally pulled models.
func (p *Provider) ListModels(ctx context.Context) ([]clippy.ModelInfo, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ollama list: %w", err)
	}

	models := make([]clippy.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		var desc []string
		if m.Details.Family != "" {
			desc = append(desc, m.Details.Family)
		}
		if m.Details.ParameterSize != "" {
			desc = append(desc, m.Details.ParameterSize)
		}
		if m.Details.QuantizationLevel != "" {
			desc = append(desc, m.Details.QuantizationLevel)
		}
		models = append(models, clippy.ModelInfo{
			ID:          m.Name,
			Description: strings.Join(desc, " "),
			IsDefault:   m.Name == p.model,
		})
	}
	return models, nil
}
