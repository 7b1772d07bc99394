package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/longkey1/clippyai/internal/clippy"
)

const (
	ProviderName   = "openai"
	DisplayName    = "OpenAI"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4.1"
)

// Supported models for Responses API
var responsesAPISupportedModels = []string{
	"gpt-4o",
	"gpt-4.1",
	"o3",
	"o4-mini",
	"gpt-5",
}

// ResponsesAPIRequest represents the request body for OpenAI's Responses API
type ResponsesAPIRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ResponsesAPIResponse represents the response from OpenAI's Responses API
type ResponsesAPIResponse struct {
	Output []ResponsesAPIOutput `json:"output"`
	Error  *ResponsesAPIError   `json:"error,omitempty"`
}

// ResponsesAPIOutput represents an output element
type ResponsesAPIOutput struct {
	Type    string                `json:"type"`
	Content []ResponsesAPIContent `json:"content"`
}

// ResponsesAPIContent represents one content block of an output element
type ResponsesAPIContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResponsesAPIError is the error object returned on failure.
type ResponsesAPIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ModelsAPIResponse represents the response from the models endpoint
type ModelsAPIResponse struct {
	Data []struct {
		ID      string `json:"id"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

// Config defines the configuration interface for OpenAI provider
type Config interface {
	GetModel() string
	GetBaseURL(provider string) (string, error)
	GetToken(provider string) (string, error)
}

// Provider implements the clippy.Provider interface for OpenAI
type Provider struct {
	config     Config
	httpClient *http.Client
}

// NewProvider creates a new OpenAI provider instance
func NewProvider(config Config) *Provider {
	return &Provider{
		config:     config,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTimeout sets the HTTP client timeout for every request.
func (p *Provider) SetTimeout(d time.Duration) {
	p.httpClient.Timeout = d
}

// Name implements clippy.Provider.
func (p *Provider) Name() string {
	return DisplayName
}

// isResponsesAPISupported checks if the model is supported by Responses API
func isResponsesAPISupported(model string) bool {
	for _, supported := range responsesAPISupportedModels {
		if strings.HasPrefix(model, supported) {
			return true
		}
	}
	return false
}

// Generate sends prompt to the Responses API and returns the concatenated
// output text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	_, model, err := clippy.ParseModelString(p.config.GetModel())
	if err != nil {
		return "", fmt.Errorf("invalid model format: %w", err)
	}

	if !isResponsesAPISupported(model) {
		return "", fmt.Errorf(`model '%s' is not supported with Responses API.

Supported models: gpt-4o, gpt-4.1, o3, o4-mini, gpt-5 series`, model)
	}

	jsonData, err := json.Marshal(ResponsesAPIRequest{Model: model, Input: prompt})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	body, err := p.do(ctx, http.MethodPost, "/responses", jsonData)
	if err != nil {
		return "", err
	}

	var result ResponsesAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	var texts []string
	for _, out := range result.Output {
		for _, c := range out.Content {
			if c.Text != "" {
				texts = append(texts, c.Text)
			}
		}
	}
	if len(texts) == 0 {
		return "", &clippy.APIError{Provider: DisplayName, Message: "no content in response"}
	}

	return strings.Join(texts, "\n"), nil
}

// ListModels returns the GPT and o-series models visible to the token.
func (p *Provider) ListModels(ctx context.Context) ([]clippy.ModelInfo, error) {
	body, err := p.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}

	var result ModelsAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	models := make([]clippy.ModelInfo, 0, len(result.Data))
	for _, m := range result.Data {
		if !isResponsesAPISupported(m.ID) {
			continue
		}
		models = append(models, clippy.ModelInfo{
			ID:          m.ID,
			Description: "Owned by " + m.OwnedBy,
			IsDefault:   m.ID == DefaultModel,
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})

	return models, nil
}

func (p *Provider) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	token, err := p.config.GetToken(ProviderName)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("openai token is not configured. Set openai_token, CLIPPY_OPENAI_TOKEN or run 'clippy key set --provider openai'")
	}

	baseURL, err := p.config.GetBaseURL(ProviderName)
	if err != nil {
		return nil, fmt.Errorf("failed to get base URL: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		var errResp ResponsesAPIResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return nil, &clippy.APIError{Provider: DisplayName, StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}
