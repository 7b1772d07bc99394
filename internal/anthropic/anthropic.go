package anthropic

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
	ProviderName     = "anthropic"
	DisplayName      = "Anthropic"
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-sonnet-20241022"
	AnthropicVersion = "2023-06-01"
	defaultMaxTokens = 8192
)

// ModelsAPIResponse represents the response from Anthropic's models endpoint
type ModelsAPIResponse struct {
	Data []ModelData `json:"data"`
}

// ModelData represents a single model in the API response
type ModelData struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessagesAPIRequest represents the request body for Anthropic's Messages API
type MessagesAPIRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []MessageInput `json:"messages"`
}

// MessageInput represents a message in the conversation
type MessageInput struct {
	Role    string    `json:"role"`    // "user" or "assistant"
	Content []Content `json:"content"` // Array of content blocks
}

// Content represents a text content block
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessagesAPIResponse represents the response from Anthropic's Messages API
type MessagesAPIResponse struct {
	ID         string    `json:"id"`
	Content    []Content `json:"content"`
	StopReason string    `json:"stop_reason"`
	Usage      Usage     `json:"usage"`
	Error      *APIError `json:"error,omitempty"`
}

// Usage represents token usage information
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// APIError represents an error in the API response
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Config defines the configuration interface for Anthropic provider
type Config interface {
	GetModel() string
	GetBaseURL(provider string) (string, error)
	GetToken(provider string) (string, error)
}

// Provider implements the clippy.Provider interface for Anthropic
type Provider struct {
	config     Config
	httpClient *http.Client
	maxTokens  int
}

// NewProvider creates a new Anthropic provider instance
func NewProvider(config Config) *Provider {
	return &Provider{
		config:     config,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		maxTokens:  defaultMaxTokens,
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

// ListModels returns the list of supported models from the API
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
	for _, model := range result.Data {
		description := model.DisplayName
		if description == "" && !model.CreatedAt.IsZero() {
			description = fmt.Sprintf("Created: %s", model.CreatedAt.UTC().Format("2006-01-02"))
		}

		models = append(models, clippy.ModelInfo{
			ID:          model.ID,
			Description: description,
			IsDefault:   model.ID == DefaultModel,
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})

	return models, nil
}

// Generate sends prompt as a single user message and joins the text blocks
// of the reply.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	_, modelName, err := clippy.ParseModelString(p.config.GetModel())
	if err != nil {
		return "", fmt.Errorf("invalid model format: %w", err)
	}

	jsonData, err := json.Marshal(MessagesAPIRequest{
		Model:     modelName,
		MaxTokens: p.maxTokens,
		Messages: []MessageInput{
			{
				Role:    "user",
				Content: []Content{{Type: "text", Text: prompt}},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	body, err := p.do(ctx, http.MethodPost, "/messages", jsonData)
	if err != nil {
		return "", err
	}

	var result MessagesAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	if result.Error != nil {
		return "", &clippy.APIError{Provider: DisplayName, Message: fmt.Sprintf("[%s] %s", result.Error.Type, result.Error.Message)}
	}

	var textBlocks []string
	for _, content := range result.Content {
		if content.Type == "text" && content.Text != "" {
			textBlocks = append(textBlocks, content.Text)
		}
	}

	if len(textBlocks) == 0 {
		return "", &clippy.APIError{Provider: DisplayName, Message: fmt.Sprintf("no text content found in API response (id=%s)", result.ID)}
	}

	return strings.Join(textBlocks, "\n"), nil
}

func (p *Provider) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	token, err := p.config.GetToken(ProviderName)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("anthropic token is not configured. Set anthropic_token, CLIPPY_ANTHROPIC_TOKEN or run 'clippy key set --provider anthropic'")
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
	req.Header.Set("x-api-key", token)
	req.Header.Set("anthropic-version", AnthropicVersion)
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
		var errResp MessagesAPIResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			message = fmt.Sprintf("[%s] %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, &clippy.APIError{Provider: DisplayName, StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}
