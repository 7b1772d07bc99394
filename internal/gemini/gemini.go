package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/longkey1/clippyai/internal/clippy"
)

const (
	ProviderName   = "gemini"
	DisplayName    = "Gemini"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
)

// ModelsAPIResponse represents the response from Gemini's models endpoint
type ModelsAPIResponse struct {
	Models []GeminiModelData `json:"models"`
}

// GeminiModelData represents a single model in the API response
type GeminiModelData struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	Description                string   `json:"description"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// GeminiRequest represents the request body for Gemini's generate content API
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
}

// GeminiContent represents a content item in the Gemini request format
type GeminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of the content in the Gemini request format
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiResponse represents the full response from Gemini API
type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
	Error      *GeminiError      `json:"error,omitempty"`
}

// GeminiCandidate represents a candidate response
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// GeminiError is the error object Google APIs return on failure.
type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Config defines the configuration interface for Gemini provider
type Config interface {
	GetModel() string
	GetBaseURL(provider string) (string, error)
	GetToken(provider string) (string, error)
}

// Provider implements the clippy.Provider interface for Gemini
type Provider struct {
	config     Config
	httpClient *http.Client
}

// NewProvider creates a new Gemini provider instance
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

// endpoint builds baseURL + path with the API key as a query parameter.
func (p *Provider) endpoint(path string) (string, error) {
	token, err := p.config.GetToken(ProviderName)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("gemini token is not configured. Set gemini_token, CLIPPY_GEMINI_TOKEN or run 'clippy key set'")
	}

	baseURL, err := p.config.GetBaseURL(ProviderName)
	if err != nil {
		return "", fmt.Errorf("failed to get base URL: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return strings.TrimRight(baseURL, "/") + path + "?key=" + url.QueryEscape(token), nil
}

// ListModels returns the models that support generateContent, sorted by ID
// in descending order.
func (p *Provider) ListModels(ctx context.Context) ([]clippy.ModelInfo, error) {
	endpoint, err := p.endpoint("/models")
	if err != nil {
		return nil, err
	}

	body, err := p.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result ModelsAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	models := make([]clippy.ModelInfo, 0, len(result.Models))
	for _, model := range result.Models {
		if !contains(model.SupportedGenerationMethods, "generateContent") {
			continue
		}

		description := model.Description
		if description == "" {
			description = model.DisplayName
		}

		id := strings.TrimPrefix(model.Name, "models/")
		models = append(models, clippy.ModelInfo{
			ID:          id,
			Description: description,
			IsDefault:   id == DefaultModel,
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})

	return models, nil
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Generate sends prompt as a single user turn and returns the first
// candidate's text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	_, modelName, err := clippy.ParseModelString(p.config.GetModel())
	if err != nil {
		return "", fmt.Errorf("invalid model format: %w", err)
	}

	jsonData, err := json.Marshal(GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	endpoint, err := p.endpoint("/models/" + url.PathEscape(modelName) + ":generateContent")
	if err != nil {
		return "", err
	}

	body, err := p.do(ctx, http.MethodPost, endpoint, jsonData)
	if err != nil {
		return "", err
	}

	var result GeminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", &clippy.APIError{Provider: DisplayName, Message: "no response from API (empty candidates)"}
	}

	var texts []string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		reason := result.Candidates[0].FinishReason
		if reason == "" {
			reason = "empty parts"
		}
		return "", &clippy.APIError{Provider: DisplayName, Message: "no text in response (" + reason + ")"}
	}

	return strings.Join(texts, ""), nil
}

func (p *Provider) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", redactKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		var errResp GeminiResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return nil, &clippy.APIError{Provider: DisplayName, StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}

// redactKey strips the request URL from transport errors so the API key in
// the query string is never logged.
func redactKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
