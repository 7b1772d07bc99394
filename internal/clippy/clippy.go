// Package clippy provides the core abstractions shared by the analysis pipeline.
// It defines the Provider interface that all model backends (gemini, openai,
// anthropic, ollama) implement, together with the message and mode types that
// flow between the classifier, prompt builder, segmenter and session store.
package clippy

import (
	"context"
	"fmt"
	"strings"
)

// Mode is the classifier's decision about what kind of text was submitted.
// It selects the prompt template and the segmentation labels.
type Mode string

const (
	ModeQuestion    Mode = "question"
	ModeCodeSnippet Mode = "code_snippet"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// ModelInfo represents information about an available model from a provider.
type ModelInfo struct {
	ID          string // Model identifier (e.g., "gemini-2.0-flash")
	Description string // Human-readable description of the model
	IsDefault   bool   // Whether this is the default model for the provider
}

// Provider defines the interface for model backends.
// The analysis pipeline treats a provider as a single opaque call: one prompt
// in, one text reply out.
//
// Example usage:
//
//	provider := gemini.NewProvider(cfg)
//	reply, err := provider.Generate(ctx, "Explain this code: ...")
type Provider interface {
	// Name returns the human-readable backend name used in user-facing messages.
	Name() string

	// Generate sends a single prompt and returns the model's text reply.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ParseModelString parses a model string in "provider:model" format.
// Returns (provider, model, error).
//
// Example:
//
//	provider, model, err := ParseModelString("gemini:gemini-2.0-flash")
//	// provider = "gemini", model = "gemini-2.0-flash"
func ParseModelString(modelStr string) (string, string, error) {
	parts := strings.SplitN(modelStr, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid model format: %s (expected format: provider:model, e.g., gemini:gemini-2.0-flash)", modelStr)
	}

	provider := strings.TrimSpace(parts[0])
	model := strings.TrimSpace(parts[1])

	if provider == "" || model == "" {
		return "", "", fmt.Errorf("provider and model cannot be empty")
	}

	return provider, model, nil
}

// FormatModelString formats provider and model into "provider:model" format.
func FormatModelString(provider, model string) string {
	return fmt.Sprintf("%s:%s", provider, model)
}
