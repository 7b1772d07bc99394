package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/longkey1/clippyai/internal/clippy"
)

type testConfig struct {
	model   string
	baseURL string
	token   string
}

func (c testConfig) GetModel() string                 { return c.model }
func (c testConfig) GetBaseURL(string) (string, error) { return c.baseURL, nil }
func (c testConfig) GetToken(string) (string, error)   { return c.token, nil }

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var req ResponsesAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "gpt-4.1" || req.Input != "hello" {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"output":[{"type":"reasoning","content":[]},{"type":"message","content":[{"type":"output_text","text":"world"}]}]}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "openai:gpt-4.1", baseURL: srv.URL, token: "sk-test"})
	got, err := p.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "world" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerateUnsupportedModel(t *testing.T) {
	p := NewProvider(testConfig{model: "openai:davinci-002", baseURL: "http://127.0.0.1:1", token: "sk"})
	if _, err := p.Generate(context.Background(), "x"); err == nil {
		t.Error("Generate() expected error for unsupported model")
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"insufficient_quota","message":"You exceeded your quota"}}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "openai:gpt-4o", baseURL: srv.URL, token: "sk"})
	_, err := p.Generate(context.Background(), "x")

	var apiErr *clippy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *clippy.APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "You exceeded your quota" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"gpt-4.1","owned_by":"system"},{"id":"whisper-1","owned_by":"openai"},{"id":"o3","owned_by":"system"}]}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "openai:gpt-4.1", baseURL: srv.URL, token: "sk"})
	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0].ID != "o3" || models[1].ID != "gpt-4.1" || !models[1].IsDefault {
		t.Errorf("ListModels() = %+v", models)
	}
}
