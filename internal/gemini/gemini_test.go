package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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
	var gotReq GeminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "AIzaSyTest" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"PART 1 - EXPLANATION: "},{"text":"hi"}]}}]}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "gemini:gemini-2.0-flash", baseURL: srv.URL, token: "AIzaSyTest"})
	got, err := p.Generate(context.Background(), "explain")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "PART 1 - EXPLANATION: hi" {
		t.Errorf("Generate() = %q", got)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "explain" {
		t.Errorf("request = %+v", gotReq)
	}
	if p.Name() != "Gemini" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "gemini:gemini-2.0-flash", baseURL: srv.URL, token: "bad"})
	_, err := p.Generate(context.Background(), "x")

	var apiErr *clippy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *clippy.APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "API key not valid" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "gemini:gemini-2.0-flash", baseURL: srv.URL, token: "k"})
	_, err := p.Generate(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("error = %v, want finish reason", err)
	}
}

func TestGenerateMissingToken(t *testing.T) {
	p := NewProvider(testConfig{model: "gemini:gemini-2.0-flash", baseURL: "http://127.0.0.1:1"})
	if _, err := p.Generate(context.Background(), "x"); err == nil {
		t.Error("Generate() expected error without token")
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "gemini:gemini-2.0-flash", baseURL: srv.URL, token: "secret-key"})
	p.SetTimeout(20 * time.Millisecond)
	_, err := p.Generate(context.Background(), "x")
	if err == nil {
		t.Fatal("Generate() expected timeout error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks API key: %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[
			{"name":"models/gemini-1.5-flash","displayName":"Gemini 1.5 Flash","supportedGenerationMethods":["generateContent"]},
			{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]},
			{"name":"models/gemini-2.0-flash","description":"Fast","supportedGenerationMethods":["generateContent","countTokens"]}
		]}`))
	}))
	defer srv.Close()

	p := NewProvider(testConfig{model: "gemini:gemini-2.0-flash", baseURL: srv.URL, token: "k"})
	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}

	want := []clippy.ModelInfo{
		{ID: "gemini-2.0-flash", Description: "Fast", IsDefault: true},
		{ID: "gemini-1.5-flash", Description: "Gemini 1.5 Flash"},
	}
	if len(models) != len(want) {
		t.Fatalf("ListModels() = %+v", models)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("models[%d] = %+v, want %+v", i, models[i], want[i])
		}
	}
}
