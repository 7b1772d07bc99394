package cmd

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/longkey1/clippyai/internal/anthropic"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/credential"
	"github.com/longkey1/clippyai/internal/gemini"
	"github.com/longkey1/clippyai/internal/ollama"
	"github.com/longkey1/clippyai/internal/openai"
	"github.com/longkey1/clippyai/internal/version"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "(not set)"},
		{"short", "********"},
		{"AIzaSyABCDEFGHIJ", "AIza...GHIJ"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestConfigValue(t *testing.T) {
	cfg := config.NewDefaultConfig("/tmp/prompts")
	cfg.GeminiToken = "AIzaSyABCDEFGHIJ"
	cfg.PollInterval = "250ms"

	tests := []struct {
		field string
		want  string
	}{
		{"model", "gemini:gemini-2.0-flash"},
		{"gemini_token", "AIza...GHIJ"},
		{"prompt_dirs", "/tmp/prompts"},
		{"poll_interval", "250ms"},
		{"context_window", "10"},
		{"min_clipboard_length", "6"},
		{"listen_addr", "127.0.0.1:8000"},
	}
	for _, tt := range tests {
		got, ok := configValue(cfg, tt.field)
		if !ok || got != tt.want {
			t.Errorf("configValue(%q) = %q, %v, want %q", tt.field, got, ok, tt.want)
		}
	}

	if _, ok := configValue(cfg, "websearch"); ok {
		t.Error("configValue(websearch) should be unknown")
	}
}

func TestPrintConfigMasksTokens(t *testing.T) {
	cfg := config.NewDefaultConfig("/tmp/prompts")
	cfg.OpenAIToken = "sk-0123456789abcdef"

	var buf bytes.Buffer
	printConfig(&buf, cfg)

	out := buf.String()
	if strings.Contains(out, "sk-0123456789abcdef") {
		t.Errorf("printConfig leaked a token:\n%s", out)
	}
	for _, field := range configFields {
		if !strings.Contains(out, field+": ") {
			t.Errorf("printConfig missing field %q", field)
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		value   string
		verbose bool
		want    slog.Level
	}{
		{"info", false, slog.LevelInfo},
		{"DEBUG", false, slog.LevelDebug},
		{"warn", false, slog.LevelWarn},
		{"error", false, slog.LevelError},
		{"loud", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}

	orig := verbose
	t.Cleanup(func() { verbose = orig })
	for _, tt := range tests {
		verbose = tt.verbose
		if got := logLevel(tt.value); got != tt.want {
			t.Errorf("logLevel(%q, verbose=%v) = %v, want %v", tt.value, tt.verbose, got, tt.want)
		}
	}
}

func TestKeyringConfigFallsBackToStore(t *testing.T) {
	secrets := credential.New(nil, filepath.Join(t.TempDir(), "secrets.json"))
	if err := secrets.Set("gemini", "AIzaSyStoredKey"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cfg := config.NewDefaultConfig("")
	cfg.GeminiToken = ""
	cfg.OpenAIToken = "sk-configured"
	cfg.AnthropicToken = ""
	kc := &keyringConfig{Config: cfg, secrets: secrets}

	tests := []struct {
		provider string
		want     string
	}{
		{"gemini", "AIzaSyStoredKey"},
		{"openai", "sk-configured"},
		{"anthropic", ""},
	}
	for _, tt := range tests {
		got, err := kc.GetToken(tt.provider)
		if err != nil || got != tt.want {
			t.Errorf("GetToken(%q) = %q, %v, want %q", tt.provider, got, err, tt.want)
		}
	}

	if _, err := kc.GetToken("bogus"); err == nil {
		t.Error("GetToken(bogus) should fail")
	}
}

func TestNewProvider(t *testing.T) {
	orig := userConfigDir
	t.Cleanup(func() { userConfigDir = orig })
	userConfigDir = t.TempDir()

	tests := []struct {
		model    string
		wantName string
		wantErr  bool
	}{
		{"gemini:gemini-2.0-flash", gemini.DisplayName, false},
		{"openai:gpt-4.1", openai.DisplayName, false},
		{"anthropic:claude-3-5-sonnet-20241022", anthropic.DisplayName, false},
		{"ollama:llama3.2", ollama.DisplayName, false},
		{"mistral:large", "", true},
		{"no-provider", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			cfg := config.NewDefaultConfig("")
			cfg.Model = tt.model
			cfg.KeyringService = "clippyai-test"

			p, err := newProvider(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	tests := []struct {
		name  string
		short bool
		json  bool
		want  string
	}{
		{"full", false, false, "commit: "},
		{"short", true, false, version.Version + "\n"},
		{"json", false, true, `"go_version": "` + runtime.Version() + `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printVersion(&buf, tt.short, tt.json); err != nil {
				t.Fatalf("printVersion() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("printVersion() = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}
