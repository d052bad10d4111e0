package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("api", nil, envFrom(nil))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != "8080" || !cfg.Ledger.DemoData || cfg.Webhook.TextTimeout != 15*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Export.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.Export.MaxRetries)
	}
	if cfg.ResolvedProvider() != ProviderRules {
		t.Errorf("ResolvedProvider() = %q, want rules", cfg.ResolvedProvider())
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  log_level: debug
webhook:
  url: http://yaml.example/hook
  image_timeout: 90s
ledger:
  demo_data: false
export:
  max_retries: 2
`)

	tests := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(t *testing.T, c Config)
	}{
		{
			name: "yaml over defaults",
			args: []string{"-config", path},
			check: func(t *testing.T, c Config) {
				if c.Server.Port != "9000" || c.Server.LogLevel != "debug" || c.Ledger.DemoData {
					t.Errorf("server/ledger = %+v / %+v", c.Server, c.Ledger)
				}
				if c.Webhook.ImageTimeout != 90*time.Second || c.Webhook.TextTimeout != 15*time.Second {
					t.Errorf("webhook = %+v", c.Webhook)
				}
				if c.Export.MaxRetries != 2 {
					t.Errorf("MaxRetries = %d", c.Export.MaxRetries)
				}
			},
		},
		{
			name: "env over yaml",
			args: []string{"-config", path},
			env:  map[string]string{"PORT": "7000", "WEBHOOK_URL": "http://env.example/hook", "LEDGER_DEMO_DATA": "true"},
			check: func(t *testing.T, c Config) {
				if c.Server.Port != "7000" || c.Webhook.URL != "http://env.example/hook" || !c.Ledger.DemoData {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "flags over env",
			args: []string{"-port", "6000", "-latency", "200ms"},
			env:  map[string]string{"PORT": "7000", "CONFIG_FILE": path},
			check: func(t *testing.T, c Config) {
				if c.Server.Port != "6000" || c.Ledger.Latency != 200*time.Millisecond {
					t.Errorf("config = %+v", c)
				}
				if c.Server.LogLevel != "debug" {
					t.Errorf("CONFIG_FILE not read: log level %q", c.Server.LogLevel)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("api", tt.args, envFrom(tt.env))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"missing file", []string{"-config", "/nonexistent/config.yaml"}, nil, "read"},
		{"unknown yaml key", []string{"-config", writeConfig(t, "server:\n  prot: 1\n")}, nil, "parse"},
		{"bad env duration", nil, map[string]string{"LEDGER_LATENCY": "soon"}, "LEDGER_LATENCY"},
		{"bad flag int", []string{"-export-retries", "many"}, nil, "export-retries"},
		{"unknown provider", []string{"-provider", "oracle"}, nil, "provider"},
		{"gemini without key", []string{"-provider", "gemini"}, nil, "gemini_api_key"},
		{"negative retries", []string{"-export-retries", "-1"}, nil, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("api", tt.args, envFrom(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestResolvedProvider(t *testing.T) {
	tests := []struct {
		name string
		ext  ExtractionConfig
		want string
	}{
		{"explicit rules", ExtractionConfig{Provider: ProviderRules, GeminiAPIKey: "k"}, ProviderRules},
		{"gemini key", ExtractionConfig{GeminiAPIKey: "k", AnthropicAPIKey: "a"}, ProviderGemini},
		{"anthropic key", ExtractionConfig{AnthropicAPIKey: "a"}, ProviderClaude},
		{"no keys", ExtractionConfig{}, ProviderRules},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.Extraction = tt.ext
			if got := c.ResolvedProvider(); got != tt.want {
				t.Errorf("ResolvedProvider() = %q, want %q", got, tt.want)
			}
		})
	}
}
