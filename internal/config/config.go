// Package config loads settings from defaults, an optional YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Extraction providers.
const (
	ProviderAuto   = ""
	ProviderRules  = "rules"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Chat       ChatConfig       `yaml:"chat"`
	Export     ExportConfig     `yaml:"export"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	LogJSON      bool   `yaml:"log_json"`
	JWTSecret    string `yaml:"jwt_secret"`
	DemoPassword string `yaml:"demo_password"`
}

type WebhookConfig struct {
	URL          string        `yaml:"url"`
	TextTimeout  time.Duration `yaml:"text_timeout"`
	ImageTimeout time.Duration `yaml:"image_timeout"`
}

type LedgerConfig struct {
	SnapshotPath string        `yaml:"snapshot_path"`
	DemoData     bool          `yaml:"demo_data"`
	Latency      time.Duration `yaml:"latency"`
}

type ExtractionConfig struct {
	RulesFile       string `yaml:"rules_file"`
	Provider        string `yaml:"provider"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	ClaudeModel     string `yaml:"claude_model"`
}

type ChatConfig struct {
	RedisURL      string        `yaml:"redis_url"`
	HistoryLimit  int           `yaml:"history_limit"`
	HistoryTTL    time.Duration `yaml:"history_ttl"`
	ArchiveBucket string        `yaml:"archive_bucket"`
}

type ExportConfig struct {
	WebhookURL       string `yaml:"webhook_url"`
	Workers          int    `yaml:"workers"`
	MaxRetries       int    `yaml:"max_retries"`
	BigQueryProject  string `yaml:"bigquery_project"`
	BigQueryDataset  string `yaml:"bigquery_dataset"`
	BigQueryTable    string `yaml:"bigquery_table"`
	NotionToken      string `yaml:"notion_token"`
	NotionDatabaseID string `yaml:"notion_database_id"`
	CredentialsFile  string `yaml:"credentials_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			LogLevel:     "info",
			DemoPassword: "demo123",
		},
		Webhook: WebhookConfig{
			TextTimeout:  15 * time.Second,
			ImageTimeout: 60 * time.Second,
		},
		Ledger: LedgerConfig{
			DemoData: true,
		},
		Chat: ChatConfig{
			HistoryLimit: 200,
		},
		Export: ExportConfig{
			Workers:         2,
			BigQueryDataset: "accounting",
			BigQueryTable:   "entry_lines",
		},
	}
}

// Load builds a Config from defaults, the YAML file named by -config (or
// CONFIG_FILE), the environment and the flags in args.
func Load(name string, args []string, lookup func(string) (string, bool)) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file (or set CONFIG_FILE env)")
	for _, s := range settings {
		fs.String(s.flag, "", s.usage+" (or set "+s.env+" env)")
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	path := *configPath
	if path == "" {
		path, _ = lookup("CONFIG_FILE")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("Load: read %s: %w", path, err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("Load: parse %s: %w", path, err)
		}
	}

	for _, s := range settings {
		if v, ok := lookup(s.env); ok && v != "" {
			if err := s.set(&cfg, v); err != nil {
				return Config{}, fmt.Errorf("Load: env %s: %w", s.env, err)
			}
		}
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		for _, s := range settings {
			if s.flag == f.Name && flagErr == nil {
				if err := s.set(&cfg, f.Value.String()); err != nil {
					flagErr = fmt.Errorf("Load: flag -%s: %w", f.Name, err)
				}
			}
		}
	})
	if flagErr != nil {
		return Config{}, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("config: server.port is required")
	}
	switch c.Extraction.Provider {
	case ProviderAuto, ProviderRules, ProviderGemini, ProviderClaude:
	default:
		return fmt.Errorf("config: unknown extraction.provider %q", c.Extraction.Provider)
	}
	if c.Extraction.Provider == ProviderGemini && c.Extraction.GeminiAPIKey == "" {
		return fmt.Errorf("config: extraction.provider gemini needs gemini_api_key")
	}
	if c.Extraction.Provider == ProviderClaude && c.Extraction.AnthropicAPIKey == "" {
		return fmt.Errorf("config: extraction.provider claude needs anthropic_api_key")
	}
	if c.Export.MaxRetries < 0 || c.Export.Workers < 0 || c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("config: counts must not be negative")
	}
	if c.Webhook.TextTimeout < 0 || c.Webhook.ImageTimeout < 0 || c.Ledger.Latency < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}

// ResolvedProvider picks the extraction provider, preferring Gemini then
// Claude when none is set and a key is available.
func (c Config) ResolvedProvider() string {
	if c.Extraction.Provider != ProviderAuto {
		return c.Extraction.Provider
	}
	switch {
	case c.Extraction.GeminiAPIKey != "":
		return ProviderGemini
	case c.Extraction.AnthropicAPIKey != "":
		return ProviderClaude
	}
	return ProviderRules
}

type setting struct {
	flag  string
	env   string
	usage string
	set   func(c *Config, v string) error
}

var settings = []setting{
	{"port", "PORT", "HTTP server port", str(func(c *Config) *string { return &c.Server.Port })},
	{"log-level", "LOG_LEVEL", "log level", str(func(c *Config) *string { return &c.Server.LogLevel })},
	{"log-json", "LOG_JSON", "log as JSON lines", boolean(func(c *Config) *bool { return &c.Server.LogJSON })},
	{"jwt-secret", "JWT_SECRET", "secret signing auth tokens", str(func(c *Config) *string { return &c.Server.JWTSecret })},
	{"demo-password", "DEMO_PASSWORD", "password of the demo user", str(func(c *Config) *string { return &c.Server.DemoPassword })},
	{"webhook-url", "WEBHOOK_URL", "automation webhook URL", str(func(c *Config) *string { return &c.Webhook.URL })},
	{"webhook-text-timeout", "WEBHOOK_TEXT_TIMEOUT", "webhook timeout for text", duration(func(c *Config) *time.Duration { return &c.Webhook.TextTimeout })},
	{"webhook-image-timeout", "WEBHOOK_IMAGE_TIMEOUT", "webhook timeout with an image", duration(func(c *Config) *time.Duration { return &c.Webhook.ImageTimeout })},
	{"snapshot", "LEDGER_SNAPSHOT", "Bolt snapshot file", str(func(c *Config) *string { return &c.Ledger.SnapshotPath })},
	{"demo-data", "LEDGER_DEMO_DATA", "seed demo records into an empty ledger", boolean(func(c *Config) *bool { return &c.Ledger.DemoData })},
	{"latency", "LEDGER_LATENCY", "simulated ledger latency", duration(func(c *Config) *time.Duration { return &c.Ledger.Latency })},
	{"rules", "EXTRACTION_RULES", "YAML keyword rules file", str(func(c *Config) *string { return &c.Extraction.RulesFile })},
	{"provider", "EXTRACTION_PROVIDER", "extraction provider: rules, gemini or claude", str(func(c *Config) *string { return &c.Extraction.Provider })},
	{"gemini-api-key", "GEMINI_API_KEY", "Gemini API key", str(func(c *Config) *string { return &c.Extraction.GeminiAPIKey })},
	{"gemini-model", "GEMINI_MODEL", "Gemini model", str(func(c *Config) *string { return &c.Extraction.GeminiModel })},
	{"anthropic-api-key", "ANTHROPIC_API_KEY", "Anthropic API key", str(func(c *Config) *string { return &c.Extraction.AnthropicAPIKey })},
	{"claude-model", "CLAUDE_MODEL", "Claude model", str(func(c *Config) *string { return &c.Extraction.ClaudeModel })},
	{"redis-url", "REDIS_URL", "Redis address for chat history", str(func(c *Config) *string { return &c.Chat.RedisURL })},
	{"history-limit", "CHAT_HISTORY_LIMIT", "messages kept per conversation", integer(func(c *Config) *int { return &c.Chat.HistoryLimit })},
	{"history-ttl", "CHAT_HISTORY_TTL", "idle conversation expiry in Redis", duration(func(c *Config) *time.Duration { return &c.Chat.HistoryTTL })},
	{"bucket", "GCS_BUCKET", "GCS bucket for uploaded attachments", str(func(c *Config) *string { return &c.Chat.ArchiveBucket })},
	{"export-webhook-url", "EXPORT_WEBHOOK_URL", "spreadsheet webhook for approved entries", str(func(c *Config) *string { return &c.Export.WebhookURL })},
	{"export-workers", "EXPORT_WORKERS", "export queue workers", integer(func(c *Config) *int { return &c.Export.Workers })},
	{"export-retries", "EXPORT_MAX_RETRIES", "export retries per job", integer(func(c *Config) *int { return &c.Export.MaxRetries })},
	{"bigquery-project", "BIGQUERY_PROJECT", "BigQuery project for exports", str(func(c *Config) *string { return &c.Export.BigQueryProject })},
	{"bigquery-dataset", "BIGQUERY_DATASET", "BigQuery dataset for exports", str(func(c *Config) *string { return &c.Export.BigQueryDataset })},
	{"bigquery-table", "BIGQUERY_TABLE", "BigQuery table for exports", str(func(c *Config) *string { return &c.Export.BigQueryTable })},
	{"notion-token", "NOTION_TOKEN", "Notion integration token", str(func(c *Config) *string { return &c.Export.NotionToken })},
	{"notion-database", "NOTION_DATABASE_ID", "Notion journal database", str(func(c *Config) *string { return &c.Export.NotionDatabaseID })},
	{"credentials", "GOOGLE_APPLICATION_CREDENTIALS", "Google service account file", str(func(c *Config) *string { return &c.Export.CredentialsFile })},
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func boolean(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func duration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}
