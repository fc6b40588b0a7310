package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
telegram:
  token: "123:abc"
  run_mode: polling
runtime:
  base_url: "https://runtime.example.com/v1/"
  token: "rt-token"
  templates:
    book: "tpl-book"
    movie: "tpl-movie"
    quote: "tpl-quote"
logging:
  level: debug
  format: kv
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadNormalizesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want %q (polling alias)", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if cfg.Runtime.BaseURL != "https://runtime.example.com/v1" {
		t.Errorf("base_url not trimmed: %q", cfg.Runtime.BaseURL)
	}
	if cfg.Runtime.StepFunction != "api/step" {
		t.Errorf("step_function default = %q", cfg.Runtime.StepFunction)
	}
	if got := cfg.RuntimeTimeout(); got != 30*time.Second {
		t.Errorf("runtime timeout default = %v", got)
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without host")
	}
}

func TestLoadEnvOverridesToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "999:env")
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "999:env" {
		t.Errorf("token = %q, want env override", cfg.Telegram.Token)
	}
}

func TestNormalizeRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }},
		{"missing runtime url", func(c *Config) { c.Runtime.BaseURL = "" }},
		{"missing runtime token", func(c *Config) { c.Runtime.Token = "" }},
		{"missing book template", func(c *Config) { c.Runtime.Templates.Book = "" }},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = RunModeWebhook }},
		{"bad rate limit exclusion", func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"poll"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := Normalize(cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = "localhost"
	cfg.Database.Name = "shelfbot"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" || cfg.Database.MaxConnections != 4 {
		t.Errorf("database defaults not applied: %+v", cfg.Database)
	}
}

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc", RunMode: RunModeLongpoll},
		Runtime: RuntimeConfig{
			BaseURL: "https://runtime.example.com/v1",
			Token:   "rt-token",
			Templates: TemplatesConfig{
				Book:  "tpl-book",
				Movie: "tpl-movie",
				Quote: "tpl-quote",
			},
		},
	}
}
