package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_CreatesDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != filepath.Join(dir, DefaultConfigFile) {
		t.Errorf("path = %s", cfg.Path())
	}
	if _, err := os.Stat(cfg.Path()); err != nil {
		t.Errorf("default config not written: %v", err)
	}
	if !cfg.IsFirstRun() {
		t.Error("default config should need setup")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := `{"switcher": {"host": "10.0.0.50", "timeout_sec": 5}}`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sw := cfg.GetSwitcher()
	if sw.Host != "10.0.0.50" || sw.Timeout() != 5*time.Second {
		t.Errorf("switcher = %+v", sw)
	}
	if sw.Port != DefaultSwitchPort || sw.FlushInterval() != 100*time.Millisecond {
		t.Errorf("defaults lost: %+v", sw)
	}
	if sw.Address() != "10.0.0.50:9910" {
		t.Errorf("address = %s", sw.Address())
	}

	saved, _ := os.ReadFile(cfg.Path())
	if !strings.Contains(string(saved), `"flush_interval_ms"`) {
		t.Error("re-save did not persist new defaults")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{"), 0644)
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	result := Validate(cfg)
	if result.IsValid() {
		t.Fatal("missing host accepted")
	}

	cfg.Switcher.Host = "atem.local"
	result = Validate(cfg)
	if !result.IsValid() {
		t.Errorf("defaults with a host are invalid: %v", result.Errors)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port", func(c *Config) { c.Switcher.Port = 70000 }, "switcher.port"},
		{"session id", func(c *Config) { c.Switcher.SessionID = 0x8000 }, "switcher.session_id"},
		{"timeout", func(c *Config) { c.Switcher.TimeoutSec = 0 }, "switcher.timeout_sec"},
		{"flush", func(c *Config) { c.Switcher.FlushIntervalMS = 0 }, "switcher.flush_interval_ms"},
		{"cleanup time", func(c *Config) { c.ApplicationData.Journal.CleanupTime = "4am" }, "application_data.journal.cleanup_time"},
		{"mqtt prefix", func(c *Config) {
			c.ApplicationData.MQTT.Enabled = true
			c.ApplicationData.MQTT.TopicPrefix = "avista/#"
		}, "application_data.mqtt.topic_prefix"},
		{"token", func(c *Config) { c.ApplicationData.Security.AuthDisabled = false }, "application_data.api.token"},
		{"metrics path", func(c *Config) { c.ApplicationData.Metrics.Path = "metrics" }, "application_data.metrics.path"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Switcher.Host = "10.0.0.50"
			tt.mutate(cfg)

			result := Validate(cfg)
			found := false
			for _, e := range result.Errors {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %s, got %v", tt.field, result.Errors)
			}
		})
	}
}

func TestUpdateSwitcherField(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.UpdateSwitcherField("host", "192.168.1.240"); err != nil {
		t.Fatal(err)
	}
	if cfg.GetSwitcher().Host != "192.168.1.240" {
		t.Errorf("host = %s", cfg.GetSwitcher().Host)
	}
	if err := cfg.UpdateSwitcherField("nope", 1); err == nil {
		t.Error("unknown field accepted")
	}
	if err := cfg.UpdateSwitcherField("port", "high"); err == nil {
		t.Error("string accepted for port")
	}
}
