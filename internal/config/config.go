// Package config handles configuration loading, validation, and persistence
// for the avista switcher controller.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "config.json"
	DefaultAPIPort    = 5000
	DefaultSwitchPort = 9910
	DefaultSessionID  = 0x1337
)

// Config is the root configuration structure for avista.
type Config struct {
	mu   sync.RWMutex
	path string

	Switcher        SwitcherConfig  `json:"switcher"`
	ApplicationData ApplicationData `json:"application_data"`
}

// SwitcherConfig describes the switcher connection.
type SwitcherConfig struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	LocalPort int    `json:"local_port"`
	SessionID int    `json:"session_id"`

	TimeoutSec          int `json:"timeout_sec"`
	HelloRetrySec       int `json:"hello_retry_sec"`
	WatchdogIntervalSec int `json:"watchdog_interval_sec"`
	FlushIntervalMS     int `json:"flush_interval_ms"`
}

// Address returns the host:port of the switcher.
func (s SwitcherConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Timeout returns the liveness timeout.
func (s SwitcherConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// HelloRetry returns the delay before an unanswered HELLO is resent.
func (s SwitcherConfig) HelloRetry() time.Duration {
	return time.Duration(s.HelloRetrySec) * time.Second
}

// WatchdogInterval returns how often liveness is checked.
func (s SwitcherConfig) WatchdogInterval() time.Duration {
	return time.Duration(s.WatchdogIntervalSec) * time.Second
}

// FlushInterval returns how often accumulated state changes are broadcast.
func (s SwitcherConfig) FlushInterval() time.Duration {
	return time.Duration(s.FlushIntervalMS) * time.Millisecond
}

// ApplicationData contains controller application configuration.
type ApplicationData struct {
	API      APIConfig      `json:"api"`
	Timers   TimerConfig    `json:"timers"`
	Journal  JournalConfig  `json:"journal"`
	MQTT     MQTTConfig     `json:"mqtt"`
	Metrics  MetricsConfig  `json:"metrics"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

// APIConfig holds the REST server settings.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
	Port    int    `json:"port"`
	Token   string `json:"token"`
}

// TimerConfig holds health check and heartbeat interval settings.
type TimerConfig struct {
	GeneralHealthInterval int `json:"general_health_interval_sec"`
	JournalCheckInterval  int `json:"journal_check_interval_sec"`
	HeartbeatInterval     int `json:"heartbeat_interval_sec"`
}

// JournalConfig holds the state change journal settings.
type JournalConfig struct {
	Enabled       bool   `json:"enabled"`
	Path          string `json:"path"`
	CleanupTime   string `json:"cleanup_time"`
	RetentionDays int    `json:"retention_days"`
	MaxRows       int    `json:"max_rows"`
}

// MQTTConfig holds MQTT broadcast settings.
type MQTTConfig struct {
	Enabled     bool   `json:"enabled"`
	BrokerURL   string `json:"broker_url"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"use_tls"`
	CertFile    string `json:"cert_file"`
	KeyFile     string `json:"key_file"`
	CAFile      string `json:"ca_file"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	TLSEnabled     bool     `json:"tls_enabled"`
	TLSCertFile    string   `json:"tls_cert_file"`
	TLSKeyFile     string   `json:"tls_key_file"`
	AllowedOrigins []string `json:"allowed_origins"`
	RateLimitRPS   int      `json:"rate_limit_rps"`
	IPWhitelist    []string `json:"ip_whitelist"`
	AuthDisabled   bool     `json:"auth_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `json:"level"`
	Directory  string `json:"directory"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Switcher: SwitcherConfig{
			Name:                "atem",
			Port:                DefaultSwitchPort,
			SessionID:           DefaultSessionID,
			TimeoutSec:          10,
			HelloRetrySec:       10,
			WatchdogIntervalSec: 10,
			FlushIntervalMS:     100,
		},
		ApplicationData: ApplicationData{
			API: APIConfig{
				Enabled: true,
				Listen:  "0.0.0.0",
				Port:    DefaultAPIPort,
			},
			Timers: TimerConfig{
				GeneralHealthInterval: 60,
				JournalCheckInterval:  3600,
				HeartbeatInterval:     60,
			},
			Journal: JournalConfig{
				Enabled:       true,
				Path:          filepath.Join("data", "journal.db"),
				CleanupTime:   "04:00",
				RetentionDays: 7,
				MaxRows:       500000,
			},
			MQTT: MQTTConfig{
				Enabled:     false,
				BrokerURL:   "localhost",
				Port:        1883,
				TopicPrefix: "avista",
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Security: SecurityConfig{
				RateLimitRPS: 100,
				AuthDisabled: true,
			},
			Logging: LoggingConfig{
				Level:      "info",
				Directory:  "logs",
				MaxSizeMB:  10,
				MaxBackups: 5,
			},
		},
	}
}

// Load reads configuration from a JSON file.
func Load(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, DefaultConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configPath).Msg("config file not found, creating default")
			cfg := DefaultConfig()
			cfg.path = configPath
			if saveErr := cfg.Save(); saveErr != nil {
				return nil, fmt.Errorf("failed to save default config: %w", saveErr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig() // Start with defaults, then overlay
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	cfg.path = configPath
	log.Info().Str("path", configPath).Msg("configuration loaded")

	// Re-save so the file always lists every option known to this build.
	if saveErr := cfg.Save(); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to re-save config with updated defaults")
	}

	return cfg, nil
}

// Save writes the current configuration to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", c.path).Msg("configuration saved")
	return nil
}

// GetSwitcher returns a copy of the switcher configuration.
func (c *Config) GetSwitcher() SwitcherConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Switcher
}

// SetSwitcher updates the switcher configuration.
func (c *Config) SetSwitcher(s SwitcherConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Switcher = s
}

// GetApplicationData returns a copy of the application data configuration.
func (c *Config) GetApplicationData() ApplicationData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ApplicationData
}

// SetApplicationData updates the application data configuration.
func (c *Config) SetApplicationData(data ApplicationData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ApplicationData = data
}

// UpdateSwitcherField updates a single switcher field by its JSON name.
func (c *Config) UpdateSwitcherField(key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return updateField(&c.Switcher, key, value)
}

// UpdateAppField updates a single application data section by its JSON name.
func (c *Config) UpdateAppField(key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return updateField(&c.ApplicationData, key, value)
}

// updateField round-trips target through a JSON map so key can be set by
// its tag name.
func updateField(target interface{}, key string, value interface{}) error {
	data, err := json.Marshal(target)
	if err != nil {
		return err
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return fmt.Errorf("unknown field %s", key)
	}

	m[key] = value

	updated, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(updated, target); err != nil {
		return fmt.Errorf("failed to update field %s: %w", key, err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// IsFirstRun returns true if the configuration needs initial setup.
func (c *Config) IsFirstRun() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Switcher.Host == ""
}
