package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

// Validate performs comprehensive validation of the configuration.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	validateSwitcher(&cfg.Switcher, result)
	validateApplicationData(&cfg.ApplicationData, result)

	return result
}

func validateSwitcher(s *SwitcherConfig, result *ValidationResult) {
	if strings.TrimSpace(s.Host) == "" {
		result.AddError("switcher.host", "switcher host is required")
	} else if net.ParseIP(s.Host) == nil && strings.ContainsAny(s.Host, " /:") {
		result.AddError("switcher.host", fmt.Sprintf("invalid host: %s", s.Host))
	}

	validatePort(s.Port, "switcher.port", result)
	if s.LocalPort != 0 {
		validatePort(s.LocalPort, "switcher.local_port", result)
	}

	if s.SessionID < 1 || s.SessionID > 0x7FFF {
		result.AddError("switcher.session_id", "session id must be between 1 and 32767")
	}

	if s.TimeoutSec < 1 {
		result.AddError("switcher.timeout_sec", "timeout must be at least 1 second")
	}
	if s.HelloRetrySec < 1 {
		result.AddError("switcher.hello_retry_sec", "hello retry must be at least 1 second")
	}
	if s.WatchdogIntervalSec < 1 {
		result.AddError("switcher.watchdog_interval_sec", "watchdog interval must be at least 1 second")
	}
	if s.WatchdogIntervalSec > s.TimeoutSec {
		result.AddWarning("switcher.watchdog_interval_sec",
			"watchdog interval longer than the timeout delays reconnects")
	}

	if s.FlushIntervalMS < 1 {
		result.AddError("switcher.flush_interval_ms", "flush interval must be at least 1 ms")
	}
	if s.FlushIntervalMS > 5000 {
		result.AddWarning("switcher.flush_interval_ms",
			fmt.Sprintf("flush interval of %dms will make state broadcasts lag", s.FlushIntervalMS))
	}
}

func validateApplicationData(data *ApplicationData, result *ValidationResult) {
	validateTimers(&data.Timers, result)

	if data.API.Enabled {
		validatePort(data.API.Port, "application_data.api.port", result)
	}

	// Journal
	if data.Journal.Enabled {
		if strings.TrimSpace(data.Journal.Path) == "" {
			result.AddError("application_data.journal.path", "journal path is required when enabled")
		}
		if data.Journal.RetentionDays < 1 {
			result.AddError("application_data.journal.retention_days",
				"retention days must be at least 1")
		}
		if _, err := time.Parse("15:04", data.Journal.CleanupTime); err != nil {
			result.AddError("application_data.journal.cleanup_time",
				fmt.Sprintf("invalid cleanup time %q (expected HH:MM)", data.Journal.CleanupTime))
		}
	}

	// MQTT
	if data.MQTT.Enabled {
		if strings.TrimSpace(data.MQTT.BrokerURL) == "" {
			result.AddError("application_data.mqtt.broker_url", "MQTT broker URL is required when enabled")
		}
		if data.MQTT.Port < 1 || data.MQTT.Port > 65535 {
			result.AddError("application_data.mqtt.port", "invalid MQTT port")
		}
		if strings.ContainsAny(data.MQTT.TopicPrefix, "#+") {
			result.AddError("application_data.mqtt.topic_prefix", "topic prefix must not contain wildcards")
		}
	}

	if data.Metrics.Enabled && !strings.HasPrefix(data.Metrics.Path, "/") {
		result.AddError("application_data.metrics.path", "metrics path must start with /")
	}

	// Security
	if data.Security.TLSEnabled {
		if strings.TrimSpace(data.Security.TLSCertFile) == "" {
			result.AddError("application_data.security.tls_cert_file",
				"TLS certificate file is required when TLS is enabled")
		}
		if strings.TrimSpace(data.Security.TLSKeyFile) == "" {
			result.AddError("application_data.security.tls_key_file",
				"TLS key file is required when TLS is enabled")
		}
	}

	if data.Security.RateLimitRPS < 1 {
		result.AddWarning("application_data.security.rate_limit_rps",
			"rate limit is disabled (0 RPS), this may expose the API to abuse")
	}
	if !data.Security.AuthDisabled && strings.TrimSpace(data.API.Token) == "" {
		result.AddError("application_data.api.token", "an API token is required when auth is enabled")
	}
}

func validateTimers(timers *TimerConfig, result *ValidationResult) {
	if timers.GeneralHealthInterval < 5 {
		result.AddWarning("timers.general_health_interval",
			"health interval less than 5s may cause excessive checks")
	}
	if timers.HeartbeatInterval < 10 {
		result.AddWarning("timers.heartbeat_interval",
			"heartbeat interval less than 10s may cause excessive traffic")
	}
}

func validatePort(port int, field string, result *ValidationResult) {
	if port < 1 || port > 65535 {
		result.AddError(field, fmt.Sprintf("invalid port number: %d (must be 1-65535)", port))
		return
	}
	if port < 1024 {
		result.AddWarning(field,
			fmt.Sprintf("port %d is a privileged port, may require elevated permissions", port))
	}
}

// IsPortAvailable checks if a TCP port is available for binding.
func IsPortAvailable(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
