// Package events defines the in-process event bus and the events the
// switcher controller publishes on it.
package events

import "time"

// EventType represents the type of event emitted through the EventBus.
type EventType string

const (
	// Switcher events
	EventStateChanged    EventType = "state_changed"
	EventConnectionState EventType = "connection_state"
	EventCommandSent     EventType = "command_sent"

	// Notification events
	EventNotifyMQTT EventType = "notify_mqtt"
	EventHealth     EventType = "health"

	// System events
	EventJournalPruned EventType = "journal_pruned"
	EventConfigChanged EventType = "config_changed"
	EventShutdown      EventType = "shutdown"
)

// Event represents a single event in the system.
type Event struct {
	Type    EventType
	Source  string
	Payload any
}

// StateChangedPayload carries one replaced top-level subtree of the
// switcher state. Value is the subtree as published and must not be
// modified.
type StateChangedPayload struct {
	ConnectionID string    `json:"connection_id"`
	Key          string    `json:"key"`
	Value        any       `json:"value"`
	At           time.Time `json:"at"`
}

// ConnectionStatePayload is emitted on every transport state transition.
type ConnectionStatePayload struct {
	ConnectionID string    `json:"connection_id"`
	State        string    `json:"state"`
	Previous     string    `json:"previous"`
	Address      string    `json:"address"`
	At           time.Time `json:"at"`
}

// CommandSentPayload reports an outbound command. Error is empty on success.
type CommandSentPayload struct {
	ConnectionID string `json:"connection_id"`
	Tag          string `json:"tag"`
	Error        string `json:"error,omitempty"`
}

// NotifyPayload is a free-form notification for operators.
type NotifyPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   string `json:"level"` // "info", "warning", "error"
}

// HealthPayload is the result of one health check run.
type HealthPayload struct {
	Check   string `json:"check"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// JournalPrunedPayload reports a journal retention run.
type JournalPrunedPayload struct {
	Removed int64     `json:"removed"`
	Before  time.Time `json:"before"`
}

// ConfigChangedPayload is emitted when configuration changes occur.
type ConfigChangedPayload struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   any    `json:"value"`
}
