// Package telemetry mirrors switcher state and controller status to an
// MQTT broker.
package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/util"
)

// Topic suffixes below <prefix>/<switcher>.
const (
	TopicState      = "state"
	TopicConnection = "connection"
	TopicStatus     = "status"
	TopicNotify     = "notify"
	TopicHealth     = "health"
)

// MQTTHandler publishes bus events to MQTT. State keys and the connection
// state are retained so late subscribers see the current values.
type MQTTHandler struct {
	mu sync.Mutex

	cfg        config.MQTTConfig
	switcher   string
	appVersion string
	heartbeat  time.Duration
	eventBus   *events.EventBus
	client     mqtt.Client
	logger     zerolog.Logger

	// Metadata included in every message
	metadata map[string]interface{}
}

// NewMQTTHandler creates a handler for the switcher named switcherName.
func NewMQTTHandler(cfg *config.Config, eventBus *events.EventBus, switcherName, appVersion string) (*MQTTHandler, error) {
	mqttCfg := cfg.ApplicationData.MQTT
	if !mqttCfg.Enabled {
		return nil, fmt.Errorf("MQTT is disabled")
	}

	sysInfo := util.GetSystemInfo()
	handler := &MQTTHandler{
		cfg:        mqttCfg,
		switcher:   topicSegment(switcherName),
		appVersion: appVersion,
		heartbeat:  time.Duration(cfg.ApplicationData.Timers.HeartbeatInterval) * time.Second,
		eventBus:   eventBus,
		logger:     log.With().Str("component", "mqtt").Logger(),
		metadata: map[string]interface{}{
			"hostname":    sysInfo.Hostname,
			"platform":    sysInfo.Platform,
			"app_version": appVersion,
			"switcher":    switcherName,
		},
	}

	opts, err := handler.clientOptions(sysInfo.Hostname)
	if err != nil {
		return nil, err
	}
	handler.client = mqtt.NewClient(opts)

	return handler, nil
}

func (h *MQTTHandler) clientOptions(hostname string) (*mqtt.ClientOptions, error) {
	scheme := "tcp"
	if h.cfg.UseTLS {
		scheme = "ssl"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, h.cfg.BrokerURL, h.cfg.Port))
	opts.SetClientID(clientID(h.cfg.ClientID, hostname))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	opts.SetWill(h.Topic(TopicConnection), `{"state":"offline"}`, 1, true)

	if h.cfg.UseTLS {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

		if h.cfg.CAFile != "" {
			pem, err := os.ReadFile(h.cfg.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read MQTT CA file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates in MQTT CA file %s", h.cfg.CAFile)
			}
			tlsConfig.RootCAs = pool
		}

		// mTLS
		if h.cfg.CertFile != "" && h.cfg.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(h.cfg.CertFile, h.cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load MQTT TLS certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}

		opts.SetTLSConfig(tlsConfig)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		h.logger.Info().Msg("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		h.logger.Warn().Err(err).Msg("MQTT connection lost")
	})
	return opts, nil
}

// clientID returns configured, or a unique id derived from the hostname.
func clientID(configured, hostname string) string {
	if configured != "" {
		return configured
	}
	return fmt.Sprintf("avista-%s-%s", hostname, uuid.NewString()[:8])
}

// Topic returns the full topic for suffix under this switcher.
func (h *MQTTHandler) Topic(suffix ...string) string {
	parts := []string{h.cfg.TopicPrefix, h.switcher}
	parts = append(parts, suffix...)
	return strings.Join(parts, "/")
}

// topicSegment makes name safe to use as one topic level.
func topicSegment(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "switcher"
	}
	return strings.NewReplacer("/", "_", "#", "_", "+", "_", " ", "_").Replace(name)
}

// Start connects to the broker and publishes until ctx is cancelled.
func (h *MQTTHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("broker", h.cfg.BrokerURL).
		Int("port", h.cfg.Port).
		Msg("connecting to MQTT broker")

	token := h.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect failed: %w", token.Error())
	}

	h.subscribeEvents()
	h.PublishStatus()

	var tick <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.unsubscribeEvents()
			h.PublishShutdown()
			h.client.Disconnect(5000)
			h.logger.Info().Msg("MQTT disconnected")
			return nil
		case <-tick:
			h.PublishStatus()
		}
	}
}

func (h *MQTTHandler) subscribeEvents() {
	h.eventBus.Subscribe(events.EventStateChanged, "mqtt.state", h.onStateChanged)
	h.eventBus.Subscribe(events.EventConnectionState, "mqtt.connection", h.onConnectionState)
	h.eventBus.Subscribe(events.EventNotifyMQTT, "mqtt.notify", h.onNotify)
	h.eventBus.Subscribe(events.EventHealth, "mqtt.health", h.onHealth)
}

func (h *MQTTHandler) unsubscribeEvents() {
	h.eventBus.Unsubscribe(events.EventStateChanged, "mqtt.state")
	h.eventBus.Unsubscribe(events.EventConnectionState, "mqtt.connection")
	h.eventBus.Unsubscribe(events.EventNotifyMQTT, "mqtt.notify")
	h.eventBus.Unsubscribe(events.EventHealth, "mqtt.health")
}

// publish sends a JSON message to an MQTT topic.
func (h *MQTTHandler) publish(topic string, retained bool, payload interface{}) {
	h.mu.Lock()
	client := h.client
	h.mu.Unlock()
	if client == nil || !client.IsConnected() {
		return
	}

	data, err := json.Marshal(h.buildMessage(payload))
	if err != nil {
		h.logger.Warn().Err(err).Str("topic", topic).Msg("failed to marshal MQTT message")
		return
	}

	token := client.Publish(topic, 1, retained, data)
	go func() {
		token.Wait()
		if token.Error() != nil {
			h.logger.Warn().Err(token.Error()).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
}

// buildMessage combines metadata with the event payload.
func (h *MQTTHandler) buildMessage(payload interface{}) map[string]interface{} {
	msg := make(map[string]interface{}, len(h.metadata)+2)
	for k, v := range h.metadata {
		msg[k] = v
	}
	msg["payload"] = payload
	msg["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	return msg
}

// Event handlers

func (h *MQTTHandler) onStateChanged(_ context.Context, event events.Event) error {
	p, ok := event.Payload.(events.StateChangedPayload)
	if !ok {
		return nil
	}
	h.publish(h.Topic(TopicState, p.Key), true, p.Value)
	return nil
}

func (h *MQTTHandler) onConnectionState(_ context.Context, event events.Event) error {
	h.publish(h.Topic(TopicConnection), true, event.Payload)
	return nil
}

func (h *MQTTHandler) onNotify(_ context.Context, event events.Event) error {
	h.publish(h.Topic(TopicNotify), false, event.Payload)
	return nil
}

func (h *MQTTHandler) onHealth(_ context.Context, event events.Event) error {
	h.publish(h.Topic(TopicHealth), false, event.Payload)
	return nil
}

// PublishStatus sends a heartbeat with host information and load.
func (h *MQTTHandler) PublishStatus() {
	status := map[string]interface{}{
		"event":  "heartbeat",
		"system": util.GetSystemInfo(),
	}
	if usage, err := util.GetResourceUsage(); err == nil {
		status["resources"] = usage
	}
	h.publish(h.Topic(TopicStatus), false, status)
}

// PublishShutdown announces that the controller is going away.
func (h *MQTTHandler) PublishShutdown() {
	h.publish(h.Topic(TopicStatus), false, map[string]interface{}{
		"event": "shutdown",
	})
}
