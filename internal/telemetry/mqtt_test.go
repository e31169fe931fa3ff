package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// fakeClient records publishes; other Client methods are not used.
type fakeClient struct {
	mqtt.Client

	mu   sync.Mutex
	msgs []published
}

func (c *fakeClient) IsConnected() bool { return true }

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	c.msgs = append(c.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	c.mu.Unlock()
	return doneToken{}
}

func newTestHandler(t *testing.T) (*MQTTHandler, *fakeClient, *events.EventBus) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ApplicationData.MQTT.Enabled = true

	bus := events.NewEventBus()
	t.Cleanup(bus.Stop)

	h, err := NewMQTTHandler(cfg, bus, "Studio A", "test")
	if err != nil {
		t.Fatal(err)
	}
	fc := &fakeClient{}
	h.client = fc
	h.subscribeEvents()
	return h, fc, bus
}

func TestNewMQTTHandler_Disabled(t *testing.T) {
	if _, err := NewMQTTHandler(config.DefaultConfig(), events.NewEventBus(), "a", "test"); err == nil {
		t.Error("disabled MQTT produced a handler")
	}
}

func TestTopic(t *testing.T) {
	h, _, _ := newTestHandler(t)
	if got := h.Topic(TopicState, "mes"); got != "avista/studio_a/state/mes" {
		t.Errorf("topic = %s", got)
	}
}

func TestClientID(t *testing.T) {
	if got := clientID("fixed", "host"); got != "fixed" {
		t.Errorf("configured id = %s", got)
	}
	a, b := clientID("", "host"), clientID("", "host")
	if !strings.HasPrefix(a, "avista-host-") || a == b {
		t.Errorf("generated ids %s, %s", a, b)
	}
}

func TestStateChangesAreRetained(t *testing.T) {
	_, fc, bus := newTestHandler(t)

	err := bus.EmitSync(context.Background(), events.Event{
		Type: events.EventStateChanged,
		Payload: events.StateChangedPayload{
			Key:   "auxes",
			Value: map[int]int{0: 3},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.msgs) != 1 {
		t.Fatalf("published %d messages", len(fc.msgs))
	}
	msg := fc.msgs[0]
	if msg.topic != "avista/studio_a/state/auxes" || !msg.retained {
		t.Errorf("message = %s retained=%v", msg.topic, msg.retained)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.payload, &body); err != nil {
		t.Fatal(err)
	}
	if body["switcher"] != "Studio A" || body["payload"] == nil {
		t.Errorf("body = %v", body)
	}
}

func TestNotifyIsNotRetained(t *testing.T) {
	_, fc, bus := newTestHandler(t)

	bus.EmitSync(context.Background(), events.Event{
		Type:    events.EventNotifyMQTT,
		Payload: events.NotifyPayload{Title: "t", Message: "m", Level: "info"},
	})

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.msgs) != 1 || fc.msgs[0].retained || fc.msgs[0].topic != "avista/studio_a/notify" {
		t.Errorf("messages = %+v", fc.msgs)
	}
}
