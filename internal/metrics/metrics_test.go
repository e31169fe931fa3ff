package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/protocol"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestCollector_Observers(t *testing.T) {
	c := New()

	c.CommandDecoded("PrgI")
	c.CommandDecoded("PrgI")
	c.CommandFailed("PrvI")
	c.CommandUnknown("Zzzz")
	c.PacketReceived(protocol.FlagHello)
	c.PacketReceived(protocol.FlagAckRequest)
	c.PacketSent(protocol.FlagAck)
	c.PacketDropped()
	c.SessionTimedOut()
	c.CommandApplied("PrgI", 2)

	tests := []struct {
		name string
		got  prometheus.Counter
		want float64
	}{
		{"decoded", c.commandsDecoded.WithLabelValues("PrgI"), 2},
		{"failed", c.commandErrors.WithLabelValues("PrvI", "decode"), 1},
		{"unknown", c.commandErrors.WithLabelValues("Zzzz", "unknown"), 1},
		{"hello in", c.packets.WithLabelValues("in", "hello"), 1},
		{"data in", c.packets.WithLabelValues("in", "data"), 1},
		{"ack out", c.packets.WithLabelValues("out", "ack"), 1},
		{"dropped", c.packetsDropped, 1},
		{"timeouts", c.timeouts, 1},
		{"applied", c.commandsApplied.WithLabelValues("PrgI"), 1},
	}
	for _, tt := range tests {
		if v := counterValue(t, tt.got); v != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, v, tt.want)
		}
	}
}

func TestCollector_BusEvents(t *testing.T) {
	c := New()
	bus := events.NewEventBus()
	defer bus.Stop()
	c.Subscribe(bus)

	ctx := context.Background()
	bus.EmitSync(ctx, events.Event{
		Type:    events.EventConnectionState,
		Source:  "studio",
		Payload: events.ConnectionStatePayload{State: network.StateConnected.String()},
	})
	if v := gaugeValue(t, c.connected.WithLabelValues("studio")); v != 1 {
		t.Errorf("connected = %v", v)
	}

	bus.EmitSync(ctx, events.Event{
		Type:    events.EventCommandSent,
		Payload: events.CommandSentPayload{Tag: "DCut", Error: "not connected"},
	})
	if v := counterValue(t, c.commandsSent.WithLabelValues("DCut", "error")); v != 1 {
		t.Errorf("sent errors = %v", v)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.CommandDecoded("AuxS")

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `avista_commands_decoded_total{tag="AuxS"} 1`) {
		t.Errorf("exposition missing counter:\n%s", body)
	}
}
