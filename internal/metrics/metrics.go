// Package metrics exposes switcher protocol counters to Prometheus.
//
// A Collector plugs into the parser, the network session and the switcher
// as their observer, and follows connection and send events on the bus.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/protocol"
)

const namespace = "avista"

// Collector holds the registered metrics.
type Collector struct {
	registry *prometheus.Registry

	commandsDecoded *prometheus.CounterVec
	commandErrors   *prometheus.CounterVec
	commandsApplied *prometheus.CounterVec
	commandsSent    *prometheus.CounterVec
	packets         *prometheus.CounterVec
	packetsDropped  prometheus.Counter
	timeouts        prometheus.Counter
	flushedKeys     prometheus.Histogram
	connected       *prometheus.GaugeVec
}

// New registers the metrics on a fresh registry together with the Go and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		commandsDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_decoded_total",
			Help:      "Inbound commands decoded, by tag",
		}, []string{"tag"}),

		commandErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Inbound commands that could not be decoded, by tag and reason",
		}, []string{"tag", "reason"}),

		commandsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_applied_total",
			Help:      "Commands folded into the state, by tag",
		}, []string{"tag"}),

		commandsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_sent_total",
			Help:      "Outbound commands, by tag and result",
		}, []string{"tag", "result"}),

		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "Datagrams by direction and kind",
		}, []string{"direction", "kind"}),

		packetsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_dropped_total",
			Help:      "Malformed datagrams discarded",
		}),

		timeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_timeouts_total",
			Help:      "Sessions dropped after the receive timeout",
		}),

		flushedKeys: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flushed_keys",
			Help:      "State keys published per flush",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),

		connected: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "switcher_connected",
			Help:      "1 while the switcher session is established",
		}, []string{"switcher"}),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// CommandDecoded implements command.Observer.
func (c *Collector) CommandDecoded(tag string) {
	c.commandsDecoded.WithLabelValues(tag).Inc()
}

// CommandFailed implements command.Observer.
func (c *Collector) CommandFailed(tag string) {
	c.commandErrors.WithLabelValues(tag, "decode").Inc()
}

// CommandUnknown implements command.Observer.
func (c *Collector) CommandUnknown(tag string) {
	c.commandErrors.WithLabelValues(tag, "unknown").Inc()
}

// PacketReceived implements network.Observer.
func (c *Collector) PacketReceived(flags protocol.PacketFlag) {
	c.packets.WithLabelValues("in", packetKind(flags)).Inc()
}

// PacketSent implements network.Observer.
func (c *Collector) PacketSent(flags protocol.PacketFlag) {
	c.packets.WithLabelValues("out", packetKind(flags)).Inc()
}

// PacketDropped implements network.Observer.
func (c *Collector) PacketDropped() {
	c.packetsDropped.Inc()
}

// SessionTimedOut implements network.Observer.
func (c *Collector) SessionTimedOut() {
	c.timeouts.Inc()
}

// CommandApplied implements switcher.Observer.
func (c *Collector) CommandApplied(tag string, _ int) {
	c.commandsApplied.WithLabelValues(tag).Inc()
}

// StateFlushed implements switcher.Observer.
func (c *Collector) StateFlushed(keys int) {
	c.flushedKeys.Observe(float64(keys))
}

// Subscribe follows connection and send events on bus.
func (c *Collector) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventConnectionState, "metrics", func(_ context.Context, e events.Event) error {
		p, ok := e.Payload.(events.ConnectionStatePayload)
		if !ok {
			return nil
		}
		v := 0.0
		if p.State == network.StateConnected.String() {
			v = 1
		}
		c.connected.WithLabelValues(e.Source).Set(v)
		return nil
	})

	bus.Subscribe(events.EventCommandSent, "metrics", func(_ context.Context, e events.Event) error {
		p, ok := e.Payload.(events.CommandSentPayload)
		if !ok {
			return nil
		}
		result := "ok"
		if p.Error != "" {
			result = "error"
		}
		c.commandsSent.WithLabelValues(p.Tag, result).Inc()
		return nil
	})
}

func packetKind(flags protocol.PacketFlag) string {
	switch {
	case flags.Has(protocol.FlagHello):
		return "hello"
	case flags.Has(protocol.FlagAckRequest):
		return "data"
	case flags.Has(protocol.FlagAck):
		return "ack"
	default:
		return "other"
	}
}
