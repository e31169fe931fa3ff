package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/switcher"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamPongTimeout  = 60 * time.Second
	streamBuffer       = 256
)

// StreamMessage is one frame sent to stream clients.
type StreamMessage struct {
	Type         string `json:"type"` // "snapshot", "state", "connection"
	ConnectionID string `json:"connection_id,omitempty"`
	Key          string `json:"key,omitempty"`
	Value        any    `json:"value,omitempty"`
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.send) })
}

// Stream pushes state changes to websocket clients. A new client first
// receives the full snapshot, then every change published on the bus.
type Stream struct {
	bus      *events.EventBus
	device   *switcher.Switcher
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
	closed  bool
}

// NewStream creates a stream fed by bus.
func NewStream(bus *events.EventBus, device *switcher.Switcher) *Stream {
	st := &Stream{
		bus:    bus,
		device: device,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  log.With().Str("component", "stream").Logger(),
		clients: make(map[*streamClient]struct{}),
	}
	if bus != nil {
		bus.Subscribe(events.EventStateChanged, "api.stream", st.onStateChanged)
		bus.Subscribe(events.EventConnectionState, "api.stream", st.onConnectionState)
	}
	return st
}

// Clients returns the number of connected clients.
func (st *Stream) Clients() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.clients)
}

// Handle upgrades the request and serves the client until it goes away.
func (st *Stream) Handle(c *gin.Context) {
	conn, err := st.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		st.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &streamClient{conn: conn, send: make(chan []byte, streamBuffer)}
	if snapshot, err := st.snapshot(); err == nil {
		client.send <- snapshot
	}

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		conn.Close()
		return
	}
	st.clients[client] = struct{}{}
	st.mu.Unlock()

	st.logger.Debug().Str("remote", c.ClientIP()).Msg("stream client connected")

	go st.writePump(client)
	st.readPump(client)
}

func (st *Stream) snapshot() ([]byte, error) {
	msg := StreamMessage{Type: "snapshot"}
	if st.device != nil {
		msg.ConnectionID = st.device.Status().ConnectionID
		msg.Value = st.device.State()
	}
	return json.Marshal(msg)
}

// readPump discards client frames and drops the client when the
// connection fails.
func (st *Stream) readPump(client *streamClient) {
	defer st.remove(client)

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				st.logger.Debug().Err(err).Msg("stream client read error")
			}
			return
		}
	}
}

func (st *Stream) writePump(client *streamClient) {
	ticker := time.NewTicker(streamPingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (st *Stream) remove(client *streamClient) {
	st.mu.Lock()
	delete(st.clients, client)
	st.mu.Unlock()
	client.close()
}

// broadcast queues data for every client. Clients that cannot keep up are
// disconnected.
func (st *Stream) broadcast(msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for client := range st.clients {
		select {
		case client.send <- data:
		default:
			st.logger.Warn().Msg("stream client too slow, disconnecting")
			delete(st.clients, client)
			client.close()
		}
	}
	return nil
}

func (st *Stream) onStateChanged(_ context.Context, e events.Event) error {
	p, ok := e.Payload.(events.StateChangedPayload)
	if !ok {
		return nil
	}
	return st.broadcast(StreamMessage{
		Type:         "state",
		ConnectionID: p.ConnectionID,
		Key:          p.Key,
		Value:        p.Value,
	})
}

func (st *Stream) onConnectionState(_ context.Context, e events.Event) error {
	p, ok := e.Payload.(events.ConnectionStatePayload)
	if !ok {
		return nil
	}
	return st.broadcast(StreamMessage{
		Type:         "connection",
		ConnectionID: p.ConnectionID,
		Value:        p,
	})
}

// Close disconnects every client and stops following the bus.
func (st *Stream) Close() {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return
	}
	st.closed = true
	for client := range st.clients {
		delete(st.clients, client)
		client.close()
	}
	st.mu.Unlock()

	if st.bus != nil {
		st.bus.Unsubscribe(events.EventStateChanged, "api.stream")
		st.bus.Unsubscribe(events.EventConnectionState, "api.stream")
	}
}
