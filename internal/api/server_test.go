package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/metrics"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/switcher"
)

const testToken = "secret"

type recordingTransport struct {
	mu   sync.Mutex
	sent []command.Command
	err  error
}

func (t *recordingTransport) Send(cmd command.Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, cmd)
	return nil
}

func (t *recordingTransport) Version() protocol.Version { return protocol.Version811 }

type testEnv struct {
	server    *Server
	device    *switcher.Switcher
	transport *recordingTransport
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Switcher.Host = "10.0.0.50"
	cfg.ApplicationData.API.Token = testToken
	cfg.ApplicationData.Security.AuthDisabled = false
	cfg.ApplicationData.Security.RateLimitRPS = 0

	bus := events.NewEventBus()
	t.Cleanup(bus.Stop)

	tr := &recordingTransport{}
	device := switcher.New(switcher.Options{Name: "studio", Address: "10.0.0.50:9910"}, tr, bus)
	srv := NewServer(cfg, bus, Deps{
		Switcher: device,
		Metrics:  metrics.New().Handler(),
		Version:  "test",
	})
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{server: srv, device: device, transport: tr, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPublicPing(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"missing", "", "/api/monitor/status", http.StatusUnauthorized},
		{"wrong", "Bearer nope", "/api/monitor/status", http.StatusUnauthorized},
		{"header", "Bearer " + testToken, "/api/monitor/status", http.StatusOK},
		{"query", "", "/api/monitor/status?token=" + testToken, http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStateKey(t *testing.T) {
	env := newTestEnv(t)
	env.device.HandleCommands([]command.Command{
		&command.AuxSource{Index: 0, Source: protocol.VideoInput2},
	})

	rec := env.do(t, http.MethodGet, "/api/monitor/state/auxes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["value"] == nil {
		t.Errorf("auxes missing: %v", body)
	}

	if rec := env.do(t, http.MethodGet, "/api/monitor/state/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d", rec.Code)
	}
}

func TestTally(t *testing.T) {
	env := newTestEnv(t)
	env.device.HandleCommands([]command.Command{
		&command.InputProperties{ID: protocol.VideoInput1, Name: "Camera 1", ShortName: "CAM1"},
		&command.ProgramInput{Index: 0, Source: protocol.VideoInput1},
	})

	rec := env.do(t, http.MethodGet, "/api/monitor/tally/0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Tally []tallyEntry `json:"tally"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Tally) != 1 || !body.Tally[0].Program || body.Tally[0].Name != "CAM1" {
		t.Errorf("tally = %+v", body.Tally)
	}

	if rec := env.do(t, http.MethodGet, "/api/monitor/tally/3", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing ME status = %d", rec.Code)
	}
}

func TestControl(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/control/me/0/program", `{"source": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got, ok := env.transport.sent[0].(*command.SetProgramInput)
	if !ok || got.Source != protocol.VideoInput1 {
		t.Errorf("sent %#v", env.transport.sent[0])
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"bad index", "/api/control/me/x/cut", "", http.StatusBadRequest},
		{"missing source", "/api/control/me/0/preview", `{}`, http.StatusBadRequest},
		{"out of range", "/api/control/me/300/auto", "", http.StatusBadRequest},
		{"super source", "/api/control/super_source/1", `{"fill_source": 2}`, http.StatusOK},
		{"dsk tie", "/api/control/dsk/0/tie", `{"enabled": false}`, http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPost, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	env.transport.err = network.ErrNotConnected
	if rec := env.do(t, http.MethodPost, "/api/control/me/0/cut", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disconnected status = %d", rec.Code)
	}
}

func TestSetSwitcherValidates(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/configure/switcher", `{"host": "", "port": 9910}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/configure/config", "")
	if strings.Contains(rec.Body.String(), testToken) {
		t.Error("token exposed by config endpoint")
	}
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream?token=" + testToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg StreamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "snapshot" || msg.ConnectionID == "" {
		t.Fatalf("first message = %+v", msg)
	}

	env.device.HandleCommands([]command.Command{
		&command.AuxSource{Index: 1, Source: protocol.VideoInput3},
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	env.device.Flush(ctx)

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "state" || msg.Key != "auxes" {
		t.Errorf("change message = %+v", msg)
	}
	if env.server.stream.Clients() != 1 {
		t.Errorf("clients = %d", env.server.stream.Clients())
	}
}

func TestTallyPage(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/stream") {
		t.Error("tally page not served")
	}

	if rec := env.do(t, http.MethodGet, "/api/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown API route status = %d", rec.Code)
	}
}
